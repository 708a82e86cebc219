package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"journey-backend/domain/core/entities"
	"journey-backend/domain/services"
	pkgerrors "journey-backend/pkg/errors"
)

type getNodeFixture struct {
	repo    *fakeNodeRepo
	shares  *fakeShareRepo
	users   *fakeUserDirectory
	handler *GetNodeHandler
}

func newGetNodeFixture() *getNodeFixture {
	repo := newFakeNodeRepo()
	shares := newFakeShareRepo()
	users := newFakeUserDirectory()
	handler := NewGetNodeHandler(repo, shares, users, services.NewPermissionService(), zap.NewNop())
	return &getNodeFixture{repo: repo, shares: shares, users: users, handler: handler}
}

func TestGetNodeAsOwner(t *testing.T) {
	f := newGetNodeFixture()
	node := seedNode(t, f.repo, 42, "job", nil)

	resp, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 42,
	})
	require.NoError(t, err)

	assert.Equal(t, node.ID().String(), resp.ID)
	assert.Equal(t, 42, resp.UserID)
	assert.Equal(t, "job", resp.Type)
	assert.Nil(t, resp.ParentID)
	assert.Nil(t, resp.Parent)
	assert.Nil(t, resp.Owner, "the caller's own identity is implicit")

	require.NotNil(t, resp.Permissions)
	assert.True(t, resp.Permissions.CanView)
	assert.True(t, resp.Permissions.CanEdit)
	assert.True(t, resp.Permissions.CanShare)
	assert.True(t, resp.Permissions.CanDelete)
	assert.Equal(t, services.AccessLevelFull, resp.Permissions.AccessLevel)
}

func TestGetNodeAsViewGrantee(t *testing.T) {
	f := newGetNodeFixture()
	f.users.addUser(42, "owner@example.com")
	node := seedNode(t, f.repo, 42, "education", nil)
	seedGrant(t, f.shares, node, 99, entities.GrantLevelView)

	resp, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 99,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Owner)
	assert.Equal(t, 42, resp.Owner.ID)
	assert.Equal(t, "owner@example.com", resp.Owner.Email)

	require.NotNil(t, resp.Permissions)
	assert.True(t, resp.Permissions.CanView)
	assert.False(t, resp.Permissions.CanEdit)
	assert.False(t, resp.Permissions.CanShare)
	assert.False(t, resp.Permissions.CanDelete)
	assert.Equal(t, services.AccessLevelRestricted, resp.Permissions.AccessLevel)
}

func TestGetNodeHiddenFromStrangers(t *testing.T) {
	f := newGetNodeFixture()
	node := seedNode(t, f.repo, 42, "job", nil)

	_, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 99,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrNodeNotFound)
}

func TestGetNodeMalformedID(t *testing.T) {
	f := newGetNodeFixture()

	_, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   "not-a-uuid",
		ViewerID: 42,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrNodeNotFound)
}

func TestGetNodeMissing(t *testing.T) {
	f := newGetNodeFixture()

	_, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   "8a6e0804-2bd0-4672-b79d-d97027f9071a",
		ViewerID: 42,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrNodeNotFound)
}

func TestGetNodeParentProjection(t *testing.T) {
	f := newGetNodeFixture()
	parent := seedNode(t, f.repo, 42, "project", nil)
	parentID := parent.ID()
	node := seedNode(t, f.repo, 42, "action", &parentID)

	resp, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 42,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.ParentID)
	assert.Equal(t, parent.ID().String(), *resp.ParentID)
	require.NotNil(t, resp.Parent)
	assert.Equal(t, "project", resp.Parent.Type)
	require.NotNil(t, resp.Parent.Title, "project parents label with title")
	assert.Equal(t, "fixture", *resp.Parent.Title)
}

func TestGetNodeJobParentHasNoTitle(t *testing.T) {
	f := newGetNodeFixture()
	parent := seedNode(t, f.repo, 42, "job", nil)
	parentID := parent.ID()
	node := seedNode(t, f.repo, 42, "project", &parentID)

	resp, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 42,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Parent)
	assert.Nil(t, resp.Parent.Title, "jobs label with role, not title")
}

func TestGetNodePrivateParentNotProjected(t *testing.T) {
	f := newGetNodeFixture()
	f.users.addUser(42, "owner@example.com")
	parent := seedNode(t, f.repo, 42, "project", nil)
	parentID := parent.ID()
	node := seedNode(t, f.repo, 42, "action", &parentID)
	seedGrant(t, f.shares, node, 99, entities.GrantLevelView)

	resp, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 99,
	})
	require.NoError(t, err)

	// The grant covers the child only; the parent's content stays hidden
	assert.Nil(t, resp.Parent)

	seedGrant(t, f.shares, parent, 99, entities.GrantLevelView)
	resp, err = f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 99,
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Parent)
	assert.Equal(t, parent.ID().String(), resp.Parent.ID)
}

func TestGetNodeUnknownOwnerProfileOmitted(t *testing.T) {
	f := newGetNodeFixture()
	node := seedNode(t, f.repo, 42, "careerTransition", nil)
	seedGrant(t, f.shares, node, 99, entities.GrantLevelEdit)

	resp, err := f.handler.Handle(context.Background(), GetNodeQuery{
		NodeID:   node.ID().String(),
		ViewerID: 99,
	})
	require.NoError(t, err)

	// Directory miss degrades to an absent owner projection, not an error
	assert.Nil(t, resp.Owner)
	assert.True(t, resp.Permissions.CanEdit)
}

func TestGetNodeMatchableProjection(t *testing.T) {
	f := newGetNodeFixture()
	job := seedNode(t, f.repo, 42, "job", nil)
	project := seedNode(t, f.repo, 42, "project", nil)

	jobResp, err := f.handler.Handle(context.Background(), GetNodeQuery{NodeID: job.ID().String(), ViewerID: 42})
	require.NoError(t, err)
	assert.True(t, jobResp.Permissions.ShouldShowMatches)

	projResp, err := f.handler.Handle(context.Background(), GetNodeQuery{NodeID: project.ID().String(), ViewerID: 42})
	require.NoError(t, err)
	assert.False(t, projResp.Permissions.ShouldShowMatches)
}
