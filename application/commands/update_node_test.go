package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/validators"
	"journey-backend/domain/services"
	pkgerrors "journey-backend/pkg/errors"
)

type updateFixture struct {
	repo    *fakeNodeRepo
	shares  *fakeShareRepo
	pub     *fakePublisher
	lock    *fakeLock
	handler *UpdateNodeHandler
}

func newUpdateFixture() *updateFixture {
	repo := newFakeNodeRepo()
	shares := newFakeShareRepo()
	pub := newFakePublisher()
	lock := newFakeLock()
	handler := NewUpdateNodeHandler(
		repo,
		shares,
		services.NewPermissionService(),
		pub,
		validators.NewNodeValidator(),
		lock,
		zap.NewNop(),
	)
	return &updateFixture{repo: repo, shares: shares, pub: pub, lock: lock, handler: handler}
}

func (f *updateFixture) grant(t *testing.T, node *entities.TimelineNode, granteeID int, level entities.GrantLevel) {
	grant, err := entities.NewShareGrant(node.ID(), granteeID, node.OwnerID(), level)
	require.NoError(t, err)
	require.NoError(t, f.shares.Save(context.Background(), grant))
}

func TestUpdateNodeEmptyPatchIsNoOp(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "job", nil)
	before := node.Meta()

	updated, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:  node.ID().String(),
		ActorID: 42,
	})
	require.NoError(t, err)
	assert.Equal(t, before, updated.Meta())
	assert.Nil(t, updated.ParentID())
	assert.Equal(t, 0, f.lock.acquired, "no reparent, no lock")
}

func TestUpdateNodeMeta(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "project", nil)

	updated, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:  node.ID().String(),
		ActorID: 42,
		Meta:    map[string]interface{}{"title": "Rewrite", "status": "done"},
		HasMeta: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Rewrite", updated.Label())
	assert.Contains(t, f.pub.eventTypes(), "timeline.node.updated")
}

func TestUpdateNodeEmptyMetaTolerated(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "event", nil)

	before := node.Meta()
	updated, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:  node.ID().String(),
		ActorID: 42,
		Meta:    map[string]interface{}{},
		HasMeta: true,
	})
	require.NoError(t, err)
	assert.Equal(t, before, updated.Meta(), "an empty patch leaves meta alone")
}

func TestUpdateNodeHiddenFromStrangers(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "job", nil)

	_, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:  node.ID().String(),
		ActorID: 99,
		Meta:    map[string]interface{}{"role": "hijacked"},
		HasMeta: true,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrNodeNotFound)
}

func TestUpdateNodeViewGranteeCannotEdit(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "job", nil)
	f.grant(t, node, 99, entities.GrantLevelView)

	_, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:  node.ID().String(),
		ActorID: 99,
		Meta:    map[string]interface{}{"role": "edited"},
		HasMeta: true,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotAuthorized)
}

func TestUpdateNodeEditGranteeCanEdit(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "job", nil)
	f.grant(t, node, 99, entities.GrantLevelEdit)

	updated, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:  node.ID().String(),
		ActorID: 99,
		Meta:    map[string]interface{}{"role": "Principal Engineer"},
		HasMeta: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Principal Engineer", updated.Label())
}

func TestUpdateNodeReparent(t *testing.T) {
	f := newUpdateFixture()
	oldParent := seedNode(t, f.repo, 42, "job", nil)
	oldID := oldParent.ID()
	newParent := seedNode(t, f.repo, 42, "job", nil)
	node := seedNode(t, f.repo, 42, "project", &oldID)

	newID := newParent.ID().String()
	updated, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:    node.ID().String(),
		ActorID:   42,
		ParentID:  &newID,
		HasParent: true,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.ParentID())
	assert.Equal(t, newID, updated.ParentID().String())
	assert.Equal(t, 1, f.lock.acquired)
	assert.Equal(t, 1, f.lock.released)
}

func TestUpdateNodePromoteToRoot(t *testing.T) {
	f := newUpdateFixture()
	parent := seedNode(t, f.repo, 42, "job", nil)
	parentID := parent.ID()
	node := seedNode(t, f.repo, 42, "project", &parentID)

	updated, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:    node.ID().String(),
		ActorID:   42,
		ParentID:  nil,
		HasParent: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.ParentID())
	assert.True(t, updated.IsRoot())
}

func TestUpdateNodeRejectsSelfParent(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "job", nil)

	selfID := node.ID().String()
	_, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:    node.ID().String(),
		ActorID:   42,
		ParentID:  &selfID,
		HasParent: true,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrCyclicParent)
}

func TestUpdateNodeRejectsCycle(t *testing.T) {
	f := newUpdateFixture()
	a := seedNode(t, f.repo, 42, "job", nil)
	aID := a.ID()
	b := seedNode(t, f.repo, 42, "project", &aID)
	bID := b.ID()
	c := seedNode(t, f.repo, 42, "action", &bID)

	// Moving a under its grandchild c would close a loop
	cID := c.ID().String()
	_, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:    a.ID().String(),
		ActorID:   42,
		ParentID:  &cID,
		HasParent: true,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrCyclicParent)
	assert.Equal(t, 1, f.lock.released, "lock released on the error path")
}

func TestUpdateNodeRejectsForeignParent(t *testing.T) {
	f := newUpdateFixture()
	node := seedNode(t, f.repo, 42, "project", nil)
	theirs := seedNode(t, f.repo, 7, "job", nil)

	theirID := theirs.ID().String()
	_, err := f.handler.Handle(context.Background(), UpdateNodeCommand{
		NodeID:    node.ID().String(),
		ActorID:   42,
		ParentID:  &theirID,
		HasParent: true,
	})
	require.Error(t, err)

	var verrs *pkgerrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "parentId")
}
