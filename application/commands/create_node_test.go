package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"journey-backend/domain/core/validators"
	pkgerrors "journey-backend/pkg/errors"
)

func newCreateHandler(repo *fakeNodeRepo, pub *fakePublisher) *CreateNodeHandler {
	return NewCreateNodeHandler(repo, pub, validators.NewNodeValidator(), zap.NewNop())
}

func TestCreateNodeSuccess(t *testing.T) {
	repo := newFakeNodeRepo()
	pub := newFakePublisher()
	handler := newCreateHandler(repo, pub)

	node, err := handler.Handle(context.Background(), CreateNodeCommand{
		OwnerID: 42,
		Type:    "job",
		Meta:    map[string]interface{}{"role": "Staff Engineer", "company": "Initech"},
	})
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.Equal(t, 42, node.OwnerID())
	assert.Equal(t, "job", node.Type().String())
	assert.True(t, node.IsRoot())
	assert.Equal(t, "Staff Engineer", node.Label())

	saved, err := repo.GetByID(context.Background(), node.ID())
	require.NoError(t, err)
	assert.Equal(t, node.ID().String(), saved.ID().String())

	assert.Equal(t, []string{"timeline.node.created"}, pub.eventTypes())
	assert.Empty(t, node.GetUncommittedEvents(), "events should be committed after publish")
}

func TestCreateNodeUnderParent(t *testing.T) {
	repo := newFakeNodeRepo()
	handler := newCreateHandler(repo, newFakePublisher())

	parent := seedNode(t, repo, 42, "job", nil)
	parentID := parent.ID().String()

	node, err := handler.Handle(context.Background(), CreateNodeCommand{
		OwnerID:  42,
		Type:     "project",
		ParentID: &parentID,
		Meta:     map[string]interface{}{"title": "Migration"},
	})
	require.NoError(t, err)
	require.NotNil(t, node.ParentID())
	assert.Equal(t, parentID, node.ParentID().String())
}

func TestCreateNodeFieldErrors(t *testing.T) {
	handler := newCreateHandler(newFakeNodeRepo(), newFakePublisher())

	badParent := "not-a-uuid"
	_, err := handler.Handle(context.Background(), CreateNodeCommand{
		OwnerID:  42,
		Type:     "sabbatical",
		ParentID: &badParent,
		Meta:     map[string]interface{}{},
	})
	require.Error(t, err)

	var verrs *pkgerrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "type")
	assert.Contains(t, fields, "parentId")
	assert.Contains(t, fields, "meta")
}

func TestCreateNodeRejectsForeignParent(t *testing.T) {
	repo := newFakeNodeRepo()
	handler := newCreateHandler(repo, newFakePublisher())

	theirs := seedNode(t, repo, 7, "education", nil)
	parentID := theirs.ID().String()

	_, err := handler.Handle(context.Background(), CreateNodeCommand{
		OwnerID:  42,
		Type:     "event",
		ParentID: &parentID,
		Meta:     map[string]interface{}{"title": "Conference"},
	})
	require.Error(t, err)

	var verrs *pkgerrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "parentId")
}

func TestCreateNodeRejectsMissingParent(t *testing.T) {
	handler := newCreateHandler(newFakeNodeRepo(), newFakePublisher())

	ghost := "8a6e0804-2bd0-4672-b79d-d97027f9071a"
	_, err := handler.Handle(context.Background(), CreateNodeCommand{
		OwnerID:  42,
		Type:     "action",
		ParentID: &ghost,
		Meta:     map[string]interface{}{"title": "Certification"},
	})
	require.Error(t, err)

	// A parent that does not exist reads the same as one the caller does not own
	var verrs *pkgerrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "parentId")
}
