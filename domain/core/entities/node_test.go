package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journey-backend/domain/core/valueobjects"
	pkgerrors "journey-backend/pkg/errors"
)

func newJob(t *testing.T) *TimelineNode {
	node, err := NewTimelineNode(42, valueobjects.TypeJob, nil, map[string]interface{}{
		"role":    "Staff Engineer",
		"company": "Initech",
	})
	require.NoError(t, err)
	return node
}

func TestNewTimelineNode(t *testing.T) {
	node := newJob(t)

	assert.Equal(t, 42, node.OwnerID())
	assert.Equal(t, valueobjects.TypeJob, node.Type())
	assert.True(t, node.IsRoot())
	assert.Equal(t, "Staff Engineer", node.Label())
	assert.False(t, node.CreatedAt().IsZero())

	events := node.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "timeline.node.created", events[0].GetEventType())
	assert.Equal(t, node.ID().String(), events[0].GetAggregateID())

	node.MarkEventsAsCommitted()
	assert.Empty(t, node.GetUncommittedEvents())
}

func TestNewTimelineNodeRequiresMeta(t *testing.T) {
	_, err := NewTimelineNode(42, valueobjects.TypeJob, nil, map[string]interface{}{})
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyMeta)

	_, err = NewTimelineNode(42, valueobjects.TypeJob, nil, nil)
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyMeta)
}

func TestNewTimelineNodeRejectsUnknownType(t *testing.T) {
	_, err := NewTimelineNode(42, valueobjects.NodeType("sabbatical"), nil, map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownNodeType)
}

func TestNewTimelineNodeRejectsBadOwner(t *testing.T) {
	_, err := NewTimelineNode(0, valueobjects.TypeJob, nil, map[string]interface{}{"role": "x"})
	assert.Error(t, err)
}

func TestUpdateMetaReplacesWholeMap(t *testing.T) {
	node := newJob(t)
	node.MarkEventsAsCommitted()

	err := node.UpdateMeta(map[string]interface{}{"role": "Principal Engineer"})
	require.NoError(t, err)

	meta := node.Meta()
	assert.Equal(t, "Principal Engineer", meta["role"])
	assert.NotContains(t, meta, "company", "update replaces, it does not merge")

	events := node.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "timeline.node.updated", events[0].GetEventType())
}

func TestUpdateMetaEmptyIsNoOp(t *testing.T) {
	node := newJob(t)
	node.MarkEventsAsCommitted()

	require.NoError(t, node.UpdateMeta(map[string]interface{}{}))
	assert.Equal(t, "Staff Engineer", node.Label())
	assert.Empty(t, node.GetUncommittedEvents(), "a no-op emits no event")
}

func TestMetaReturnsCopy(t *testing.T) {
	node := newJob(t)

	meta := node.Meta()
	meta["role"] = "tampered"
	assert.Equal(t, "Staff Engineer", node.Label())
}

func TestSetParent(t *testing.T) {
	node := newJob(t)
	node.MarkEventsAsCommitted()
	parentID := valueobjects.NewNodeID()

	require.NoError(t, node.SetParent(&parentID))
	require.NotNil(t, node.ParentID())
	assert.Equal(t, parentID.String(), node.ParentID().String())
	assert.False(t, node.IsRoot())

	events := node.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "timeline.node.reparented", events[0].GetEventType())

	require.NoError(t, node.SetParent(nil))
	assert.True(t, node.IsRoot())
}

func TestSetParentRejectsSelf(t *testing.T) {
	node := newJob(t)
	selfID := node.ID()

	err := node.SetParent(&selfID)
	assert.ErrorIs(t, err, pkgerrors.ErrSelfParent)
}

func TestLabelFallsBackToEmpty(t *testing.T) {
	node, err := NewTimelineNode(42, valueobjects.TypeProject, nil, map[string]interface{}{
		"description": "no title key",
	})
	require.NoError(t, err)
	assert.Equal(t, "", node.Label())
}

func TestShareGrantLevels(t *testing.T) {
	nodeID := valueobjects.NewNodeID()

	grant, err := NewShareGrant(nodeID, 99, 42, GrantLevelEdit)
	require.NoError(t, err)
	assert.Equal(t, GrantLevelEdit, grant.Level())
	assert.Equal(t, 42, grant.GrantedBy())
	assert.False(t, grant.CreatedAt().IsZero())

	_, err = NewShareGrant(nodeID, 99, 42, GrantLevel("admin"))
	assert.Error(t, err)

	level, ok := ParseGrantLevel("view")
	assert.True(t, ok)
	assert.Equal(t, GrantLevelView, level)

	_, ok = ParseGrantLevel("owner")
	assert.False(t, ok)
}
