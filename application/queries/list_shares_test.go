package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journey-backend/domain/core/entities"
	pkgerrors "journey-backend/pkg/errors"
)

func TestListShares(t *testing.T) {
	repo := newFakeNodeRepo()
	shares := newFakeShareRepo()
	handler := NewListSharesHandler(repo, shares)

	node := seedNode(t, repo, 42, "job", nil)
	seedGrant(t, shares, node, 99, entities.GrantLevelView)
	seedGrant(t, shares, node, 7, entities.GrantLevelEdit)

	result, err := handler.Handle(context.Background(), ListSharesQuery{
		NodeID:  node.ID().String(),
		ActorID: 42,
	})
	require.NoError(t, err)
	require.Len(t, result.Grants, 2)

	byGrantee := map[int]ShareGrantView{}
	for _, g := range result.Grants {
		byGrantee[g.GranteeID] = g
	}
	assert.Equal(t, "view", byGrantee[99].Level)
	assert.Equal(t, "edit", byGrantee[7].Level)
	assert.Equal(t, 42, byGrantee[99].GrantedBy)
	assert.Equal(t, node.ID().String(), byGrantee[7].NodeID)
}

func TestListSharesOwnerOnly(t *testing.T) {
	repo := newFakeNodeRepo()
	shares := newFakeShareRepo()
	handler := NewListSharesHandler(repo, shares)

	node := seedNode(t, repo, 42, "job", nil)
	seedGrant(t, shares, node, 99, entities.GrantLevelView)

	// Even a grantee cannot enumerate who else a node is shared with
	_, err := handler.Handle(context.Background(), ListSharesQuery{
		NodeID:  node.ID().String(),
		ActorID: 99,
	})
	assert.ErrorIs(t, err, pkgerrors.ErrNodeNotFound)
}

func TestListSharesEmpty(t *testing.T) {
	repo := newFakeNodeRepo()
	handler := NewListSharesHandler(repo, newFakeShareRepo())

	node := seedNode(t, repo, 42, "education", nil)

	result, err := handler.Handle(context.Background(), ListSharesQuery{
		NodeID:  node.ID().String(),
		ActorID: 42,
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Grants)
	assert.Empty(t, result.Grants)
}
