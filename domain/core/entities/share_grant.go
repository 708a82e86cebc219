package entities

import (
	"time"

	"journey-backend/domain/core/valueobjects"
	pkgerrors "journey-backend/pkg/errors"
)

// GrantLevel is the capability a share grant confers on a node
type GrantLevel string

const (
	GrantLevelView GrantLevel = "view"
	GrantLevelEdit GrantLevel = "edit"
)

// ShareGrant records that a node's owner granted another user access to one
// node. Grants are the only path to non-owner visibility: permission
// projections are derived from the grant snapshot at request time and are
// never persisted themselves.
type ShareGrant struct {
	nodeID    valueobjects.NodeID
	granteeID int
	level     GrantLevel
	grantedBy int
	createdAt time.Time
}

// ParseGrantLevel parses a grant level from its wire representation
func ParseGrantLevel(s string) (GrantLevel, bool) {
	switch GrantLevel(s) {
	case GrantLevelView, GrantLevelEdit:
		return GrantLevel(s), true
	}
	return "", false
}

// NewShareGrant creates a grant after checking the level and parties
func NewShareGrant(nodeID valueobjects.NodeID, granteeID, grantedBy int, level GrantLevel) (*ShareGrant, error) {
	if granteeID <= 0 {
		return nil, pkgerrors.NewValidationError("grantee user ID must be positive")
	}
	if granteeID == grantedBy {
		return nil, pkgerrors.NewValidationError("cannot share a node with its owner")
	}
	if level != GrantLevelView && level != GrantLevelEdit {
		return nil, pkgerrors.NewValidationError("grant level must be view or edit")
	}

	return &ShareGrant{
		nodeID:    nodeID,
		granteeID: granteeID,
		level:     level,
		grantedBy: grantedBy,
		createdAt: time.Now(),
	}, nil
}

// ReconstructShareGrant restores a grant from repository data
func ReconstructShareGrant(nodeID valueobjects.NodeID, granteeID, grantedBy int, level GrantLevel, createdAt time.Time) *ShareGrant {
	return &ShareGrant{
		nodeID:    nodeID,
		granteeID: granteeID,
		level:     level,
		grantedBy: grantedBy,
		createdAt: createdAt,
	}
}

// NodeID returns the shared node's ID
func (g *ShareGrant) NodeID() valueobjects.NodeID { return g.nodeID }

// GranteeID returns the user the node is shared with
func (g *ShareGrant) GranteeID() int { return g.granteeID }

// Level returns the capability level conferred
func (g *ShareGrant) Level() GrantLevel { return g.level }

// GrantedBy returns the granting user's ID
func (g *ShareGrant) GrantedBy() int { return g.grantedBy }

// CreatedAt returns when the grant was created
func (g *ShareGrant) CreatedAt() time.Time { return g.createdAt }
