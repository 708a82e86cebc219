package queries

import (
	"context"
	"errors"
	"time"

	"journey-backend/application/ports"
	"journey-backend/domain/core/valueobjects"
	pkgerrors "journey-backend/pkg/errors"
)

// ListSharesQuery lists the grants on a node. Only the owner may see who
// a node is shared with.
type ListSharesQuery struct {
	NodeID  string
	ActorID int
}

// Validate validates the query
func (q ListSharesQuery) Validate() error {
	if q.NodeID == "" {
		return errors.New("node ID is required")
	}
	if q.ActorID <= 0 {
		return errors.New("actor ID is required")
	}
	return nil
}

// ShareGrantView is the wire shape of a single grant
type ShareGrantView struct {
	NodeID    string `json:"nodeId"`
	GranteeID int    `json:"granteeId"`
	Level     string `json:"level"`
	GrantedBy int    `json:"grantedBy"`
	CreatedAt string `json:"createdAt"`
}

// ListSharesResult is the wire shape of a grant listing
type ListSharesResult struct {
	Grants []ShareGrantView `json:"grants"`
}

// ListSharesHandler handles the ListSharesQuery
type ListSharesHandler struct {
	nodeRepo  ports.NodeRepository
	shareRepo ports.ShareRepository
}

// NewListSharesHandler creates a new handler instance
func NewListSharesHandler(nodeRepo ports.NodeRepository, shareRepo ports.ShareRepository) *ListSharesHandler {
	return &ListSharesHandler{
		nodeRepo:  nodeRepo,
		shareRepo: shareRepo,
	}
}

// Handle executes the query
func (h *ListSharesHandler) Handle(ctx context.Context, q ListSharesQuery) (*ListSharesResult, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(q.NodeID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.OwnerID() != q.ActorID {
		return nil, pkgerrors.ErrNodeNotFound
	}

	grants, err := h.shareRepo.GetByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	result := &ListSharesResult{Grants: make([]ShareGrantView, 0, len(grants))}
	for _, g := range grants {
		result.Grants = append(result.Grants, ShareGrantView{
			NodeID:    g.NodeID().String(),
			GranteeID: g.GranteeID(),
			Level:     string(g.Level()),
			GrantedBy: g.GrantedBy(),
			CreatedAt: g.CreatedAt().Format(time.RFC3339),
		})
	}
	return result, nil
}
