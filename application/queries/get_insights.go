package queries

import (
	"context"
	"errors"
	"time"

	"journey-backend/application/ports"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/services"
	pkgerrors "journey-backend/pkg/errors"
)

// GetInsightsQuery lists the insights attached to a node. Insights are
// read-only through the API; they are produced by an offline pipeline.
type GetInsightsQuery struct {
	NodeID   string
	ViewerID int
}

// Validate validates the query
func (q GetInsightsQuery) Validate() error {
	if q.NodeID == "" {
		return errors.New("node ID is required")
	}
	if q.ViewerID <= 0 {
		return errors.New("viewer ID is required")
	}
	return nil
}

// InsightView is the wire shape of a single insight
type InsightView struct {
	ID        string  `json:"id"`
	NodeID    string  `json:"nodeId"`
	Category  string  `json:"category"`
	Text      string  `json:"text"`
	Score     float64 `json:"score"`
	CreatedAt string  `json:"createdAt"`
}

// GetInsightsResult is the wire shape of an insight listing
type GetInsightsResult struct {
	Insights []InsightView `json:"insights"`
}

// GetInsightsHandler handles the GetInsightsQuery
type GetInsightsHandler struct {
	nodeRepo    ports.NodeRepository
	shareRepo   ports.ShareRepository
	insightRepo ports.InsightRepository
	permissions *services.PermissionService
}

// NewGetInsightsHandler creates a new handler instance
func NewGetInsightsHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	insightRepo ports.InsightRepository,
	permissions *services.PermissionService,
) *GetInsightsHandler {
	return &GetInsightsHandler{
		nodeRepo:    nodeRepo,
		shareRepo:   shareRepo,
		insightRepo: insightRepo,
		permissions: permissions,
	}
}

// Handle executes the query. Insight visibility follows node visibility.
func (h *GetInsightsHandler) Handle(ctx context.Context, q GetInsightsQuery) (*GetInsightsResult, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(q.NodeID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	shares := services.ShareSnapshot{}
	if node.OwnerID() != q.ViewerID {
		grants, err := h.shareRepo.GetByNode(ctx, nodeID)
		if err != nil {
			return nil, err
		}
		for _, g := range grants {
			shares[g.GranteeID()] = g.Level()
		}
	}
	if !h.permissions.CanViewNode(node, q.ViewerID, shares) {
		return nil, pkgerrors.ErrNodeNotFound
	}

	insights, err := h.insightRepo.GetByNode(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	result := &GetInsightsResult{Insights: make([]InsightView, 0, len(insights))}
	for _, in := range insights {
		result.Insights = append(result.Insights, newInsightView(in))
	}
	return result, nil
}

func newInsightView(in *entities.Insight) InsightView {
	return InsightView{
		ID:        in.ID(),
		NodeID:    in.NodeID().String(),
		Category:  in.Category(),
		Text:      in.Text(),
		Score:     in.Score(),
		CreatedAt: in.CreatedAt().Format(time.RFC3339),
	}
}
