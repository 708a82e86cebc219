package queries

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/application/queries/models"
	"journey-backend/domain/config"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/services"
)

// ListNodesQuery lists a user's own timeline nodes
type ListNodesQuery struct {
	OwnerID int
	Type    *valueobjects.NodeType
	Limit   int
	Cursor  string
}

// Validate validates the query
func (q ListNodesQuery) Validate() error {
	if q.OwnerID <= 0 {
		return errors.New("owner ID is required")
	}
	if q.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

// ListNodesResult pairs a page of nodes with the total count of owned nodes
// matching the filter, and the cursor for the next page, empty when the
// listing is exhausted.
type ListNodesResult struct {
	Nodes      []models.TimelineNodeResponse `json:"nodes"`
	TotalCount int                           `json:"totalCount"`
	NextCursor string                        `json:"nextCursor,omitempty"`
}

// ListNodesHandler handles the ListNodesQuery
type ListNodesHandler struct {
	nodeRepo    ports.NodeRepository
	permissions *services.PermissionService
	cfg         *config.DomainConfig
	logger      *zap.Logger
}

// NewListNodesHandler creates a new handler instance
func NewListNodesHandler(
	nodeRepo ports.NodeRepository,
	permissions *services.PermissionService,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ListNodesHandler {
	return &ListNodesHandler{
		nodeRepo:    nodeRepo,
		permissions: permissions,
		cfg:         cfg,
		logger:      logger,
	}
}

// Handle executes the listing. Owner listings need no grant snapshot:
// ownership alone yields full permissions on every returned node.
func (h *ListNodesHandler) Handle(ctx context.Context, q ListNodesQuery) (*ListNodesResult, error) {
	limit := q.Limit
	if limit == 0 {
		limit = h.cfg.DefaultPageSize
	}
	if limit > h.cfg.MaxPageSize {
		limit = h.cfg.MaxPageSize
	}

	nodes, err := h.nodeRepo.GetByOwner(ctx, q.OwnerID, ports.ListCriteria{
		Type:   q.Type,
		Limit:  limit + 1,
		Cursor: q.Cursor,
	})
	if err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(nodes) > limit {
		nodes = nodes[:limit]
		nextCursor = nodes[len(nodes)-1].ID().String()
	}

	total, err := h.nodeRepo.CountByOwner(ctx, q.OwnerID, q.Type)
	if err != nil {
		return nil, err
	}

	result := &ListNodesResult{
		Nodes:      make([]models.TimelineNodeResponse, 0, len(nodes)),
		TotalCount: total,
		NextCursor: nextCursor,
	}
	for _, node := range nodes {
		perms := h.permissions.Project(node, q.OwnerID, services.ShareSnapshot{})
		resp := models.NewTimelineNodeResponse(node, nil, nil, &perms)
		if err := models.CheckShape(resp); err != nil {
			return nil, err
		}
		result.Nodes = append(result.Nodes, resp)
	}
	return result, nil
}
