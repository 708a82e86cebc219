package queries

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/application/queries/models"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/services"
	pkgerrors "journey-backend/pkg/errors"
)

// GetNodeQuery retrieves a single timeline node with its projections
type GetNodeQuery struct {
	NodeID   string
	ViewerID int
}

// Validate validates the query
func (q GetNodeQuery) Validate() error {
	if q.NodeID == "" {
		return errors.New("node ID is required")
	}
	if q.ViewerID <= 0 {
		return errors.New("viewer ID is required")
	}
	return nil
}

// GetNodeHandler handles the GetNodeQuery
type GetNodeHandler struct {
	nodeRepo    ports.NodeRepository
	shareRepo   ports.ShareRepository
	users       ports.UserDirectory
	permissions *services.PermissionService
	logger      *zap.Logger
}

// NewGetNodeHandler creates a new handler instance
func NewGetNodeHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	users ports.UserDirectory,
	permissions *services.PermissionService,
	logger *zap.Logger,
) *GetNodeHandler {
	return &GetNodeHandler{
		nodeRepo:    nodeRepo,
		shareRepo:   shareRepo,
		users:       users,
		permissions: permissions,
		logger:      logger,
	}
}

// Handle executes the query. A node the viewer cannot see is reported as
// missing, so probing IDs reveals nothing.
func (h *GetNodeHandler) Handle(ctx context.Context, q GetNodeQuery) (*models.TimelineNodeResponse, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(q.NodeID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	shares, err := h.shareSnapshot(ctx, node, q.ViewerID)
	if err != nil {
		return nil, err
	}

	perms := h.permissions.Project(node, q.ViewerID, shares)
	if !perms.CanView {
		return nil, pkgerrors.ErrNodeNotFound
	}

	resp := models.NewTimelineNodeResponse(
		node,
		h.parentRef(ctx, node, q.ViewerID),
		h.ownerRef(ctx, node, q.ViewerID),
		&perms,
	)

	if err := models.CheckShape(resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (h *GetNodeHandler) shareSnapshot(ctx context.Context, node *entities.TimelineNode, viewerID int) (services.ShareSnapshot, error) {
	shares := services.ShareSnapshot{}
	if node.OwnerID() == viewerID {
		return shares, nil
	}
	grants, err := h.shareRepo.GetByNode(ctx, node.ID())
	if err != nil {
		return nil, err
	}
	for _, g := range grants {
		shares[g.GranteeID()] = g.Level()
	}
	return shares, nil
}

// parentRef builds the parent projection. A parent the viewer cannot see
// is omitted entirely, same as a missing one.
func (h *GetNodeHandler) parentRef(ctx context.Context, node *entities.TimelineNode, viewerID int) *models.ParentRef {
	pid := node.ParentID()
	if pid == nil {
		return nil
	}
	parent, err := h.nodeRepo.GetByID(ctx, *pid)
	if err != nil {
		h.logger.Warn("failed to load parent projection",
			zap.String("parentID", pid.String()),
			zap.Error(err),
		)
		return nil
	}
	shares, err := h.shareSnapshot(ctx, parent, viewerID)
	if err != nil {
		h.logger.Warn("failed to load parent grants",
			zap.String("parentID", pid.String()),
			zap.Error(err),
		)
		return nil
	}
	if !h.permissions.CanViewNode(parent, viewerID, shares) {
		return nil
	}
	return models.NewParentRef(parent)
}

// ownerRef builds the owner projection. The caller's own identity is
// implicit, so self-owned nodes carry no owner sub-object.
func (h *GetNodeHandler) ownerRef(ctx context.Context, node *entities.TimelineNode, viewerID int) *models.OwnerRef {
	if node.OwnerID() == viewerID {
		return nil
	}
	profile, err := h.users.GetUser(ctx, node.OwnerID())
	if err != nil {
		h.logger.Warn("failed to load owner projection",
			zap.Int("ownerID", node.OwnerID()),
			zap.Error(err),
		)
		return nil
	}
	return &models.OwnerRef{
		ID:        profile.ID,
		UserName:  profile.UserName,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
		Email:     profile.Email,
	}
}
