package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/events"
	"journey-backend/domain/services"
	pkgerrors "journey-backend/pkg/errors"
)

// DeleteNodeCommand represents the command to delete a timeline node
type DeleteNodeCommand struct {
	NodeID  string `json:"node_id" validate:"required"`
	ActorID int    `json:"actor_id" validate:"required,gt=0"`
}

// Validate validates the command
func (cmd DeleteNodeCommand) Validate() error {
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.ActorID <= 0 {
		return errors.New("actor ID is required")
	}
	return nil
}

// DeleteNodeHandler handles the DeleteNodeCommand
type DeleteNodeHandler struct {
	nodeRepo    ports.NodeRepository
	shareRepo   ports.ShareRepository
	insightRepo ports.InsightRepository
	permissions *services.PermissionService
	publisher   ports.EventPublisher
	lock        ports.DistributedLock
	logger      *zap.Logger
}

// NewDeleteNodeHandler creates a new handler instance
func NewDeleteNodeHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	insightRepo ports.InsightRepository,
	permissions *services.PermissionService,
	publisher ports.EventPublisher,
	lock ports.DistributedLock,
	logger *zap.Logger,
) *DeleteNodeHandler {
	return &DeleteNodeHandler{
		nodeRepo:    nodeRepo,
		shareRepo:   shareRepo,
		insightRepo: insightRepo,
		permissions: permissions,
		publisher:   publisher,
		lock:        lock,
		logger:      logger,
	}
}

// Handle executes the delete node command. Only the owner may delete.
// Children of the deleted node are promoted to its former parent so the
// remaining forest stays connected; grants and insights on the node are
// removed with it.
func (h *DeleteNodeHandler) Handle(ctx context.Context, cmd DeleteNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.ErrNodeNotFound
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return err
	}
	// Same ordering as update: an invisible node is indistinguishable from a
	// missing one, while a grantee who can see it learns deletion is owner-only.
	perms := projectPermissions(ctx, h.shareRepo, h.permissions, node, cmd.ActorID)
	if !perms.CanView {
		return pkgerrors.ErrNodeNotFound
	}
	if !perms.CanDelete {
		return pkgerrors.ErrUserNotAuthorized
	}

	release, err := h.lock.Acquire(ctx, hierarchyLockKey(node.OwnerID()))
	if err != nil {
		return pkgerrors.ErrConcurrentModification.WithCause(err)
	}
	defer release()

	children, err := h.nodeRepo.GetChildren(ctx, nodeID)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := child.SetParent(node.ParentID()); err != nil {
			return err
		}
		if err := h.nodeRepo.Save(ctx, child); err != nil {
			return err
		}
	}

	if err := h.shareRepo.DeleteByNode(ctx, nodeID); err != nil {
		h.logger.Warn("failed to delete share grants for node",
			zap.String("nodeID", nodeID.String()),
			zap.Error(err),
		)
	}
	if err := h.insightRepo.DeleteByNode(ctx, nodeID); err != nil {
		h.logger.Warn("failed to delete insights for node",
			zap.String("nodeID", nodeID.String()),
			zap.Error(err),
		)
	}

	if err := h.nodeRepo.Delete(ctx, nodeID); err != nil {
		return err
	}

	event := events.NewNodeDeleted(nodeID, node.OwnerID(), time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish node deleted event",
			zap.String("nodeID", nodeID.String()),
			zap.Error(err),
		)
	}

	return nil
}
