package commands

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/domain/config"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/events"
	pkgerrors "journey-backend/pkg/errors"
)

// ShareNodeCommand grants another user access to a timeline node
type ShareNodeCommand struct {
	NodeID    string `json:"node_id" validate:"required"`
	ActorID   int    `json:"actor_id" validate:"required,gt=0"`
	GranteeID int    `json:"grantee_id" validate:"required,gt=0"`
	Level     string `json:"level" validate:"required,oneof=view edit"`
}

// Validate validates the command
func (cmd ShareNodeCommand) Validate() error {
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.ActorID <= 0 {
		return errors.New("actor ID is required")
	}
	if cmd.GranteeID <= 0 {
		return errors.New("grantee ID is required")
	}
	return nil
}

// UnshareNodeCommand revokes a grant on a timeline node
type UnshareNodeCommand struct {
	NodeID    string `json:"node_id" validate:"required"`
	ActorID   int    `json:"actor_id" validate:"required,gt=0"`
	GranteeID int    `json:"grantee_id" validate:"required,gt=0"`
}

// Validate validates the command
func (cmd UnshareNodeCommand) Validate() error {
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.ActorID <= 0 {
		return errors.New("actor ID is required")
	}
	if cmd.GranteeID <= 0 {
		return errors.New("grantee ID is required")
	}
	return nil
}

// ShareNodeHandler handles grant creation and revocation
type ShareNodeHandler struct {
	nodeRepo  ports.NodeRepository
	shareRepo ports.ShareRepository
	publisher ports.EventPublisher
	cfg       *config.DomainConfig
	logger    *zap.Logger
}

// NewShareNodeHandler creates a new handler instance
func NewShareNodeHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	publisher ports.EventPublisher,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ShareNodeHandler {
	return &ShareNodeHandler{
		nodeRepo:  nodeRepo,
		shareRepo: shareRepo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// HandleShare executes the share node command. Only the owner may share.
// Granting to a user who already holds a grant replaces the level rather
// than failing, so a view grant can be upgraded in place.
func (h *ShareNodeHandler) HandleShare(ctx context.Context, cmd ShareNodeCommand) (*entities.ShareGrant, error) {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if node.OwnerID() != cmd.ActorID {
		return nil, pkgerrors.ErrNodeNotFound
	}

	level, ok := entities.ParseGrantLevel(cmd.Level)
	if !ok {
		verrs := pkgerrors.NewValidationErrors()
		verrs.Add("level", "level must be view or edit")
		return nil, verrs
	}

	existing, err := h.shareRepo.GetByNodeAndGrantee(ctx, nodeID, cmd.GranteeID)
	if err != nil && !errors.Is(err, pkgerrors.ErrGrantNotFound) {
		return nil, err
	}
	if existing == nil {
		grants, err := h.shareRepo.GetByNode(ctx, nodeID)
		if err != nil {
			return nil, err
		}
		if len(grants) >= h.cfg.MaxGrantsPerNode {
			return nil, pkgerrors.ErrGrantLimitExceeded
		}
	}

	grant, err := entities.NewShareGrant(nodeID, cmd.GranteeID, cmd.ActorID, level)
	if err != nil {
		return nil, err
	}

	if err := h.shareRepo.Save(ctx, grant); err != nil {
		return nil, err
	}

	event := events.NewNodeShared(nodeID, cmd.GranteeID, string(level), time.Now())
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish node shared event",
			zap.String("nodeID", nodeID.String()),
			zap.Error(err),
		)
	}

	return grant, nil
}

// HandleUnshare revokes a grant. Only the owner may revoke.
func (h *ShareNodeHandler) HandleUnshare(ctx context.Context, cmd UnshareNodeCommand) error {
	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.ErrNodeNotFound
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return err
	}
	if node.OwnerID() != cmd.ActorID {
		return pkgerrors.ErrNodeNotFound
	}

	if _, err := h.shareRepo.GetByNodeAndGrantee(ctx, nodeID, cmd.GranteeID); err != nil {
		return err
	}

	return h.shareRepo.Delete(ctx, nodeID, cmd.GranteeID)
}
