package commands

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/validators"
	pkgerrors "journey-backend/pkg/errors"
)

// CreateNodeCommand represents the command to create a new timeline node
type CreateNodeCommand struct {
	OwnerID  int                    `json:"owner_id" validate:"required,gt=0"`
	Type     string                 `json:"type" validate:"required"`
	ParentID *string                `json:"parent_id,omitempty"`
	Meta     map[string]interface{} `json:"meta" validate:"required"`
}

// Validate validates the command
func (cmd CreateNodeCommand) Validate() error {
	if cmd.OwnerID <= 0 {
		return errors.New("owner ID is required")
	}
	if cmd.Type == "" {
		return errors.New("type is required")
	}
	return nil
}

// CreateNodeHandler handles the CreateNodeCommand
type CreateNodeHandler struct {
	nodeRepo  ports.NodeRepository
	publisher ports.EventPublisher
	validator *validators.NodeValidator
	logger    *zap.Logger
}

// NewCreateNodeHandler creates a new handler instance
func NewCreateNodeHandler(
	nodeRepo ports.NodeRepository,
	publisher ports.EventPublisher,
	validator *validators.NodeValidator,
	logger *zap.Logger,
) *CreateNodeHandler {
	return &CreateNodeHandler{
		nodeRepo:  nodeRepo,
		publisher: publisher,
		validator: validator,
		logger:    logger,
	}
}

// Handle executes the create node command
func (h *CreateNodeHandler) Handle(ctx context.Context, cmd CreateNodeCommand) (*entities.TimelineNode, error) {
	draft, err := h.validator.ValidateCreate(validators.CreateNodeInput{
		Type:     cmd.Type,
		ParentID: cmd.ParentID,
		Meta:     cmd.Meta,
	})
	if err != nil {
		return nil, err
	}

	// Parent must exist and belong to the same owner. A parent the caller
	// cannot see is reported as an invalid parent, not as a missing one.
	if draft.ParentID != nil {
		parent, err := h.nodeRepo.GetByID(ctx, *draft.ParentID)
		if err != nil && !errors.Is(err, pkgerrors.ErrNodeNotFound) {
			return nil, err
		}
		if parent == nil || parent.OwnerID() != cmd.OwnerID {
			verrs := pkgerrors.NewValidationErrors()
			verrs.Add("parentId", "parentId does not reference one of your nodes")
			return nil, verrs
		}
	}

	node, err := entities.NewTimelineNode(cmd.OwnerID, draft.Type, draft.ParentID, draft.Meta)
	if err != nil {
		return nil, err
	}

	if err := h.nodeRepo.Save(ctx, node); err != nil {
		return nil, err
	}

	if err := h.publisher.PublishBatch(ctx, node.GetUncommittedEvents()); err != nil {
		h.logger.Warn("failed to publish node events",
			zap.String("nodeID", node.ID().String()),
			zap.Error(err),
		)
	}
	node.MarkEventsAsCommitted()

	return node, nil
}
