package commands

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"journey-backend/application/ports"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/validators"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/services"
	pkgerrors "journey-backend/pkg/errors"
)

// UpdateNodeCommand represents a partial update to a timeline node.
// HasMeta and HasParent distinguish omitted keys from explicit values,
// since a null parentId is itself a meaningful value (promote to root).
type UpdateNodeCommand struct {
	NodeID    string                 `json:"node_id" validate:"required"`
	ActorID   int                    `json:"actor_id" validate:"required,gt=0"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
	HasMeta   bool                   `json:"-"`
	ParentID  *string                `json:"parent_id,omitempty"`
	HasParent bool                   `json:"-"`
}

// Validate validates the command
func (cmd UpdateNodeCommand) Validate() error {
	if cmd.NodeID == "" {
		return errors.New("node ID is required")
	}
	if cmd.ActorID <= 0 {
		return errors.New("actor ID is required")
	}
	return nil
}

// UpdateNodeHandler handles the UpdateNodeCommand
type UpdateNodeHandler struct {
	nodeRepo    ports.NodeRepository
	shareRepo   ports.ShareRepository
	permissions *services.PermissionService
	publisher   ports.EventPublisher
	validator   *validators.NodeValidator
	lock        ports.DistributedLock
	logger      *zap.Logger
}

// NewUpdateNodeHandler creates a new handler instance
func NewUpdateNodeHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	permissions *services.PermissionService,
	publisher ports.EventPublisher,
	validator *validators.NodeValidator,
	lock ports.DistributedLock,
	logger *zap.Logger,
) *UpdateNodeHandler {
	return &UpdateNodeHandler{
		nodeRepo:    nodeRepo,
		shareRepo:   shareRepo,
		permissions: permissions,
		publisher:   publisher,
		validator:   validator,
		lock:        lock,
		logger:      logger,
	}
}

// Handle executes the update node command. An update carrying no changes is
// a valid no-op and returns the node untouched. Type is never updatable.
func (h *UpdateNodeHandler) Handle(ctx context.Context, cmd UpdateNodeCommand) (*entities.TimelineNode, error) {
	update, err := h.validator.ValidateUpdate(validators.UpdateNodeInput{
		Meta:      cmd.Meta,
		HasMeta:   cmd.HasMeta,
		ParentID:  cmd.ParentID,
		HasParent: cmd.HasParent,
	})
	if err != nil {
		return nil, err
	}

	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound
	}

	node, err := h.nodeRepo.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	// A node the actor cannot edit is indistinguishable from a missing one.
	perms := projectPermissions(ctx, h.shareRepo, h.permissions, node, cmd.ActorID)
	if !perms.CanView {
		return nil, pkgerrors.ErrNodeNotFound
	}
	if !perms.CanEdit {
		return nil, pkgerrors.ErrUserNotAuthorized
	}

	if update.HasMeta {
		if err := node.UpdateMeta(update.Meta); err != nil {
			return nil, err
		}
	}

	if update.HasParent {
		if err := h.reparent(ctx, node, update.ParentID); err != nil {
			return nil, err
		}
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

// reparent moves the node under a new parent, holding the owner's hierarchy
// lock so two concurrent moves cannot weave a cycle between their checks.
func (h *UpdateNodeHandler) reparent(ctx context.Context, node *entities.TimelineNode, parentID *valueobjects.NodeID) error {
	release, err := h.lock.Acquire(ctx, hierarchyLockKey(node.OwnerID()))
	if err != nil {
		return pkgerrors.ErrConcurrentModification.WithCause(err)
	}
	defer release()

	if parentID != nil {
		parent, err := h.nodeRepo.GetByID(ctx, *parentID)
		if err != nil && !errors.Is(err, pkgerrors.ErrNodeNotFound) {
			return err
		}
		if parent == nil || parent.OwnerID() != node.OwnerID() {
			verrs := pkgerrors.NewValidationErrors()
			verrs.Add("parentId", "parentId does not reference one of your nodes")
			return verrs
		}

		cyclic, err := wouldCreateCycle(ctx, h.nodeRepo, node.ID(), parent)
		if err != nil {
			return err
		}
		if cyclic {
			return pkgerrors.ErrCyclicParent
		}
	}

	return node.SetParent(parentID)
}

// projectPermissions resolves the actor's permissions on a node from its
// current grants. A failed grant lookup projects as no access.
func projectPermissions(ctx context.Context, shareRepo ports.ShareRepository, svc *services.PermissionService, node *entities.TimelineNode, actorID int) services.NodePermissions {
	shares := services.ShareSnapshot{}
	if node.OwnerID() != actorID {
		grants, err := shareRepo.GetByNode(ctx, node.ID())
		if err == nil {
			for _, g := range grants {
				shares[g.GranteeID()] = g.Level()
			}
		}
	}
	return svc.Project(node, actorID, shares)
}

// wouldCreateCycle walks from the candidate parent up to its root and
// reports whether the moving node is one of its ancestors. The walk is
// bounded so a corrupt chain cannot spin forever.
func wouldCreateCycle(ctx context.Context, repo ports.NodeRepository, movingID valueobjects.NodeID, parent *entities.TimelineNode) (bool, error) {
	const maxAncestors = 10000

	current := parent
	for i := 0; i < maxAncestors; i++ {
		if current.ID().Equals(movingID) {
			return true, nil
		}
		pid := current.ParentID()
		if pid == nil {
			return false, nil
		}
		next, err := repo.GetByID(ctx, *pid)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrNodeNotFound) {
				return false, nil
			}
			return false, err
		}
		current = next
	}
	return true, nil
}

func hierarchyLockKey(ownerID int) string {
	return "hierarchy:" + strconv.Itoa(ownerID)
}
