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

// GetHierarchyQuery resolves a node plus its ancestor and descendant chain
// bounded by MaxDepth. Depth bounds distance from the root in either
// direction; it is a depth limit, not a breadth limit.
type GetHierarchyQuery struct {
	RootID          string
	ViewerID        int
	MaxDepth        int
	IncludeChildren bool
	Type            *valueobjects.NodeType
}

// Validate validates the query
func (q GetHierarchyQuery) Validate() error {
	if q.RootID == "" {
		return errors.New("root ID is required")
	}
	if q.ViewerID <= 0 {
		return errors.New("viewer ID is required")
	}
	if q.MaxDepth <= 0 {
		return errors.New("max depth must be positive")
	}
	return nil
}

// GetHierarchyHandler handles the GetHierarchyQuery
type GetHierarchyHandler struct {
	nodeRepo    ports.NodeRepository
	shareRepo   ports.ShareRepository
	users       ports.UserDirectory
	permissions *services.PermissionService
	logger      *zap.Logger
}

// NewGetHierarchyHandler creates a new handler instance
func NewGetHierarchyHandler(
	nodeRepo ports.NodeRepository,
	shareRepo ports.ShareRepository,
	users ports.UserDirectory,
	permissions *services.PermissionService,
	logger *zap.Logger,
) *GetHierarchyHandler {
	return &GetHierarchyHandler{
		nodeRepo:    nodeRepo,
		shareRepo:   shareRepo,
		users:       users,
		permissions: permissions,
		logger:      logger,
	}
}

// hierarchyWalk carries per-request state: the grant snapshot is captured
// per node once and reused so every projection in one response reflects
// the same moment.
type hierarchyWalk struct {
	h        *GetHierarchyHandler
	viewerID int
	typ      *valueobjects.NodeType
	snaps    map[string]services.ShareSnapshot
	nodes    []models.TimelineNodeResponse
}

// Handle executes the hierarchy query. A root the viewer cannot see is
// reported as missing. Every other node is permission-checked on its own:
// an invisible ancestor is skipped without ending the climb, and an
// invisible descendant prunes its subtree. Partial hierarchies with mixed
// visibility are a normal outcome, not an error.
func (h *GetHierarchyHandler) Handle(ctx context.Context, q GetHierarchyQuery) (*models.HierarchyResponse, error) {
	rootID, err := valueobjects.NewNodeIDFromString(q.RootID)
	if err != nil {
		return nil, pkgerrors.ErrNodeNotFound
	}

	root, err := h.nodeRepo.GetByID(ctx, rootID)
	if err != nil {
		return nil, err
	}

	walk := &hierarchyWalk{
		h:        h,
		viewerID: q.ViewerID,
		typ:      q.Type,
		snaps:    make(map[string]services.ShareSnapshot),
	}

	rootPerms, err := walk.project(ctx, root)
	if err != nil {
		return nil, err
	}
	if !rootPerms.CanView {
		return nil, pkgerrors.ErrNodeNotFound
	}

	ancestors, err := walk.collectAncestors(ctx, root, q.MaxDepth)
	if err != nil {
		return nil, err
	}
	// Farthest ancestor first, so the slice reads top-down
	for i := len(ancestors) - 1; i >= 0; i-- {
		if err := walk.append(ctx, ancestors[i]); err != nil {
			return nil, err
		}
	}

	if err := walk.append(ctx, root); err != nil {
		return nil, err
	}

	if q.IncludeChildren {
		if err := walk.collectDescendants(ctx, root, q.MaxDepth); err != nil {
			return nil, err
		}
	}

	resp := &models.HierarchyResponse{
		Nodes:      walk.nodes,
		TotalCount: len(walk.nodes),
	}
	return resp, nil
}

// collectAncestors climbs from the root's parent, nearest first, stopping
// at maxDepth or the top of the chain. Invisible or type-filtered
// ancestors are dropped from the result but do not stop the climb.
func (w *hierarchyWalk) collectAncestors(ctx context.Context, root *entities.TimelineNode, maxDepth int) ([]*entities.TimelineNode, error) {
	var chain []*entities.TimelineNode

	current := root
	for depth := 0; depth < maxDepth; depth++ {
		pid := current.ParentID()
		if pid == nil {
			break
		}
		parent, err := w.h.nodeRepo.GetByID(ctx, *pid)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrNodeNotFound) {
				break
			}
			return nil, err
		}
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}

// collectDescendants walks breadth-first below the root. A child the
// viewer cannot see prunes its whole subtree.
func (w *hierarchyWalk) collectDescendants(ctx context.Context, root *entities.TimelineNode, maxDepth int) error {
	type frontier struct {
		node  *entities.TimelineNode
		depth int
	}

	queue := []frontier{{node: root, depth: 0}}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if next.depth >= maxDepth {
			continue
		}

		children, err := w.h.nodeRepo.GetChildren(ctx, next.node.ID())
		if err != nil {
			return err
		}
		for _, child := range children {
			perms, err := w.project(ctx, child)
			if err != nil {
				return err
			}
			if !perms.CanView {
				continue
			}
			if err := w.append(ctx, child); err != nil {
				return err
			}
			queue = append(queue, frontier{node: child, depth: next.depth + 1})
		}
	}
	return nil
}

// append serializes a node with fresh projections and adds it to the
// result if it is visible and matches the type filter.
func (w *hierarchyWalk) append(ctx context.Context, node *entities.TimelineNode) error {
	perms, err := w.project(ctx, node)
	if err != nil {
		return err
	}
	if !perms.CanView {
		return nil
	}
	if w.typ != nil && node.Type() != *w.typ {
		return nil
	}

	resp := models.NewTimelineNodeResponse(
		node,
		w.parentRef(ctx, node),
		w.ownerRef(ctx, node),
		&perms,
	)
	if err := models.CheckShape(resp); err != nil {
		return err
	}
	w.nodes = append(w.nodes, resp)
	return nil
}

func (w *hierarchyWalk) project(ctx context.Context, node *entities.TimelineNode) (services.NodePermissions, error) {
	key := node.ID().String()
	snap, ok := w.snaps[key]
	if !ok {
		snap = services.ShareSnapshot{}
		if node.OwnerID() != w.viewerID {
			grants, err := w.h.shareRepo.GetByNode(ctx, node.ID())
			if err != nil {
				return services.NodePermissions{}, err
			}
			for _, g := range grants {
				snap[g.GranteeID()] = g.Level()
			}
		}
		w.snaps[key] = snap
	}
	return w.h.permissions.Project(node, w.viewerID, snap), nil
}

// parentRef builds the parent projection. A parent the viewer cannot see
// is omitted entirely, same as a missing one.
func (w *hierarchyWalk) parentRef(ctx context.Context, node *entities.TimelineNode) *models.ParentRef {
	pid := node.ParentID()
	if pid == nil {
		return nil
	}
	parent, err := w.h.nodeRepo.GetByID(ctx, *pid)
	if err != nil {
		return nil
	}
	perms, err := w.project(ctx, parent)
	if err != nil || !perms.CanView {
		return nil
	}
	return models.NewParentRef(parent)
}

func (w *hierarchyWalk) ownerRef(ctx context.Context, node *entities.TimelineNode) *models.OwnerRef {
	if node.OwnerID() == w.viewerID {
		return nil
	}
	profile, err := w.h.users.GetUser(ctx, node.OwnerID())
	if err != nil {
		w.h.logger.Warn("failed to load owner projection",
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
