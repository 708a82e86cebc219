package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"journey-backend/application/commands"
	"journey-backend/application/commands/bus"
	"journey-backend/application/ports"
	"journey-backend/application/queries"
	querybus "journey-backend/application/queries/bus"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/validators"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/events"
	"journey-backend/domain/services"
	"journey-backend/pkg/auth"
	pkgerrors "journey-backend/pkg/errors"
)

// memNodeRepo is an in-memory NodeRepository for handler-level tests
type memNodeRepo struct {
	nodes map[string]*entities.TimelineNode
}

func newMemNodeRepo() *memNodeRepo {
	return &memNodeRepo{nodes: make(map[string]*entities.TimelineNode)}
}

func (r *memNodeRepo) Save(ctx context.Context, node *entities.TimelineNode) error {
	r.nodes[node.ID().String()] = node
	return nil
}

func (r *memNodeRepo) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.TimelineNode, error) {
	node, ok := r.nodes[id.String()]
	if !ok {
		return nil, pkgerrors.ErrNodeNotFound
	}
	return node, nil
}

func (r *memNodeRepo) GetByOwner(ctx context.Context, ownerID int, criteria ports.ListCriteria) ([]*entities.TimelineNode, error) {
	var out []*entities.TimelineNode
	for _, n := range r.nodes {
		if n.OwnerID() == ownerID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNodeRepo) GetChildren(ctx context.Context, parentID valueobjects.NodeID) ([]*entities.TimelineNode, error) {
	var out []*entities.TimelineNode
	for _, n := range r.nodes {
		if pid := n.ParentID(); pid != nil && pid.Equals(parentID) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNodeRepo) GetRoots(ctx context.Context, ownerID int) ([]*entities.TimelineNode, error) {
	var out []*entities.TimelineNode
	for _, n := range r.nodes {
		if n.OwnerID() == ownerID && n.IsRoot() {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *memNodeRepo) CountByOwner(ctx context.Context, ownerID int, nodeType *valueobjects.NodeType) (int, error) {
	nodes, _ := r.GetByOwner(ctx, ownerID, ports.ListCriteria{})
	return len(nodes), nil
}

func (r *memNodeRepo) Delete(ctx context.Context, id valueobjects.NodeID) error {
	delete(r.nodes, id.String())
	return nil
}

// memShareRepo is an in-memory ShareRepository
type memShareRepo struct {
	grants map[string]map[int]*entities.ShareGrant
}

func newMemShareRepo() *memShareRepo {
	return &memShareRepo{grants: make(map[string]map[int]*entities.ShareGrant)}
}

func (r *memShareRepo) Save(ctx context.Context, grant *entities.ShareGrant) error {
	key := grant.NodeID().String()
	if r.grants[key] == nil {
		r.grants[key] = make(map[int]*entities.ShareGrant)
	}
	r.grants[key][grant.GranteeID()] = grant
	return nil
}

func (r *memShareRepo) GetByNode(ctx context.Context, nodeID valueobjects.NodeID) ([]*entities.ShareGrant, error) {
	var out []*entities.ShareGrant
	for _, g := range r.grants[nodeID.String()] {
		out = append(out, g)
	}
	return out, nil
}

func (r *memShareRepo) GetByNodeAndGrantee(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) (*entities.ShareGrant, error) {
	grant, ok := r.grants[nodeID.String()][granteeID]
	if !ok {
		return nil, pkgerrors.ErrGrantNotFound
	}
	return grant, nil
}

func (r *memShareRepo) Delete(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) error {
	delete(r.grants[nodeID.String()], granteeID)
	return nil
}

func (r *memShareRepo) DeleteByNode(ctx context.Context, nodeID valueobjects.NodeID) error {
	delete(r.grants, nodeID.String())
	return nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	return nil
}

func (noopPublisher) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	return nil
}

type memDirectory struct{}

func (d *memDirectory) GetUser(ctx context.Context, userID int) (*ports.UserProfile, error) {
	return nil, pkgerrors.ErrUserNotFound
}

type memLock struct{}

func (l *memLock) Acquire(ctx context.Context, resource string) (func(), error) {
	return func() {}, nil
}

// nodeHandlerFixture wires a NodeHandler over in-memory dependencies and a
// chi router so requests travel the same path they do in production.
type nodeHandlerFixture struct {
	repo   *memNodeRepo
	router chi.Router
	userID int
}

func newNodeHandlerFixture(t *testing.T) *nodeHandlerFixture {
	t.Helper()

	logger := zap.NewNop()
	repo := newMemNodeRepo()
	shares := newMemShareRepo()
	permissions := services.NewPermissionService()
	validator := validators.NewNodeValidator()
	publisher := noopPublisher{}
	lock := &memLock{}

	createNode := commands.NewCreateNodeHandler(repo, publisher, validator, logger)
	updateNode := commands.NewUpdateNodeHandler(repo, shares, permissions, publisher, validator, lock, logger)
	getNode := queries.NewGetNodeHandler(repo, shares, &memDirectory{}, permissions, logger)

	queryBus := querybus.NewQueryBus()
	err := queryBus.Register(queries.GetNodeQuery{}, querybus.QueryHandlerFunc(
		func(ctx context.Context, q querybus.Query) (interface{}, error) {
			getQuery, ok := q.(queries.GetNodeQuery)
			if !ok {
				return nil, pkgerrors.ErrNodeNotFound
			}
			return getNode.Handle(ctx, getQuery)
		},
	))
	require.NoError(t, err)

	handler := NewNodeHandler(createNode, updateNode, bus.NewCommandBus(), queryBus, pkgerrors.NewErrorHandler(logger, false), logger)

	f := &nodeHandlerFixture{repo: repo, userID: 42}
	router := chi.NewRouter()
	router.Use(f.authenticate)
	router.Patch("/nodes/{nodeID}", handler.UpdateNode)
	f.router = router
	return f
}

func (f *nodeHandlerFixture) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{UserID: f.userID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (f *nodeHandlerFixture) seed(t *testing.T, meta map[string]interface{}) *entities.TimelineNode {
	t.Helper()
	nodeType, ok := valueobjects.ParseNodeType("job")
	require.True(t, ok)
	node, err := entities.NewTimelineNode(f.userID, nodeType, nil, meta)
	require.NoError(t, err)
	node.MarkEventsAsCommitted()
	require.NoError(t, f.repo.Save(context.Background(), node))
	return node
}

func TestUpdateNodeHTTPEmptyBodyIsNoOp(t *testing.T) {
	f := newNodeHandlerFixture(t)
	node := f.seed(t, map[string]interface{}{"role": "Engineer", "company": "Acme"})

	req := httptest.NewRequest(http.MethodPatch, "/nodes/"+node.ID().String(), strings.NewReader(""))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := f.repo.GetByID(context.Background(), node.ID())
	require.NoError(t, err)
	assert.Equal(t, "Engineer", got.Meta()["role"], "an empty patch changes nothing")
}

func TestUpdateNodeHTTPTruncatedBodyRejected(t *testing.T) {
	f := newNodeHandlerFixture(t)
	node := f.seed(t, map[string]interface{}{"role": "Engineer"})

	req := httptest.NewRequest(http.MethodPatch, "/nodes/"+node.ID().String(), strings.NewReader(`{"meta":`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_BODY")
}

func TestUpdateNodeHTTPUnknownFieldRejected(t *testing.T) {
	f := newNodeHandlerFixture(t)
	node := f.seed(t, map[string]interface{}{"role": "Engineer"})

	req := httptest.NewRequest(http.MethodPatch, "/nodes/"+node.ID().String(), strings.NewReader(`{"typo":{}}`))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_BODY")
}
