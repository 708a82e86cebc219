package queries

import (
	"context"
	"sync"

	"journey-backend/application/ports"
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
	pkgerrors "journey-backend/pkg/errors"
)

// fakeNodeRepo is an in-memory NodeRepository for query handler tests
type fakeNodeRepo struct {
	mu    sync.Mutex
	nodes map[string]*entities.TimelineNode
}

func newFakeNodeRepo() *fakeNodeRepo {
	return &fakeNodeRepo{nodes: make(map[string]*entities.TimelineNode)}
}

func (r *fakeNodeRepo) Save(ctx context.Context, node *entities.TimelineNode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[node.ID().String()] = node
	return nil
}

func (r *fakeNodeRepo) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.TimelineNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.nodes[id.String()]
	if !ok {
		return nil, pkgerrors.ErrNodeNotFound
	}
	return node, nil
}

func (r *fakeNodeRepo) GetByOwner(ctx context.Context, ownerID int, criteria ports.ListCriteria) ([]*entities.TimelineNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TimelineNode
	for _, n := range r.nodes {
		if n.OwnerID() != ownerID {
			continue
		}
		if criteria.Type != nil && n.Type() != *criteria.Type {
			continue
		}
		out = append(out, n)
		if criteria.Limit > 0 && len(out) >= criteria.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeNodeRepo) GetChildren(ctx context.Context, parentID valueobjects.NodeID) ([]*entities.TimelineNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TimelineNode
	for _, n := range r.nodes {
		if pid := n.ParentID(); pid != nil && pid.Equals(parentID) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNodeRepo) GetRoots(ctx context.Context, ownerID int) ([]*entities.TimelineNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.TimelineNode
	for _, n := range r.nodes {
		if n.OwnerID() == ownerID && n.IsRoot() {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNodeRepo) CountByOwner(ctx context.Context, ownerID int, nodeType *valueobjects.NodeType) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.nodes {
		if n.OwnerID() != ownerID {
			continue
		}
		if nodeType != nil && n.Type() != *nodeType {
			continue
		}
		count++
	}
	return count, nil
}

func (r *fakeNodeRepo) Delete(ctx context.Context, id valueobjects.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, id.String())
	return nil
}

// fakeShareRepo is an in-memory ShareRepository
type fakeShareRepo struct {
	mu     sync.Mutex
	grants map[string]map[int]*entities.ShareGrant
}

func newFakeShareRepo() *fakeShareRepo {
	return &fakeShareRepo{grants: make(map[string]map[int]*entities.ShareGrant)}
}

func (r *fakeShareRepo) Save(ctx context.Context, grant *entities.ShareGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := grant.NodeID().String()
	if r.grants[key] == nil {
		r.grants[key] = make(map[int]*entities.ShareGrant)
	}
	r.grants[key][grant.GranteeID()] = grant
	return nil
}

func (r *fakeShareRepo) GetByNode(ctx context.Context, nodeID valueobjects.NodeID) ([]*entities.ShareGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ShareGrant
	for _, g := range r.grants[nodeID.String()] {
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeShareRepo) GetByNodeAndGrantee(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) (*entities.ShareGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.grants[nodeID.String()][granteeID]
	if !ok {
		return nil, pkgerrors.ErrGrantNotFound
	}
	return g, nil
}

func (r *fakeShareRepo) Delete(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants[nodeID.String()], granteeID)
	return nil
}

func (r *fakeShareRepo) DeleteByNode(ctx context.Context, nodeID valueobjects.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.grants, nodeID.String())
	return nil
}

// fakeInsightRepo is an in-memory InsightRepository
type fakeInsightRepo struct {
	mu       sync.Mutex
	insights map[string][]*entities.Insight
}

func newFakeInsightRepo() *fakeInsightRepo {
	return &fakeInsightRepo{insights: make(map[string][]*entities.Insight)}
}

func (r *fakeInsightRepo) Save(ctx context.Context, insight *entities.Insight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := insight.NodeID().String()
	r.insights[key] = append(r.insights[key], insight)
	return nil
}

func (r *fakeInsightRepo) GetByNode(ctx context.Context, nodeID valueobjects.NodeID) ([]*entities.Insight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insights[nodeID.String()], nil
}

func (r *fakeInsightRepo) DeleteByNode(ctx context.Context, nodeID valueobjects.NodeID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.insights, nodeID.String())
	return nil
}

// fakeUserDirectory resolves profiles from a static map
type fakeUserDirectory struct {
	users map[int]*ports.UserProfile
}

func newFakeUserDirectory() *fakeUserDirectory {
	return &fakeUserDirectory{users: make(map[int]*ports.UserProfile)}
}

func (d *fakeUserDirectory) addUser(id int, email string) {
	d.users[id] = &ports.UserProfile{ID: id, Email: email}
}

func (d *fakeUserDirectory) GetUser(ctx context.Context, userID int) (*ports.UserProfile, error) {
	profile, ok := d.users[userID]
	if !ok {
		return nil, pkgerrors.ErrUserNotFound
	}
	return profile, nil
}

// seedNode builds and saves a node fixture directly
func seedNode(t testingT, repo *fakeNodeRepo, ownerID int, typeName string, parentID *valueobjects.NodeID) *entities.TimelineNode {
	nodeType, ok := valueobjects.ParseNodeType(typeName)
	if !ok {
		t.Fatalf("unknown node type %q", typeName)
	}
	meta := map[string]interface{}{nodeType.LabelKey(): "fixture"}
	node, err := entities.NewTimelineNode(ownerID, nodeType, parentID, meta)
	if err != nil {
		t.Fatalf("seed node: %v", err)
	}
	node.MarkEventsAsCommitted()
	if err := repo.Save(context.Background(), node); err != nil {
		t.Fatalf("seed save: %v", err)
	}
	return node
}

func seedGrant(t testingT, repo *fakeShareRepo, node *entities.TimelineNode, granteeID int, level entities.GrantLevel) {
	grant, err := entities.NewShareGrant(node.ID(), granteeID, node.OwnerID(), level)
	if err != nil {
		t.Fatalf("seed grant: %v", err)
	}
	if err := repo.Save(context.Background(), grant); err != nil {
		t.Fatalf("seed grant save: %v", err)
	}
}

type testingT interface {
	Fatalf(format string, args ...interface{})
}
