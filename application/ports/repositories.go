package ports

import (
	"context"

	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/events"
)

// NodeRepository defines the interface for timeline node persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type NodeRepository interface {
	// Save persists a node (create or update)
	Save(ctx context.Context, node *entities.TimelineNode) error

	// GetByID retrieves a node by its ID
	GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.TimelineNode, error)

	// GetByOwner retrieves nodes for an owner, optionally filtered by type
	GetByOwner(ctx context.Context, ownerID int, criteria ListCriteria) ([]*entities.TimelineNode, error)

	// GetChildren retrieves the direct children of a node
	GetChildren(ctx context.Context, parentID valueobjects.NodeID) ([]*entities.TimelineNode, error)

	// GetRoots retrieves an owner's parentless nodes
	GetRoots(ctx context.Context, ownerID int) ([]*entities.TimelineNode, error)

	// CountByOwner returns the number of nodes an owner holds, optionally
	// restricted to one type
	CountByOwner(ctx context.Context, ownerID int, nodeType *valueobjects.NodeType) (int, error)

	// Delete removes a node
	Delete(ctx context.Context, id valueobjects.NodeID) error
}

// ShareRepository defines the interface for share grant persistence
type ShareRepository interface {
	// Save persists a grant
	Save(ctx context.Context, grant *entities.ShareGrant) error

	// GetByNode retrieves all grants on a node
	GetByNode(ctx context.Context, nodeID valueobjects.NodeID) ([]*entities.ShareGrant, error)

	// GetByNodeAndGrantee retrieves a single grant, if any
	GetByNodeAndGrantee(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) (*entities.ShareGrant, error)

	// Delete removes a grant
	Delete(ctx context.Context, nodeID valueobjects.NodeID, granteeID int) error

	// DeleteByNode removes every grant on a node
	DeleteByNode(ctx context.Context, nodeID valueobjects.NodeID) error
}

// InsightRepository defines the interface for insight persistence
type InsightRepository interface {
	// Save persists an insight
	Save(ctx context.Context, insight *entities.Insight) error

	// GetByNode retrieves all insights attached to a node
	GetByNode(ctx context.Context, nodeID valueobjects.NodeID) ([]*entities.Insight, error)

	// DeleteByNode removes every insight on a node
	DeleteByNode(ctx context.Context, nodeID valueobjects.NodeID) error
}

// ListCriteria defines listing parameters for owner-scoped node queries
type ListCriteria struct {
	Type   *valueobjects.NodeType
	Limit  int
	Cursor string
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// DistributedLock guards multi-step mutations that cannot run concurrently
// for the same resource, such as re-parenting within one hierarchy.
type DistributedLock interface {
	// Acquire takes the lock for a resource, returning a release function
	Acquire(ctx context.Context, resource string) (release func(), err error)
}
