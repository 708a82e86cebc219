package entities

import (
	"time"

	"journey-backend/domain/config"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/domain/events"
	pkgerrors "journey-backend/pkg/errors"
)

// TimelineNode is the main entity representing one entry in a user's career
// journey. The hierarchy is a forest: parentID is nil for root-level nodes.
// This is a rich domain model with encapsulated business logic.
type TimelineNode struct {
	// Private fields ensure encapsulation
	id        valueobjects.NodeID
	ownerID   int
	nodeType  valueobjects.NodeType
	parentID  *valueobjects.NodeID
	meta      map[string]interface{}
	createdAt time.Time
	updatedAt time.Time

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewTimelineNode creates a new node with full business rule validation.
// Creation must establish a minimal identity: meta cannot be empty here,
// although updates may later pass an empty meta as a no-op.
func NewTimelineNode(ownerID int, nodeType valueobjects.NodeType, parentID *valueobjects.NodeID, meta map[string]interface{}) (*TimelineNode, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.NewValidationError("owner user ID must be positive")
	}

	if !nodeType.IsValid() {
		return nil, pkgerrors.ErrUnknownNodeType.WithDetail("type", string(nodeType))
	}

	if len(meta) == 0 {
		return nil, pkgerrors.ErrEmptyMeta
	}

	if err := validateMeta(meta, config.DefaultDomainConfig()); err != nil {
		return nil, err
	}

	now := time.Now()
	node := &TimelineNode{
		id:        valueobjects.NewNodeID(),
		ownerID:   ownerID,
		nodeType:  nodeType,
		parentID:  parentID,
		meta:      copyMeta(meta),
		createdAt: now,
		updatedAt: now,
		events:    []events.DomainEvent{},
	}

	node.addEvent(events.NewNodeCreated(node.id, ownerID, string(nodeType), now))

	return node, nil
}

// ReconstructTimelineNode reconstructs a node from repository data with
// preserved identity and timestamps
func ReconstructTimelineNode(
	id valueobjects.NodeID,
	ownerID int,
	nodeType valueobjects.NodeType,
	parentID *valueobjects.NodeID,
	meta map[string]interface{},
	createdAt, updatedAt time.Time,
) (*TimelineNode, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.NewValidationError("owner user ID must be positive")
	}

	if !nodeType.IsValid() {
		return nil, pkgerrors.ErrUnknownNodeType.WithDetail("type", string(nodeType))
	}

	return &TimelineNode{
		id:        id,
		ownerID:   ownerID,
		nodeType:  nodeType,
		parentID:  parentID,
		meta:      copyMeta(meta),
		createdAt: createdAt,
		updatedAt: updatedAt,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the node's unique identifier
func (n *TimelineNode) ID() valueobjects.NodeID {
	return n.id
}

// OwnerID returns the owning user's ID
func (n *TimelineNode) OwnerID() int {
	return n.ownerID
}

// Type returns the node's type. There is no setter: type is immutable after
// creation.
func (n *TimelineNode) Type() valueobjects.NodeType {
	return n.nodeType
}

// ParentID returns the parent reference, nil for root-level nodes
func (n *TimelineNode) ParentID() *valueobjects.NodeID {
	if n.parentID == nil {
		return nil
	}
	p := *n.parentID
	return &p
}

// IsRoot reports whether the node sits at the top of its tree
func (n *TimelineNode) IsRoot() bool {
	return n.parentID == nil
}

// Meta returns a copy of the node's metadata map
func (n *TimelineNode) Meta() map[string]interface{} {
	return copyMeta(n.meta)
}

// Label returns the node's display label from its type-conventional meta key.
// Job nodes label by role; everything else by title.
func (n *TimelineNode) Label() string {
	if v, ok := n.meta[n.nodeType.LabelKey()].(string); ok {
		return v
	}
	return ""
}

// UpdateMeta replaces the node's metadata. An empty map is a valid no-op on
// update: only creation requires non-empty meta.
func (n *TimelineNode) UpdateMeta(meta map[string]interface{}) error {
	if len(meta) == 0 {
		return nil
	}

	if err := validateMeta(meta, config.DefaultDomainConfig()); err != nil {
		return err
	}

	n.meta = copyMeta(meta)
	n.updatedAt = time.Now()

	n.addEvent(events.NewNodeUpdated(n.id, n.ownerID, n.updatedAt))

	return nil
}

// SetParent re-parents the node. A nil parent promotes the node to root
// level. Cycle detection against persisted ancestors is a persistence-layer
// responsibility; the entity only rejects self-parenting.
func (n *TimelineNode) SetParent(parentID *valueobjects.NodeID) error {
	if parentID != nil && parentID.Equals(n.id) {
		return pkgerrors.ErrSelfParent.WithDetail("node_id", n.id.String())
	}

	var oldParent, newParent string
	if n.parentID != nil {
		oldParent = n.parentID.String()
	}
	if parentID != nil {
		p := *parentID
		n.parentID = &p
		newParent = p.String()
	} else {
		n.parentID = nil
	}
	n.updatedAt = time.Now()

	n.addEvent(events.NewNodeReparented(n.id, oldParent, newParent, n.updatedAt))

	return nil
}

// CreatedAt returns when the node was created
func (n *TimelineNode) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *TimelineNode) UpdatedAt() time.Time {
	return n.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (n *TimelineNode) GetUncommittedEvents() []events.DomainEvent {
	return n.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (n *TimelineNode) MarkEventsAsCommitted() {
	n.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (n *TimelineNode) addEvent(event events.DomainEvent) {
	n.events = append(n.events, event)
}

// validateMeta enforces structural bounds on the open metadata map. Per-type
// key shapes are conventions carried by the type registry, not rules.
func validateMeta(meta map[string]interface{}, cfg *config.DomainConfig) error {
	if len(meta) > cfg.MaxMetaKeys {
		return pkgerrors.NewDomainError(
			pkgerrors.DomainValidationError,
			"TOO_MANY_META_KEYS",
			"Node metadata exceeds the maximum number of keys",
		).WithDetail("field", "meta").WithDetail("count", len(meta)).WithDetail("limit", cfg.MaxMetaKeys)
	}

	for key, value := range meta {
		if len(key) > cfg.MaxMetaKeyLength {
			return pkgerrors.NewDomainError(
				pkgerrors.DomainValidationError,
				"META_KEY_TOO_LONG",
				"Node metadata key exceeds maximum length",
			).WithDetail("field", "meta").WithDetail("key", key)
		}

		if s, ok := value.(string); ok && len(s) > cfg.MaxMetaValueBytes {
			return pkgerrors.NewDomainError(
				pkgerrors.DomainValidationError,
				"META_VALUE_TOO_LONG",
				"Node metadata value exceeds maximum size",
			).WithDetail("field", "meta").WithDetail("key", key)
		}
	}

	return nil
}

// copyMeta returns a shallow copy to maintain encapsulation
func copyMeta(meta map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
