package events

import (
	"time"

	"journey-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Node events

// NodeCreated is raised when a new timeline node is created
type NodeCreated struct {
	BaseEvent
	NodeID   valueobjects.NodeID `json:"node_id"`
	OwnerID  int                 `json:"owner_id"`
	NodeType string              `json:"node_type"`
}

// NewNodeCreated creates a NodeCreated event
func NewNodeCreated(nodeID valueobjects.NodeID, ownerID int, nodeType string, timestamp time.Time) NodeCreated {
	return NodeCreated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "timeline.node.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:   nodeID,
		OwnerID:  ownerID,
		NodeType: nodeType,
	}
}

// NodeUpdated is raised when a node's metadata is updated
type NodeUpdated struct {
	BaseEvent
	NodeID  valueobjects.NodeID `json:"node_id"`
	OwnerID int                 `json:"owner_id"`
}

// NewNodeUpdated creates a NodeUpdated event
func NewNodeUpdated(nodeID valueobjects.NodeID, ownerID int, timestamp time.Time) NodeUpdated {
	return NodeUpdated{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "timeline.node.updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:  nodeID,
		OwnerID: ownerID,
	}
}

// NodeReparented is raised when a node moves to a new parent
type NodeReparented struct {
	BaseEvent
	NodeID    valueobjects.NodeID `json:"node_id"`
	OldParent string              `json:"old_parent,omitempty"`
	NewParent string              `json:"new_parent,omitempty"`
}

// NewNodeReparented creates a NodeReparented event. Empty parent strings
// mean root level.
func NewNodeReparented(nodeID valueobjects.NodeID, oldParent, newParent string, timestamp time.Time) NodeReparented {
	return NodeReparented{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "timeline.node.reparented",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:    nodeID,
		OldParent: oldParent,
		NewParent: newParent,
	}
}

// NodeDeleted is raised when a node is removed
type NodeDeleted struct {
	BaseEvent
	NodeID  valueobjects.NodeID `json:"node_id"`
	OwnerID int                 `json:"owner_id"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(nodeID valueobjects.NodeID, ownerID int, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "timeline.node.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:  nodeID,
		OwnerID: ownerID,
	}
}

// NodeShared is raised when a share grant is created for a node
type NodeShared struct {
	BaseEvent
	NodeID    valueobjects.NodeID `json:"node_id"`
	GranteeID int                 `json:"grantee_id"`
	Level     string              `json:"level"`
}

// NewNodeShared creates a NodeShared event
func NewNodeShared(nodeID valueobjects.NodeID, granteeID int, level string, timestamp time.Time) NodeShared {
	return NodeShared{
		BaseEvent: BaseEvent{
			AggregateID: nodeID.String(),
			EventType:   "timeline.node.shared",
			Timestamp:   timestamp,
			Version:     1,
		},
		NodeID:    nodeID,
		GranteeID: granteeID,
		Level:     level,
	}
}
