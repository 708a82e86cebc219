package entities

import (
	"time"

	"journey-backend/domain/core/valueobjects"
	pkgerrors "journey-backend/pkg/errors"
)

// Insight is a derived observation attached to a timeline node, produced by
// the analysis pipeline rather than through the public API. The API surface
// is read-only; the repository still supports writes for the pipeline.
type Insight struct {
	id        string
	nodeID    valueobjects.NodeID
	category  string
	text      string
	score     float64
	createdAt time.Time
}

// NewInsight creates an insight for a node
func NewInsight(id string, nodeID valueobjects.NodeID, category, text string, score float64) (*Insight, error) {
	if text == "" {
		return nil, pkgerrors.NewValidationError("insight text cannot be empty")
	}
	if score < 0 || score > 1 {
		return nil, pkgerrors.NewValidationError("insight score must be between 0 and 1")
	}

	return &Insight{
		id:        id,
		nodeID:    nodeID,
		category:  category,
		text:      text,
		score:     score,
		createdAt: time.Now(),
	}, nil
}

// ReconstructInsight restores an insight from repository data
func ReconstructInsight(id string, nodeID valueobjects.NodeID, category, text string, score float64, createdAt time.Time) *Insight {
	return &Insight{
		id:        id,
		nodeID:    nodeID,
		category:  category,
		text:      text,
		score:     score,
		createdAt: createdAt,
	}
}

// ID returns the insight's identifier
func (i *Insight) ID() string { return i.id }

// NodeID returns the node this insight belongs to
func (i *Insight) NodeID() valueobjects.NodeID { return i.nodeID }

// Category returns the insight category
func (i *Insight) Category() string { return i.category }

// Text returns the insight text
func (i *Insight) Text() string { return i.text }

// Score returns the relevance score
func (i *Insight) Score() float64 { return i.score }

// CreatedAt returns when the insight was created
func (i *Insight) CreatedAt() time.Time { return i.createdAt }
