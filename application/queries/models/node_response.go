package models

import (
	"bytes"
	"encoding/json"
	"time"

	"journey-backend/domain/core/entities"
	"journey-backend/domain/services"
	pkgerrors "journey-backend/pkg/errors"
)

// TimelineNodeResponse is the closed wire shape for a single node. The set
// of fields is the contract: a response carrying anything else is schema
// drift between producer and consumer and is rejected, not silently
// tolerated. See DecodeNodeResponse.
type TimelineNodeResponse struct {
	ID        string                 `json:"id"`
	UserID    int                    `json:"userId"`
	Type      string                 `json:"type"`
	ParentID  *string                `json:"parentId"`
	Meta      map[string]interface{} `json:"meta"`
	CreatedAt string                 `json:"createdAt"`
	UpdatedAt string                 `json:"updatedAt"`

	Parent      *ParentRef                `json:"parent,omitempty"`
	Owner       *OwnerRef                 `json:"owner,omitempty"`
	Permissions *services.NodePermissions `json:"permissions,omitempty"`
}

// ParentRef is the summary projection of a node's parent. Title is absent
// for types whose display label lives under another meta key (jobs label
// with role), so consumers must tolerate a missing title.
type ParentRef struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Title *string `json:"title,omitempty"`
}

// OwnerRef is the summary projection of a node's owner
type OwnerRef struct {
	ID        int     `json:"id"`
	UserName  *string `json:"userName,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     string  `json:"email"`
}

// HierarchyResponse is the closed wire shape for hierarchy queries
type HierarchyResponse struct {
	Nodes      []TimelineNodeResponse `json:"nodes"`
	TotalCount int                    `json:"totalCount"`
}

// NewTimelineNodeResponse serializes a node with its optional projections.
// Permissions, parent, and owner are derived fresh per request and are
// never read back from storage.
func NewTimelineNodeResponse(node *entities.TimelineNode, parent *ParentRef, owner *OwnerRef, perms *services.NodePermissions) TimelineNodeResponse {
	var parentID *string
	if pid := node.ParentID(); pid != nil {
		s := pid.String()
		parentID = &s
	}

	return TimelineNodeResponse{
		ID:          node.ID().String(),
		UserID:      node.OwnerID(),
		Type:        node.Type().String(),
		ParentID:    parentID,
		Meta:        node.Meta(),
		CreatedAt:   node.CreatedAt().Format(time.RFC3339),
		UpdatedAt:   node.UpdatedAt().Format(time.RFC3339),
		Parent:      parent,
		Owner:       owner,
		Permissions: perms,
	}
}

// NewParentRef builds the parent summary from a node. The label is lifted
// into title only when the type labels with a generic title.
func NewParentRef(parent *entities.TimelineNode) *ParentRef {
	ref := &ParentRef{
		ID:   parent.ID().String(),
		Type: parent.Type().String(),
	}
	if parent.Type().LabelKey() == "title" {
		if label := parent.Label(); label != "" {
			ref.Title = &label
		}
	}
	return ref
}

// DecodeNodeResponse strictly decodes a node response, rejecting unknown
// fields at every level of the documented shape. Producers run their own
// output through this before returning it, so drift fails loudly instead
// of leaking undocumented fields.
func DecodeNodeResponse(data []byte) (*TimelineNodeResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var resp TimelineNodeResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, pkgerrors.ErrResponseShapeDrift.WithCause(err)
	}
	return &resp, nil
}

// DecodeHierarchyResponse strictly decodes a hierarchy response. totalCount
// must be a non-negative integer; fractional or negative counts are
// contract violations.
func DecodeHierarchyResponse(data []byte) (*HierarchyResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var raw struct {
		Nodes      []json.RawMessage `json:"nodes"`
		TotalCount json.Number       `json:"totalCount"`
	}
	if err := dec.Decode(&raw); err != nil {
		return nil, pkgerrors.ErrResponseShapeDrift.WithCause(err)
	}

	count, err := raw.TotalCount.Int64()
	if err != nil || count < 0 {
		return nil, pkgerrors.ErrResponseShapeDrift.WithDetail("totalCount", raw.TotalCount.String())
	}

	resp := &HierarchyResponse{
		Nodes:      make([]TimelineNodeResponse, 0, len(raw.Nodes)),
		TotalCount: int(count),
	}
	for _, rawNode := range raw.Nodes {
		node, err := DecodeNodeResponse(rawNode)
		if err != nil {
			return nil, err
		}
		resp.Nodes = append(resp.Nodes, *node)
	}
	return resp, nil
}

// CheckShape round-trips a response through the strict decoder. Query
// handlers call this on what they are about to return.
func CheckShape(resp TimelineNodeResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return pkgerrors.ErrResponseShapeDrift.WithCause(err)
	}
	_, err = DecodeNodeResponse(data)
	return err
}
