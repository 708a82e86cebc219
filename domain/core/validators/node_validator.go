package validators

import (
	"net/url"
	"strconv"

	"journey-backend/domain/config"
	"journey-backend/domain/core/valueobjects"
	"journey-backend/pkg/errors"
)

// NodeValidator validates timeline node requests against the contract rules.
// All failures are field-addressable: callers receive a field -> messages
// map, never a single opaque string.
type NodeValidator struct {
	cfg *config.DomainConfig
}

// NewNodeValidator creates a validator with default domain configuration
func NewNodeValidator() *NodeValidator {
	return NewNodeValidatorWithConfig(config.DefaultDomainConfig())
}

// NewNodeValidatorWithConfig creates a validator with explicit configuration
func NewNodeValidatorWithConfig(cfg *config.DomainConfig) *NodeValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &NodeValidator{cfg: cfg}
}

// CreateNodeInput is the raw inbound shape for node creation
type CreateNodeInput struct {
	Type     string
	ParentID *string
	Meta     map[string]interface{}
}

// NodeDraft is a validated creation request with parsed value objects
type NodeDraft struct {
	Type     valueobjects.NodeType
	ParentID *valueobjects.NodeID
	Meta     map[string]interface{}
}

// UpdateNodeInput is the raw inbound shape for node updates. Meta is nil
// when the key was omitted; an empty map is distinct and means "no metadata
// change". HasParent records whether the parentId key was present at all,
// since null parentId is a valid value (promote to root).
type UpdateNodeInput struct {
	Meta      map[string]interface{}
	HasMeta   bool
	ParentID  *string
	HasParent bool
}

// NodeUpdate is a validated partial update
type NodeUpdate struct {
	Meta      map[string]interface{}
	HasMeta   bool
	ParentID  *valueobjects.NodeID
	HasParent bool
}

// NodeQuery is a validated, normalized hierarchy query
type NodeQuery struct {
	MaxDepth        int
	IncludeChildren bool
	Type            *valueobjects.NodeType
}

// ValidateCreate validates a creation request. Creation must establish a
// minimal identity: type must be registered, parentId UUID-shaped when
// present, and meta non-empty. Parent existence is a persistence concern.
func (v *NodeValidator) ValidateCreate(in CreateNodeInput) (*NodeDraft, error) {
	verrs := errors.NewValidationErrors()

	nodeType, ok := valueobjects.ParseNodeType(in.Type)
	if !ok {
		verrs.Add("type", "type must be one of the registered timeline node types")
	}

	var parentID *valueobjects.NodeID
	if in.ParentID != nil {
		id, err := valueobjects.NewNodeIDFromString(*in.ParentID)
		if err != nil {
			verrs.Add("parentId", "parentId must be a valid UUID")
		} else {
			parentID = &id
		}
	}

	if len(in.Meta) == 0 {
		verrs.Add("meta", "meta must contain at least one key")
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	return &NodeDraft{
		Type:     nodeType,
		ParentID: parentID,
		Meta:     in.Meta,
	}, nil
}

// ValidateUpdate validates a partial update. Unlike creation, an empty meta
// map is permitted (a no-op on metadata), and an entirely empty request is a
// valid pass-through. There is deliberately no path that updates type.
func (v *NodeValidator) ValidateUpdate(in UpdateNodeInput) (*NodeUpdate, error) {
	verrs := errors.NewValidationErrors()

	update := &NodeUpdate{
		Meta:      in.Meta,
		HasMeta:   in.HasMeta,
		HasParent: in.HasParent,
	}

	if in.HasParent && in.ParentID != nil {
		id, err := valueobjects.NewNodeIDFromString(*in.ParentID)
		if err != nil {
			verrs.Add("parentId", "parentId must be a valid UUID")
		} else {
			update.ParentID = &id
		}
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	return update, nil
}

// ValidateQuery validates and coerces hierarchy query parameters from their
// string transport representation.
//
// maxDepth must parse as an integer in the inclusive range configured by the
// domain (1-20 by default); fractional values are rejected, not truncated.
// includeChildren keeps the documented coercion quirk: any non-empty string
// is true, including "false" and "0". Compatibility with the existing wire
// contract takes precedence over intuition here.
func (v *NodeValidator) ValidateQuery(params url.Values) (*NodeQuery, error) {
	verrs := errors.NewValidationErrors()

	query := &NodeQuery{
		MaxDepth:        v.cfg.DefaultQueryDepth,
		IncludeChildren: v.cfg.IncludeChildrenDefault,
	}

	if raw := params.Get("maxDepth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			verrs.Add("maxDepth", "maxDepth must be an integer")
		} else if depth < v.cfg.MinQueryDepth || depth > v.cfg.MaxQueryDepth {
			verrs.Add("maxDepth", "maxDepth must be between "+
				strconv.Itoa(v.cfg.MinQueryDepth)+" and "+strconv.Itoa(v.cfg.MaxQueryDepth))
		} else {
			query.MaxDepth = depth
		}
	}

	if raw := params.Get("includeChildren"); raw != "" {
		query.IncludeChildren = true
	}

	if raw := params.Get("type"); raw != "" {
		nodeType, ok := valueobjects.ParseNodeType(raw)
		if !ok {
			verrs.Add("type", "type must be one of the registered timeline node types")
		} else {
			query.Type = &nodeType
		}
	}

	if verrs.HasErrors() {
		return nil, verrs
	}

	return query, nil
}
