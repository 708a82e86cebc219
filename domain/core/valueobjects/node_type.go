package valueobjects

// NodeType classifies a timeline node. The set is closed: request validation
// rejects anything outside it, and a node's type never changes after creation.
type NodeType string

const (
	TypeJob              NodeType = "job"
	TypeEducation        NodeType = "education"
	TypeProject          NodeType = "project"
	TypeEvent            NodeType = "event"
	TypeAction           NodeType = "action"
	TypeCareerTransition NodeType = "careerTransition"
)

// nodeTypes is the registry in its canonical order.
var nodeTypes = []NodeType{
	TypeJob,
	TypeEducation,
	TypeProject,
	TypeEvent,
	TypeAction,
	TypeCareerTransition,
}

// metaKeysByType names the metadata keys each type expects by convention.
// The validation layer does not enforce these shapes; meta only has to be
// non-empty on creation. The registry is consulted for display labels and
// by the matching feature.
var metaKeysByType = map[NodeType][]string{
	TypeJob:              {"role", "company"},
	TypeEducation:        {"degree", "institution"},
	TypeProject:          {"title", "description"},
	TypeEvent:            {"title"},
	TypeAction:           {"title"},
	TypeCareerTransition: {"title"},
}

// ListTypes returns the ordered set of registered node types.
func ListTypes() []NodeType {
	types := make([]NodeType, len(nodeTypes))
	copy(types, nodeTypes)
	return types
}

// ParseNodeType validates a raw string against the registry.
func ParseNodeType(s string) (NodeType, bool) {
	for _, t := range nodeTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// IsValid reports whether the type is a registry member.
func (t NodeType) IsValid() bool {
	_, ok := ParseNodeType(string(t))
	return ok
}

// String returns the wire representation of the type.
func (t NodeType) String() string {
	return string(t)
}

// ConventionalMetaKeys returns the metadata keys this type expects by
// convention. Job nodes use "role" as their display label instead of a
// generic "title", which is why parent projections treat title as optional.
func (t NodeType) ConventionalMetaKeys() []string {
	keys := metaKeysByType[t]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// LabelKey returns the meta key carrying the node's display label.
func (t NodeType) LabelKey() string {
	if t == TypeJob {
		return "role"
	}
	return "title"
}
