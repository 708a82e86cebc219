package services

import (
	"journey-backend/domain/core/entities"
	"journey-backend/domain/core/valueobjects"
)

// AccessLevel describes the coarse visibility class of a node for a viewer
type AccessLevel string

const (
	AccessLevelFull       AccessLevel = "full"
	AccessLevelRestricted AccessLevel = "restricted"
	AccessLevelPublic     AccessLevel = "public"
	AccessLevelPrivate    AccessLevel = "private"
)

// NodePermissions is the per-request permission projection for a single
// node and viewer. It is computed on demand from ownership and the share
// grants in effect at read time, and is never persisted.
type NodePermissions struct {
	CanView           bool        `json:"canView"`
	CanEdit           bool        `json:"canEdit"`
	CanShare          bool        `json:"canShare"`
	CanDelete         bool        `json:"canDelete"`
	AccessLevel       AccessLevel `json:"accessLevel"`
	ShouldShowMatches bool        `json:"shouldShowMatches"`
}

// ShareSnapshot maps grantee user IDs to their grant level for one node,
// captured at the start of a request so every node in a response reflects
// the same moment in time.
type ShareSnapshot map[int]entities.GrantLevel

// matchableTypes are the node types that participate in opportunity
// matching when visible.
var matchableTypes = map[valueobjects.NodeType]bool{
	valueobjects.TypeJob:              true,
	valueobjects.TypeEducation:        true,
	valueobjects.TypeCareerTransition: true,
}

// PermissionService derives permission projections. It holds no state
// beyond its inputs; two calls with the same node, viewer, and snapshot
// always produce the same projection.
type PermissionService struct{}

// NewPermissionService creates a permission projection service
func NewPermissionService() *PermissionService {
	return &PermissionService{}
}

// Project computes the viewer's permissions on a node. Owners hold every
// capability. Grantees hold view or view+edit depending on grant level;
// share and delete never flow through grants.
func (s *PermissionService) Project(node *entities.TimelineNode, viewerID int, shares ShareSnapshot) NodePermissions {
	if node.OwnerID() == viewerID {
		return NodePermissions{
			CanView:           true,
			CanEdit:           true,
			CanShare:          true,
			CanDelete:         true,
			AccessLevel:       AccessLevelFull,
			ShouldShowMatches: matchableTypes[node.Type()],
		}
	}

	level, granted := shares[viewerID]
	if !granted {
		return NodePermissions{AccessLevel: AccessLevelPrivate}
	}

	perms := NodePermissions{
		CanView:     true,
		AccessLevel: AccessLevelRestricted,
	}
	if level == entities.GrantLevelEdit {
		perms.CanEdit = true
	}
	perms.ShouldShowMatches = matchableTypes[node.Type()]
	return perms
}

// CanViewNode reports whether the viewer may read the node at all. Callers
// surface a denial identically to a missing node so that probing for IDs
// reveals nothing about existence.
func (s *PermissionService) CanViewNode(node *entities.TimelineNode, viewerID int, shares ShareSnapshot) bool {
	return s.Project(node, viewerID, shares).CanView
}
