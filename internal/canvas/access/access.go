// Package access computes a user's effective access to a scene from
// already-fetched relationship data. Resolution is pure: no I/O, no caching,
// so permission changes take effect on the very next request.
package access

import (
	"github.com/driftboard/driftboard/internal/canvas/domain"
)

// Decision is the effective access a user holds on one scene.
//
// IsMember records whether the user belongs to the scene's workspace at
// all; the HTTP boundary uses it to choose between hiding a scene's
// existence (404) and acknowledging it while denying access (403).
type Decision struct {
	CanView        bool
	CanEdit        bool
	CanCollaborate bool
	IsMember       bool
}

// Denied reports whether the decision grants nothing at all.
func (d Decision) Denied() bool {
	return !d.CanView && !d.CanEdit && !d.CanCollaborate
}

// Input is the relationship data resolution operates on. Membership is nil
// when the user does not belong to the scene's workspace; Collection is nil
// when the scene has no collection. Grants holds every team-collection grant
// for teams the user belongs to, already filtered to the user; Resolve
// filters them to the scene's collection.
type Input struct {
	UserID     string
	Workspace  domain.Workspace
	Membership *domain.Member
	Collection *domain.Collection
	Scene      domain.Scene
	Grants     []domain.TeamCollection
}

// Resolve computes the access decision for one user on one scene.
//
// Denial is a value, never an error: callers at the HTTP boundary decide
// whether an all-false decision becomes a 403 or a 404.
func Resolve(in Input) Decision {
	if in.Membership == nil {
		return Decision{}
	}
	deny := Decision{IsMember: true}

	collaborationEligible := in.Workspace.Type == domain.WorkspaceTypeShared &&
		in.Scene.CollaborationEnabled

	// Scenes outside any collection are reachable by nobody, and private
	// collections are owner-exclusive for content access. Both rules beat
	// the admin shortcut.
	if in.Collection == nil {
		return deny
	}
	if in.Collection.IsPrivate {
		if in.Collection.OwnerID != in.UserID {
			return deny
		}
		return Decision{CanView: true, CanEdit: true, CanCollaborate: collaborationEligible, IsMember: true}
	}

	if in.Membership.Role == domain.MemberRoleAdmin {
		return Decision{CanView: true, CanEdit: true, CanCollaborate: collaborationEligible, IsMember: true}
	}

	teamAccess := domain.AccessLevelNone
	for _, grant := range in.Grants {
		if grant.CollectionID != in.Collection.ID {
			continue
		}
		teamAccess = domain.MaxAccessLevel(teamAccess, grant.Level)
	}
	if teamAccess == domain.AccessLevelNone {
		return deny
	}

	canEdit := teamAccess == domain.AccessLevelEdit &&
		in.Membership.Role != domain.MemberRoleViewer
	return Decision{
		CanView:        true,
		CanEdit:        canEdit,
		CanCollaborate: canEdit && collaborationEligible,
		IsMember:       true,
	}
}
