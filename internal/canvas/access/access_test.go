package access

import (
	"fmt"
	"testing"

	"github.com/driftboard/driftboard/internal/canvas/domain"
)

type collectionKind int

const (
	privateOwned collectionKind = iota
	privateNotOwned
	sharedWithGrant
	sharedNoGrant
)

func (k collectionKind) String() string {
	switch k {
	case privateOwned:
		return "private-owned"
	case privateNotOwned:
		return "private-not-owned"
	case sharedWithGrant:
		return "shared-with-grant"
	default:
		return "shared-no-grant"
	}
}

func buildInput(role domain.MemberRole, wsType domain.WorkspaceType, kind collectionKind, level domain.AccessLevel, collaborationEnabled bool) Input {
	const userID = "user"

	collection := &domain.Collection{ID: "col", WorkspaceID: "ws"}
	switch kind {
	case privateOwned:
		collection.IsPrivate = true
		collection.OwnerID = userID
	case privateNotOwned:
		collection.IsPrivate = true
		collection.OwnerID = "someone-else"
	}

	var grants []domain.TeamCollection
	if kind == sharedWithGrant && level != domain.AccessLevelNone {
		grants = append(grants, domain.TeamCollection{
			TeamID:       "team",
			CollectionID: "col",
			Level:        level,
		})
	}

	return Input{
		UserID:     userID,
		Workspace:  domain.Workspace{ID: "ws", Type: wsType},
		Membership: &domain.Member{WorkspaceID: "ws", UserID: userID, Role: role},
		Collection: collection,
		Scene: domain.Scene{
			ID:                   "scene",
			WorkspaceID:          "ws",
			CollectionID:         "col",
			CollaborationEnabled: collaborationEnabled,
		},
		Grants: grants,
	}
}

// expectedDecision restates the permission matrix independently of Resolve.
func expectedDecision(role domain.MemberRole, wsType domain.WorkspaceType, kind collectionKind, level domain.AccessLevel) Decision {
	collab := wsType == domain.WorkspaceTypeShared

	switch kind {
	case privateNotOwned:
		return Decision{IsMember: true}
	case privateOwned:
		return Decision{CanView: true, CanEdit: true, CanCollaborate: collab, IsMember: true}
	}

	if role == domain.MemberRoleAdmin {
		return Decision{CanView: true, CanEdit: true, CanCollaborate: collab, IsMember: true}
	}

	if kind == sharedNoGrant || level == domain.AccessLevelNone {
		return Decision{IsMember: true}
	}
	canEdit := level == domain.AccessLevelEdit && role != domain.MemberRoleViewer
	return Decision{CanView: true, CanEdit: canEdit, CanCollaborate: canEdit && collab, IsMember: true}
}

func TestResolveMatrix(t *testing.T) {
	roles := []domain.MemberRole{domain.MemberRoleAdmin, domain.MemberRoleMember, domain.MemberRoleViewer}
	wsTypes := []domain.WorkspaceType{domain.WorkspaceTypePersonal, domain.WorkspaceTypeShared}
	kinds := []collectionKind{privateOwned, privateNotOwned, sharedWithGrant, sharedNoGrant}
	levels := []domain.AccessLevel{domain.AccessLevelNone, domain.AccessLevelView, domain.AccessLevelEdit}

	for _, role := range roles {
		for _, wsType := range wsTypes {
			for _, kind := range kinds {
				for _, level := range levels {
					name := fmt.Sprintf("%s/%s/%s/%s",
						domain.MemberRoleLabel(role),
						domain.WorkspaceTypeLabel(wsType),
						kind,
						domain.AccessLevelLabel(level))
					t.Run(name, func(t *testing.T) {
						got := Resolve(buildInput(role, wsType, kind, level, true))
						want := expectedDecision(role, wsType, kind, level)
						if got != want {
							t.Errorf("Resolve() = %+v, want %+v", got, want)
						}
					})
				}
			}
		}
	}
}

func TestResolveNonMember(t *testing.T) {
	in := buildInput(domain.MemberRoleAdmin, domain.WorkspaceTypeShared, sharedWithGrant, domain.AccessLevelEdit, true)
	in.Membership = nil
	got := Resolve(in)
	if !got.Denied() {
		t.Errorf("Resolve() without membership = %+v, want all-false", got)
	}
	if got.IsMember {
		t.Error("IsMember = true without membership")
	}
}

func TestResolveSceneWithoutCollection(t *testing.T) {
	in := buildInput(domain.MemberRoleAdmin, domain.WorkspaceTypeShared, sharedWithGrant, domain.AccessLevelEdit, true)
	in.Collection = nil
	in.Scene.CollectionID = ""
	if got := Resolve(in); !got.Denied() {
		t.Errorf("Resolve() for collectionless scene = %+v, want all-false even for admin", got)
	}
}

func TestResolvePersonalWorkspaceNeverCollaborates(t *testing.T) {
	for _, role := range []domain.MemberRole{domain.MemberRoleAdmin, domain.MemberRoleMember, domain.MemberRoleViewer} {
		for _, kind := range []collectionKind{privateOwned, sharedWithGrant} {
			in := buildInput(role, domain.WorkspaceTypePersonal, kind, domain.AccessLevelEdit, true)
			if got := Resolve(in); got.CanCollaborate {
				t.Errorf("role %s kind %s: CanCollaborate = true in a personal workspace", domain.MemberRoleLabel(role), kind)
			}
		}
	}
}

func TestResolveCollaborationDisabledScene(t *testing.T) {
	in := buildInput(domain.MemberRoleMember, domain.WorkspaceTypeShared, sharedWithGrant, domain.AccessLevelEdit, false)
	got := Resolve(in)
	if !got.CanView || !got.CanEdit {
		t.Fatalf("Resolve() = %+v, want view+edit", got)
	}
	if got.CanCollaborate {
		t.Error("CanCollaborate = true for a scene with collaboration disabled")
	}
}

func TestResolveMaxAcrossTeams(t *testing.T) {
	in := buildInput(domain.MemberRoleMember, domain.WorkspaceTypeShared, sharedWithGrant, domain.AccessLevelView, true)
	in.Grants = append(in.Grants, domain.TeamCollection{TeamID: "team2", CollectionID: "col", Level: domain.AccessLevelEdit})
	got := Resolve(in)
	if !got.CanEdit {
		t.Errorf("Resolve() = %+v, want edit from strongest grant", got)
	}
}

func TestResolveIgnoresGrantsOnOtherCollections(t *testing.T) {
	in := buildInput(domain.MemberRoleMember, domain.WorkspaceTypeShared, sharedNoGrant, domain.AccessLevelNone, true)
	in.Grants = []domain.TeamCollection{{TeamID: "team", CollectionID: "other-col", Level: domain.AccessLevelEdit}}
	if got := Resolve(in); !got.Denied() {
		t.Errorf("Resolve() = %+v, want all-false when grants target other collections", got)
	}
}

// Scenario tests mirror the collaboration rules end to end.

func TestScenarioPrivateCollectionBlocksNonOwner(t *testing.T) {
	scene := domain.Scene{ID: "scene", WorkspaceID: "ws", CollectionID: "alices-private", CollaborationEnabled: true}
	col := &domain.Collection{ID: "alices-private", WorkspaceID: "ws", IsPrivate: true, OwnerID: "alice"}

	bob := Resolve(Input{
		UserID:     "bob",
		Workspace:  domain.Workspace{ID: "ws", Type: domain.WorkspaceTypeShared},
		Membership: &domain.Member{WorkspaceID: "ws", UserID: "bob", Role: domain.MemberRoleMember},
		Collection: col,
		Scene:      scene,
	})
	if !bob.Denied() {
		t.Errorf("bob on alice's private collection = %+v, want all-false", bob)
	}

	// The owner-exclusivity rule also blocks admins from content access.
	admin := Resolve(Input{
		UserID:     "root",
		Workspace:  domain.Workspace{ID: "ws", Type: domain.WorkspaceTypeShared},
		Membership: &domain.Member{WorkspaceID: "ws", UserID: "root", Role: domain.MemberRoleAdmin},
		Collection: col,
		Scene:      scene,
	})
	if !admin.Denied() {
		t.Errorf("admin on another user's private collection = %+v, want all-false", admin)
	}
}

func TestScenarioTeamEditGrant(t *testing.T) {
	got := Resolve(Input{
		UserID:     "bob",
		Workspace:  domain.Workspace{ID: "ws", Type: domain.WorkspaceTypeShared},
		Membership: &domain.Member{WorkspaceID: "ws", UserID: "bob", Role: domain.MemberRoleMember},
		Collection: &domain.Collection{ID: "eng-docs", WorkspaceID: "ws"},
		Scene:      domain.Scene{ID: "scene", WorkspaceID: "ws", CollectionID: "eng-docs", CollaborationEnabled: true},
		Grants:     []domain.TeamCollection{{TeamID: "engineering", CollectionID: "eng-docs", Level: domain.AccessLevelEdit}},
	})
	want := Decision{CanView: true, CanEdit: true, CanCollaborate: true, IsMember: true}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}

func TestScenarioNoGrantNoAccess(t *testing.T) {
	got := Resolve(Input{
		UserID:     "carol",
		Workspace:  domain.Workspace{ID: "ws", Type: domain.WorkspaceTypeShared},
		Membership: &domain.Member{WorkspaceID: "ws", UserID: "carol", Role: domain.MemberRoleMember},
		Collection: &domain.Collection{ID: "eng-docs", WorkspaceID: "ws"},
		Scene:      domain.Scene{ID: "scene", WorkspaceID: "ws", CollectionID: "eng-docs", CollaborationEnabled: true},
		Grants:     []domain.TeamCollection{{TeamID: "design", CollectionID: "design-assets", Level: domain.AccessLevelEdit}},
	})
	if !got.Denied() {
		t.Errorf("Resolve() = %+v, want all-false without a grant on the collection", got)
	}
}

func TestScenarioViewerRoleCapsEditGrant(t *testing.T) {
	got := Resolve(Input{
		UserID:     "dave",
		Workspace:  domain.Workspace{ID: "ws", Type: domain.WorkspaceTypeShared},
		Membership: &domain.Member{WorkspaceID: "ws", UserID: "dave", Role: domain.MemberRoleViewer},
		Collection: &domain.Collection{ID: "col", WorkspaceID: "ws"},
		Scene:      domain.Scene{ID: "scene", WorkspaceID: "ws", CollectionID: "col", CollaborationEnabled: true},
		Grants:     []domain.TeamCollection{{TeamID: "team", CollectionID: "col", Level: domain.AccessLevelEdit}},
	})
	want := Decision{CanView: true, CanEdit: false, CanCollaborate: false, IsMember: true}
	if got != want {
		t.Errorf("Resolve() = %+v, want %+v", got, want)
	}
}
