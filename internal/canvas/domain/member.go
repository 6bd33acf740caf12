package domain

import (
	"strings"
	"time"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

// MemberRole describes a user's role inside a workspace.
type MemberRole int

const (
	// MemberRoleUnspecified represents an invalid role value.
	MemberRoleUnspecified MemberRole = iota
	// MemberRoleViewer may view content but never edit, regardless of
	// team grants.
	MemberRoleViewer
	// MemberRoleMember has access determined by team grants.
	MemberRoleMember
	// MemberRoleAdmin has implicit full access to every non-private
	// collection in the workspace.
	MemberRoleAdmin
)

var (
	// ErrMemberEmptyWorkspaceID indicates a missing workspace reference.
	ErrMemberEmptyWorkspaceID = apperrors.New(apperrors.CodeMemberEmptyWorkspaceID, "workspace id is required for membership")
	// ErrMemberEmptyUserID indicates a missing user reference.
	ErrMemberEmptyUserID = apperrors.New(apperrors.CodeMemberEmptyUserID, "user id is required for membership")
	// ErrMemberInvalidRole indicates a missing or invalid member role.
	ErrMemberInvalidRole = apperrors.New(apperrors.CodeMemberInvalidRole, "member role is required")
)

// Member associates a user with a workspace under a role.
// There is at most one membership per (workspace, user) pair.
type Member struct {
	WorkspaceID string
	UserID      string
	Role        MemberRole
	CreatedAt   time.Time
}

// NewMember validates and builds a workspace membership.
func NewMember(workspaceID, userID string, role MemberRole, now func() time.Time) (Member, error) {
	if now == nil {
		now = time.Now
	}

	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return Member{}, ErrMemberEmptyWorkspaceID
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Member{}, ErrMemberEmptyUserID
	}
	if role != MemberRoleViewer && role != MemberRoleMember && role != MemberRoleAdmin {
		return Member{}, ErrMemberInvalidRole
	}

	return Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   now().UTC(),
	}, nil
}

// MemberRoleLabel returns the storage/API label for a member role.
func MemberRoleLabel(r MemberRole) string {
	switch r {
	case MemberRoleAdmin:
		return "admin"
	case MemberRoleMember:
		return "member"
	case MemberRoleViewer:
		return "viewer"
	default:
		return "unspecified"
	}
}

// ParseMemberRole parses a storage/API label into a member role.
func ParseMemberRole(label string) (MemberRole, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "admin":
		return MemberRoleAdmin, true
	case "member":
		return MemberRoleMember, true
	case "viewer":
		return MemberRoleViewer, true
	default:
		return MemberRoleUnspecified, false
	}
}
