package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

// AccessLevel is the level a team grant confers on a collection.
type AccessLevel int

const (
	// AccessLevelNone means no grant applies.
	AccessLevelNone AccessLevel = iota
	// AccessLevelView allows read-only access.
	AccessLevelView
	// AccessLevelEdit allows read and write access.
	AccessLevelEdit
)

var (
	// ErrTeamNameEmpty indicates a missing team name.
	ErrTeamNameEmpty = apperrors.New(apperrors.CodeTeamNameEmpty, "team name is required")
	// ErrTeamEmptyWorkspaceID indicates a missing workspace reference.
	ErrTeamEmptyWorkspaceID = apperrors.New(apperrors.CodeTeamEmptyWorkspaceID, "workspace id is required for a team")
	// ErrTeamGrantInvalidLevel indicates a missing or invalid access level.
	ErrTeamGrantInvalidLevel = apperrors.New(apperrors.CodeTeamGrantInvalidLevel, "team grant access level is required")
	// ErrTeamGrantEmptyTargetID indicates a grant without both endpoints.
	ErrTeamGrantEmptyTargetID = apperrors.New(apperrors.CodeTeamGrantEmptyTargetID, "team and collection ids are required for a grant")
)

// Team is a named group of workspace members used to grant collection access.
type Team struct {
	ID          string
	WorkspaceID string
	Name        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamCollection grants a team an access level on one collection.
// There is at most one grant per (team, collection) pair.
type TeamCollection struct {
	TeamID       string
	CollectionID string
	Level        AccessLevel
	CreatedAt    time.Time
}

// CreateTeamInput describes the metadata needed to create a team.
type CreateTeamInput struct {
	WorkspaceID string
	Name        string
}

// CreateTeam creates a new team with a generated ID and timestamps.
func CreateTeam(input CreateTeamInput, now func() time.Time, idGenerator func() (string, error)) (Team, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)
	if input.WorkspaceID == "" {
		return Team{}, ErrTeamEmptyWorkspaceID
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Team{}, ErrTeamNameEmpty
	}

	teamID, err := idGenerator()
	if err != nil {
		return Team{}, fmt.Errorf("generate team id: %w", err)
	}

	createdAt := now().UTC()
	return Team{
		ID:          teamID,
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// NewTeamCollection validates and builds a team grant on a collection.
func NewTeamCollection(teamID, collectionID string, level AccessLevel, now func() time.Time) (TeamCollection, error) {
	if now == nil {
		now = time.Now
	}

	teamID = strings.TrimSpace(teamID)
	collectionID = strings.TrimSpace(collectionID)
	if teamID == "" || collectionID == "" {
		return TeamCollection{}, ErrTeamGrantEmptyTargetID
	}
	if level != AccessLevelView && level != AccessLevelEdit {
		return TeamCollection{}, ErrTeamGrantInvalidLevel
	}

	return TeamCollection{
		TeamID:       teamID,
		CollectionID: collectionID,
		Level:        level,
		CreatedAt:    now().UTC(),
	}, nil
}

// MaxAccessLevel returns the stronger of two access levels.
func MaxAccessLevel(a, b AccessLevel) AccessLevel {
	if a > b {
		return a
	}
	return b
}

// AccessLevelLabel returns the storage/API label for an access level.
func AccessLevelLabel(l AccessLevel) string {
	switch l {
	case AccessLevelView:
		return "view"
	case AccessLevelEdit:
		return "edit"
	default:
		return "none"
	}
}

// ParseAccessLevel parses a storage/API label into an access level.
func ParseAccessLevel(label string) (AccessLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "view":
		return AccessLevelView, true
	case "edit":
		return AccessLevelEdit, true
	default:
		return AccessLevelNone, false
	}
}
