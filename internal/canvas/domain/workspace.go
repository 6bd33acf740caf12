package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

// WorkspaceType distinguishes single-owner workspaces from shared ones.
type WorkspaceType int

const (
	// WorkspaceTypeUnspecified represents an invalid workspace type.
	WorkspaceTypeUnspecified WorkspaceType = iota
	// WorkspaceTypePersonal is a single-owner workspace. Personal
	// workspaces never permit live collaboration.
	WorkspaceTypePersonal
	// WorkspaceTypeShared is a multi-user workspace eligible for
	// collaboration.
	WorkspaceTypeShared
)

var (
	// ErrWorkspaceNameEmpty indicates a missing workspace name.
	ErrWorkspaceNameEmpty = apperrors.New(apperrors.CodeWorkspaceNameEmpty, "workspace name is required")
	// ErrWorkspaceInvalidType indicates a missing or invalid workspace type.
	ErrWorkspaceInvalidType = apperrors.New(apperrors.CodeWorkspaceInvalidType, "workspace type is required")
)

// Workspace is the top-level tenant boundary.
type Workspace struct {
	ID        string
	Name      string
	Type      WorkspaceType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateWorkspaceInput describes the metadata needed to create a workspace.
type CreateWorkspaceInput struct {
	Name string
	Type WorkspaceType
}

// CreateWorkspace creates a new workspace with a generated ID and timestamps.
func CreateWorkspace(input CreateWorkspaceInput, now func() time.Time, idGenerator func() (string, error)) (Workspace, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	normalized, err := NormalizeCreateWorkspaceInput(input)
	if err != nil {
		return Workspace{}, err
	}

	workspaceID, err := idGenerator()
	if err != nil {
		return Workspace{}, fmt.Errorf("generate workspace id: %w", err)
	}

	createdAt := now().UTC()
	return Workspace{
		ID:        workspaceID,
		Name:      normalized.Name,
		Type:      normalized.Type,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeCreateWorkspaceInput trims and validates workspace input metadata.
func NormalizeCreateWorkspaceInput(input CreateWorkspaceInput) (CreateWorkspaceInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateWorkspaceInput{}, ErrWorkspaceNameEmpty
	}
	if input.Type != WorkspaceTypePersonal && input.Type != WorkspaceTypeShared {
		return CreateWorkspaceInput{}, ErrWorkspaceInvalidType
	}
	return input, nil
}

// WorkspaceTypeLabel returns the storage/API label for a workspace type.
func WorkspaceTypeLabel(t WorkspaceType) string {
	switch t {
	case WorkspaceTypePersonal:
		return "personal"
	case WorkspaceTypeShared:
		return "shared"
	default:
		return "unspecified"
	}
}

// ParseWorkspaceType parses a storage/API label into a workspace type.
func ParseWorkspaceType(label string) (WorkspaceType, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "personal":
		return WorkspaceTypePersonal, true
	case "shared":
		return WorkspaceTypeShared, true
	default:
		return WorkspaceTypeUnspecified, false
	}
}
