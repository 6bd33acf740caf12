package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

var (
	// ErrSceneNameEmpty indicates a missing scene name.
	ErrSceneNameEmpty = apperrors.New(apperrors.CodeSceneNameEmpty, "scene name is required")
	// ErrSceneEmptyWorkspaceID indicates a missing workspace reference.
	ErrSceneEmptyWorkspaceID = apperrors.New(apperrors.CodeSceneEmptyWorkspaceID, "workspace id is required for a scene")
)

// Scene is a single canvas document. It may live inside a collection or
// directly under a workspace (collectionless scenes are inaccessible to
// everyone through the access resolver).
type Scene struct {
	ID                   string
	WorkspaceID          string
	CollectionID         string // empty when the scene has no collection
	Name                 string
	CollaborationEnabled bool

	// RoomID and RoomKeyEncrypted are set exactly once, on first
	// collaboration start. The encrypted key decrypts only under the
	// currently configured server secret.
	RoomID           string
	RoomKeyEncrypted []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRoom reports whether a collaboration room has been bound to the scene.
func (s Scene) HasRoom() bool {
	return s.RoomID != "" && len(s.RoomKeyEncrypted) > 0
}

// CreateSceneInput describes the metadata needed to create a scene.
type CreateSceneInput struct {
	WorkspaceID          string
	CollectionID         string
	Name                 string
	CollaborationEnabled bool
}

// CreateScene creates a new scene with a generated ID and timestamps.
func CreateScene(input CreateSceneInput, now func() time.Time, idGenerator func() (string, error)) (Scene, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)
	if input.WorkspaceID == "" {
		return Scene{}, ErrSceneEmptyWorkspaceID
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Scene{}, ErrSceneNameEmpty
	}

	sceneID, err := idGenerator()
	if err != nil {
		return Scene{}, fmt.Errorf("generate scene id: %w", err)
	}

	createdAt := now().UTC()
	return Scene{
		ID:                   sceneID,
		WorkspaceID:          input.WorkspaceID,
		CollectionID:         strings.TrimSpace(input.CollectionID),
		Name:                 input.Name,
		CollaborationEnabled: input.CollaborationEnabled,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}, nil
}
