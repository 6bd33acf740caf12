package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

var (
	// ErrCollectionNameEmpty indicates a missing collection name.
	ErrCollectionNameEmpty = apperrors.New(apperrors.CodeCollectionNameEmpty, "collection name is required")
	// ErrCollectionEmptyWorkspaceID indicates a missing workspace reference.
	ErrCollectionEmptyWorkspaceID = apperrors.New(apperrors.CodeCollectionEmptyWorkspaceID, "workspace id is required for a collection")
	// ErrCollectionPrivateNoOwner indicates a private collection without an owner.
	ErrCollectionPrivateNoOwner = apperrors.New(apperrors.CodeCollectionPrivateNoOwner, "private collections require an owner")
)

// Collection is a folder of scenes within a workspace.
//
// A private collection is owner-exclusive for content access: team grants
// never apply to it, and admins may manage its existence but not view its
// contents.
type Collection struct {
	ID          string
	WorkspaceID string
	Name        string
	IsPrivate   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateCollectionInput describes the metadata needed to create a collection.
type CreateCollectionInput struct {
	WorkspaceID string
	Name        string
	IsPrivate   bool
	OwnerID     string
}

// CreateCollection creates a new collection with a generated ID and timestamps.
func CreateCollection(input CreateCollectionInput, now func() time.Time, idGenerator func() (string, error)) (Collection, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = NewID
	}

	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)
	if input.WorkspaceID == "" {
		return Collection{}, ErrCollectionEmptyWorkspaceID
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Collection{}, ErrCollectionNameEmpty
	}
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.IsPrivate && input.OwnerID == "" {
		return Collection{}, ErrCollectionPrivateNoOwner
	}

	collectionID, err := idGenerator()
	if err != nil {
		return Collection{}, fmt.Errorf("generate collection id: %w", err)
	}

	createdAt := now().UTC()
	return Collection{
		ID:          collectionID,
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		IsPrivate:   input.IsPrivate,
		OwnerID:     input.OwnerID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}
