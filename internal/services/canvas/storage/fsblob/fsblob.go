// Package fsblob stores scene content blobs as files under a root
// directory. It backs local development and the seed CLI; production
// deployments substitute an object-store implementation of the same
// interface.
package fsblob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
	canvasstorage "github.com/driftboard/driftboard/internal/services/canvas/storage"
)

// Store writes one file per scene under the root directory.
type Store struct {
	root string
}

var _ canvasstorage.BlobStore = (*Store)(nil)

// New creates the root directory if needed and returns a store over it.
func New(root string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("blob root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &Store{root: root}, nil
}

func (s *Store) SceneContent(_ context.Context, sceneID string) ([]byte, error) {
	if s == nil {
		return nil, errors.New("blob store is nil")
	}
	path, err := s.scenePath(sceneID)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound, "scene content not found",
			map[string]string{"scene_id": sceneID})
	}
	if err != nil {
		return nil, fmt.Errorf("read scene content: %w", err)
	}
	return content, nil
}

func (s *Store) PutSceneContent(_ context.Context, sceneID string, content []byte) error {
	if s == nil {
		return errors.New("blob store is nil")
	}
	path, err := s.scenePath(sceneID)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("write scene content: %w", err)
	}
	return nil
}

// scenePath validates the id so a crafted scene id cannot escape the root.
func (s *Store) scenePath(sceneID string) (string, error) {
	sceneID = strings.TrimSpace(sceneID)
	if sceneID == "" {
		return "", errors.New("scene id is required")
	}
	if strings.ContainsAny(sceneID, `/\`) || sceneID == "." || sceneID == ".." {
		return "", fmt.Errorf("invalid scene id %q", sceneID)
	}
	return filepath.Join(s.root, sceneID+".bin"), nil
}
