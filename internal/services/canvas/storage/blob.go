package storage

import "context"

// BlobStore holds serialized scene content outside the relational store.
// The canvas core treats blobs as opaque bytes and never interprets the
// serialization format.
type BlobStore interface {
	SceneContent(ctx context.Context, sceneID string) ([]byte, error)
	PutSceneContent(ctx context.Context, sceneID string, content []byte) error
}
