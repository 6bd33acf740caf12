// Package room issues and protects the symmetric keys that gate live
// collaboration rooms. Keys exist in plaintext only in memory; at rest they
// are sealed under the server secret.
package room

import (
	"context"
	"fmt"

	"github.com/driftboard/driftboard/internal/canvas/access"
	"github.com/driftboard/driftboard/internal/canvas/domain"
	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
)

// Credentials are what a client needs to join a scene's room.
type Credentials struct {
	RoomID string
	Key    []byte
}

// SceneStore is the persistence surface the manager needs: read one scene
// and bind a room to it at most once.
type SceneStore interface {
	Scene(ctx context.Context, sceneID string) (domain.Scene, error)
	// BindRoom sets room id and sealed key only when the scene has no room
	// yet. It returns an error carrying CodeSceneRoomAlreadyBound when a
	// concurrent caller won the race.
	BindRoom(ctx context.Context, sceneID, roomID string, roomKeyEncrypted []byte) error
}

// AccessChecker resolves the caller's effective access to a scene.
type AccessChecker interface {
	ResolveScene(ctx context.Context, userID, sceneID string) (access.Decision, error)
}

// Manager issues room credentials for scenes. Every call re-checks access;
// nothing is cached between requests.
type Manager struct {
	store       SceneStore
	checker     AccessChecker
	secret      string
	idGenerator func() (string, error)
	newKey      func() ([]byte, error)
}

// NewManager builds a credential manager. The secret must be non-empty.
func NewManager(store SceneStore, checker AccessChecker, secret string) (*Manager, error) {
	if secret == "" {
		return nil, ErrRoomSecretMissing
	}
	return &Manager{
		store:       store,
		checker:     checker,
		secret:      secret,
		idGenerator: domain.NewID,
		newKey:      NewKey,
	}, nil
}

// StartOrGet returns the scene's room credentials, creating the room on
// first use. Creation is idempotent: concurrent callers converge on a
// single room for the scene.
func (m *Manager) StartOrGet(ctx context.Context, sceneID, userID string) (Credentials, error) {
	if err := m.authorize(ctx, sceneID, userID); err != nil {
		return Credentials{}, err
	}

	scene, err := m.store.Scene(ctx, sceneID)
	if err != nil {
		return Credentials{}, err
	}
	if scene.HasRoom() {
		return m.open(scene)
	}

	key, err := m.newKey()
	if err != nil {
		return Credentials{}, err
	}
	roomID, err := m.idGenerator()
	if err != nil {
		return Credentials{}, fmt.Errorf("generate room id: %w", err)
	}
	sealed, err := SealKey(m.secret, key)
	if err != nil {
		return Credentials{}, err
	}

	err = m.store.BindRoom(ctx, sceneID, roomID, sealed)
	if err == nil {
		return Credentials{RoomID: roomID, Key: key}, nil
	}
	if !apperrors.IsCode(err, apperrors.CodeSceneRoomAlreadyBound) {
		return Credentials{}, err
	}

	// Lost the race: another caller bound a room first. Use theirs.
	scene, err = m.store.Scene(ctx, sceneID)
	if err != nil {
		return Credentials{}, err
	}
	if !scene.HasRoom() {
		return Credentials{}, apperrors.New(apperrors.CodeRoomCredentialUnavailable, "room binding conflict left scene without a room")
	}
	return m.open(scene)
}

// GetExisting returns the scene's room credentials, or ok=false when no
// room has been started yet.
func (m *Manager) GetExisting(ctx context.Context, sceneID, userID string) (Credentials, bool, error) {
	if err := m.authorize(ctx, sceneID, userID); err != nil {
		return Credentials{}, false, err
	}

	scene, err := m.store.Scene(ctx, sceneID)
	if err != nil {
		return Credentials{}, false, err
	}
	if !scene.HasRoom() {
		return Credentials{}, false, nil
	}
	creds, err := m.open(scene)
	if err != nil {
		return Credentials{}, false, err
	}
	return creds, true, nil
}

func (m *Manager) authorize(ctx context.Context, sceneID, userID string) error {
	decision, err := m.checker.ResolveScene(ctx, userID, sceneID)
	if err != nil {
		return err
	}
	if decision.CanCollaborate {
		return nil
	}
	if decision.Denied() && !decision.IsMember {
		// Existence is hidden from users outside the workspace.
		return apperrors.New(apperrors.CodeNotFound, "scene not found")
	}
	if decision.CanEdit {
		return apperrors.New(apperrors.CodeRoomCollaborationDisabled, "collaboration is not enabled for this scene")
	}
	return apperrors.New(apperrors.CodeAccessDenied, "collaboration requires edit access")
}

func (m *Manager) open(scene domain.Scene) (Credentials, error) {
	key, err := OpenKey(m.secret, scene.RoomKeyEncrypted)
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{RoomID: scene.RoomID, Key: key}, nil
}
