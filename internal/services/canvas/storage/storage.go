package storage

import (
	"context"
	"time"

	"github.com/driftboard/driftboard/internal/canvas/access"
	"github.com/driftboard/driftboard/internal/canvas/domain"
)

// Store is the persistence contract for canvas relationship data.
//
// Reads used for access resolution always hit current rows; the store keeps
// no permission cache, so role and grant changes apply on the next call.
type Store interface {
	Close() error

	CreateWorkspace(ctx context.Context, workspace domain.Workspace) error
	Workspace(ctx context.Context, workspaceID string) (domain.Workspace, bool, error)

	PutMember(ctx context.Context, member domain.Member) error
	Member(ctx context.Context, workspaceID, userID string) (domain.Member, bool, error)

	CreateTeam(ctx context.Context, team domain.Team) error
	AddTeamMember(ctx context.Context, teamID, userID string, createdAt time.Time) error
	PutTeamGrant(ctx context.Context, grant domain.TeamCollection) error

	CreateCollection(ctx context.Context, collection domain.Collection) error
	Collection(ctx context.Context, collectionID string) (domain.Collection, bool, error)

	CreateScene(ctx context.Context, scene domain.Scene) error
	// Scene returns an error carrying CodeNotFound when the scene does not
	// exist.
	Scene(ctx context.Context, sceneID string) (domain.Scene, error)
	// SceneByRoom looks up the scene a room is bound to; CodeNotFound when
	// no scene carries the room id.
	SceneByRoom(ctx context.Context, roomID string) (domain.Scene, error)
	// BindRoom sets the scene's room id and sealed key only when no room is
	// bound yet; a concurrent winner surfaces as CodeSceneRoomAlreadyBound.
	BindRoom(ctx context.Context, sceneID, roomID string, roomKeyEncrypted []byte) error

	// SceneAccess assembles everything access resolution needs for one
	// (user, scene) pair in a single call.
	SceneAccess(ctx context.Context, userID, sceneID string) (access.Input, error)
}
