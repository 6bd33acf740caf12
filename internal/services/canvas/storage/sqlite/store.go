package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/driftboard/driftboard/internal/canvas/access"
	"github.com/driftboard/driftboard/internal/canvas/domain"
	apperrors "github.com/driftboard/driftboard/internal/platform/errors"
	sqlitemigrate "github.com/driftboard/driftboard/internal/platform/storage/sqlitemigrate"
	canvasstorage "github.com/driftboard/driftboard/internal/services/canvas/storage"
	"github.com/driftboard/driftboard/internal/services/canvas/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for canvas relationship data.
type Store struct {
	sqlDB *sql.DB
}

// Open opens and migrates a canvas SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateWorkspace inserts a new workspace row.
func (s *Store) CreateWorkspace(ctx context.Context, workspace domain.Workspace) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(workspace.ID) == "" {
		return fmt.Errorf("workspace id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO workspaces (id, name, type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		workspace.ID,
		workspace.Name,
		domain.WorkspaceTypeLabel(workspace.Type),
		timeToUnixMillis(workspace.CreatedAt),
		timeToUnixMillis(workspace.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	return nil
}

// Workspace loads a workspace by id.
func (s *Store) Workspace(ctx context.Context, workspaceID string) (domain.Workspace, bool, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Workspace{}, false, fmt.Errorf("storage is not configured")
	}
	workspaceID = strings.TrimSpace(workspaceID)
	if workspaceID == "" {
		return domain.Workspace{}, false, fmt.Errorf("workspace id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, name, type, created_at, updated_at FROM workspaces WHERE id = ?`,
		workspaceID,
	)

	var workspace domain.Workspace
	var typeLabel string
	var createdAt, updatedAt int64
	if err := row.Scan(&workspace.ID, &workspace.Name, &typeLabel, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Workspace{}, false, nil
		}
		return domain.Workspace{}, false, fmt.Errorf("get workspace: %w", err)
	}
	workspace.Type, _ = domain.ParseWorkspaceType(typeLabel)
	workspace.CreatedAt = unixMillisToTime(createdAt)
	workspace.UpdatedAt = unixMillisToTime(updatedAt)
	return workspace, true, nil
}

// PutMember upserts a workspace membership.
func (s *Store) PutMember(ctx context.Context, member domain.Member) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(member.WorkspaceID) == "" || strings.TrimSpace(member.UserID) == "" {
		return fmt.Errorf("workspace id and user id are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO members (workspace_id, user_id, role, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(workspace_id, user_id) DO UPDATE SET role = excluded.role`,
		member.WorkspaceID,
		member.UserID,
		domain.MemberRoleLabel(member.Role),
		timeToUnixMillis(member.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

// Member loads a workspace membership by (workspace, user).
func (s *Store) Member(ctx context.Context, workspaceID, userID string) (domain.Member, bool, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Member{}, false, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT workspace_id, user_id, role, created_at FROM members
		 WHERE workspace_id = ? AND user_id = ?`,
		strings.TrimSpace(workspaceID),
		strings.TrimSpace(userID),
	)

	var member domain.Member
	var roleLabel string
	var createdAt int64
	if err := row.Scan(&member.WorkspaceID, &member.UserID, &roleLabel, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return domain.Member{}, false, nil
		}
		return domain.Member{}, false, fmt.Errorf("get member: %w", err)
	}
	member.Role, _ = domain.ParseMemberRole(roleLabel)
	member.CreatedAt = unixMillisToTime(createdAt)
	return member, true, nil
}

// CreateTeam inserts a new team row.
func (s *Store) CreateTeam(ctx context.Context, team domain.Team) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(team.ID) == "" {
		return fmt.Errorf("team id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO teams (id, workspace_id, name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		team.ID,
		team.WorkspaceID,
		team.Name,
		timeToUnixMillis(team.CreatedAt),
		timeToUnixMillis(team.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	return nil
}

// AddTeamMember adds a user to a team. Adding twice is a no-op.
func (s *Store) AddTeamMember(ctx context.Context, teamID, userID string, createdAt time.Time) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	teamID = strings.TrimSpace(teamID)
	userID = strings.TrimSpace(userID)
	if teamID == "" || userID == "" {
		return fmt.Errorf("team id and user id are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO team_members (team_id, user_id, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(team_id, user_id) DO NOTHING`,
		teamID,
		userID,
		timeToUnixMillis(createdAt),
	)
	if err != nil {
		return fmt.Errorf("add team member: %w", err)
	}
	return nil
}

// PutTeamGrant upserts a team's access level on a collection.
func (s *Store) PutTeamGrant(ctx context.Context, grant domain.TeamCollection) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(grant.TeamID) == "" || strings.TrimSpace(grant.CollectionID) == "" {
		return fmt.Errorf("team id and collection id are required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO team_collections (team_id, collection_id, access_level, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(team_id, collection_id) DO UPDATE SET access_level = excluded.access_level`,
		grant.TeamID,
		grant.CollectionID,
		domain.AccessLevelLabel(grant.Level),
		timeToUnixMillis(grant.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put team grant: %w", err)
	}
	return nil
}

// CreateCollection inserts a new collection row.
func (s *Store) CreateCollection(ctx context.Context, collection domain.Collection) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(collection.ID) == "" {
		return fmt.Errorf("collection id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO collections (id, workspace_id, name, is_private, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		collection.ID,
		collection.WorkspaceID,
		collection.Name,
		boolToInt(collection.IsPrivate),
		collection.OwnerID,
		timeToUnixMillis(collection.CreatedAt),
		timeToUnixMillis(collection.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// Collection loads a collection by id.
func (s *Store) Collection(ctx context.Context, collectionID string) (domain.Collection, bool, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Collection{}, false, fmt.Errorf("storage is not configured")
	}
	collectionID = strings.TrimSpace(collectionID)
	if collectionID == "" {
		return domain.Collection{}, false, fmt.Errorf("collection id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, workspace_id, name, is_private, owner_id, created_at, updated_at
		 FROM collections WHERE id = ?`,
		collectionID,
	)
	collection, err := scanCollection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Collection{}, false, nil
		}
		return domain.Collection{}, false, fmt.Errorf("get collection: %w", err)
	}
	return collection, true, nil
}

// CreateScene inserts a new scene row. Room fields start unbound.
func (s *Store) CreateScene(ctx context.Context, scene domain.Scene) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(scene.ID) == "" {
		return fmt.Errorf("scene id is required")
	}
	if collectionID := strings.TrimSpace(scene.CollectionID); collectionID != "" {
		collection, ok, err := s.Collection(ctx, collectionID)
		if err != nil {
			return fmt.Errorf("check scene collection: %w", err)
		}
		if ok && collection.WorkspaceID != scene.WorkspaceID {
			return apperrors.New(apperrors.CodeSceneCollectionMismatch, "scene collection belongs to a different workspace")
		}
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO scenes (id, workspace_id, collection_id, name, collaboration_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scene.ID,
		scene.WorkspaceID,
		scene.CollectionID,
		scene.Name,
		boolToInt(scene.CollaborationEnabled),
		timeToUnixMillis(scene.CreatedAt),
		timeToUnixMillis(scene.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	return nil
}

// Scene loads a scene by id, including any bound room credentials.
func (s *Store) Scene(ctx context.Context, sceneID string) (domain.Scene, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Scene{}, fmt.Errorf("storage is not configured")
	}
	sceneID = strings.TrimSpace(sceneID)
	if sceneID == "" {
		return domain.Scene{}, fmt.Errorf("scene id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, workspace_id, collection_id, name, collaboration_enabled, room_id, room_key_encrypted, created_at, updated_at
		 FROM scenes WHERE id = ?`,
		sceneID,
	)

	var scene domain.Scene
	var collabInt int64
	var roomID sql.NullString
	var roomKey []byte
	var createdAt, updatedAt int64
	err := row.Scan(
		&scene.ID,
		&scene.WorkspaceID,
		&scene.CollectionID,
		&scene.Name,
		&collabInt,
		&roomID,
		&roomKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Scene{}, apperrors.New(apperrors.CodeNotFound, "scene not found")
		}
		return domain.Scene{}, fmt.Errorf("get scene: %w", err)
	}
	scene.CollaborationEnabled = collabInt != 0
	if roomID.Valid {
		scene.RoomID = roomID.String
	}
	scene.RoomKeyEncrypted = roomKey
	scene.CreatedAt = unixMillisToTime(createdAt)
	scene.UpdatedAt = unixMillisToTime(updatedAt)
	return scene, nil
}

// SceneByRoom loads the scene a room id is bound to.
func (s *Store) SceneByRoom(ctx context.Context, roomID string) (domain.Scene, error) {
	if s == nil || s.sqlDB == nil {
		return domain.Scene{}, fmt.Errorf("storage is not configured")
	}
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return domain.Scene{}, fmt.Errorf("room id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id FROM scenes WHERE room_id = ?`,
		roomID,
	)
	var sceneID string
	if err := row.Scan(&sceneID); err != nil {
		if err == sql.ErrNoRows {
			return domain.Scene{}, apperrors.New(apperrors.CodeNotFound, "room not found")
		}
		return domain.Scene{}, fmt.Errorf("get scene by room: %w", err)
	}
	return s.Scene(ctx, sceneID)
}

// BindRoom binds a room to a scene if and only if no room is bound yet.
// The WHERE clause is the compare-and-set: concurrent callers race on the
// single UPDATE and exactly one wins.
func (s *Store) BindRoom(ctx context.Context, sceneID, roomID string, roomKeyEncrypted []byte) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	sceneID = strings.TrimSpace(sceneID)
	roomID = strings.TrimSpace(roomID)
	if sceneID == "" || roomID == "" {
		return fmt.Errorf("scene id and room id are required")
	}
	if len(roomKeyEncrypted) == 0 {
		return fmt.Errorf("sealed room key is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE scenes
		 SET room_id = ?, room_key_encrypted = ?, updated_at = ?
		 WHERE id = ? AND room_id IS NULL`,
		roomID,
		roomKeyEncrypted,
		time.Now().UTC().UnixMilli(),
		sceneID,
	)
	if err != nil {
		return fmt.Errorf("bind room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("bind room rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	scene, err := s.Scene(ctx, sceneID)
	if err != nil {
		return err
	}
	if scene.HasRoom() {
		return apperrors.New(apperrors.CodeSceneRoomAlreadyBound, "scene already has a room")
	}
	return fmt.Errorf("bind room: no rows updated")
}

// SceneAccess assembles the relationship data access resolution needs for
// one (user, scene) pair. Every call re-reads current rows.
func (s *Store) SceneAccess(ctx context.Context, userID, sceneID string) (access.Input, error) {
	if s == nil || s.sqlDB == nil {
		return access.Input{}, fmt.Errorf("storage is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return access.Input{}, fmt.Errorf("user id is required")
	}

	scene, err := s.Scene(ctx, sceneID)
	if err != nil {
		return access.Input{}, err
	}

	workspace, ok, err := s.Workspace(ctx, scene.WorkspaceID)
	if err != nil {
		return access.Input{}, err
	}
	if !ok {
		return access.Input{}, apperrors.New(apperrors.CodeNotFound, "workspace not found")
	}

	input := access.Input{
		UserID:    userID,
		Workspace: workspace,
		Scene:     scene,
	}

	member, ok, err := s.Member(ctx, scene.WorkspaceID, userID)
	if err != nil {
		return access.Input{}, err
	}
	if ok {
		input.Membership = &member
	}

	if scene.CollectionID != "" {
		collection, ok, err := s.Collection(ctx, scene.CollectionID)
		if err != nil {
			return access.Input{}, err
		}
		if ok {
			input.Collection = &collection
		}
	}

	grants, err := s.userGrants(ctx, scene.WorkspaceID, userID)
	if err != nil {
		return access.Input{}, err
	}
	input.Grants = grants
	return input, nil
}

// userGrants lists every team-collection grant held by teams the user
// belongs to within one workspace.
func (s *Store) userGrants(ctx context.Context, workspaceID, userID string) ([]domain.TeamCollection, error) {
	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT tc.team_id, tc.collection_id, tc.access_level, tc.created_at
		 FROM team_collections tc
		 JOIN team_members tm ON tm.team_id = tc.team_id
		 JOIN teams t ON t.id = tc.team_id
		 WHERE tm.user_id = ? AND t.workspace_id = ?
		 ORDER BY tc.team_id, tc.collection_id`,
		userID,
		workspaceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user grants: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var grants []domain.TeamCollection
	for rows.Next() {
		var grant domain.TeamCollection
		var levelLabel string
		var createdAt int64
		if err := rows.Scan(&grant.TeamID, &grant.CollectionID, &levelLabel, &createdAt); err != nil {
			return nil, fmt.Errorf("scan user grant: %w", err)
		}
		grant.Level, _ = domain.ParseAccessLevel(levelLabel)
		grant.CreatedAt = unixMillisToTime(createdAt)
		grants = append(grants, grant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user grants: %w", err)
	}
	return grants, nil
}

func scanCollection(row *sql.Row) (domain.Collection, error) {
	var collection domain.Collection
	var privateInt int64
	var createdAt, updatedAt int64
	if err := row.Scan(
		&collection.ID,
		&collection.WorkspaceID,
		&collection.Name,
		&privateInt,
		&collection.OwnerID,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Collection{}, err
	}
	collection.IsPrivate = privateInt != 0
	collection.CreatedAt = unixMillisToTime(createdAt)
	collection.UpdatedAt = unixMillisToTime(updatedAt)
	return collection, nil
}

// runMigrations applies embedded SQL migrations in filename order.
func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ canvasstorage.Store = (*Store)(nil)
