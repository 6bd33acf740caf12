// Package seed populates a local development database with demo canvas
// data by exercising the storage layer, so seeded rows pass the same
// validation as production writes.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/driftboard/driftboard/internal/canvas/domain"
	entrypoint "github.com/driftboard/driftboard/internal/platform/cmd"
	"github.com/driftboard/driftboard/internal/services/canvas/storage/fsblob"
	"github.com/driftboard/driftboard/internal/services/canvas/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	StoragePath string `env:"DRIFTBOARD_STORAGE_PATH" envDefault:"driftboard.db"`
	BlobDir     string `env:"DRIFTBOARD_BLOB_DIR"     envDefault:"blobs"`
	Verbose     bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "sqlite database path")
	fs.StringVar(&cfg.BlobDir, "blob-dir", cfg.BlobDir, "scene content blob directory")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run seeds the demo workspace and prints a summary of what was created.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	store, err := sqlite.Open(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	blobs, err := fsblob.New(cfg.BlobDir)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	workspace, err := domain.CreateWorkspace(domain.CreateWorkspaceInput{
		Name: "Acme Design",
		Type: domain.WorkspaceTypeShared,
	}, nil, nil)
	if err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	if err := store.CreateWorkspace(ctx, workspace); err != nil {
		return fmt.Errorf("store workspace: %w", err)
	}

	members := []struct {
		userID string
		role   domain.MemberRole
	}{
		{userID: "alice", role: domain.MemberRoleAdmin},
		{userID: "bob", role: domain.MemberRoleMember},
		{userID: "carol", role: domain.MemberRoleMember},
		{userID: "dave", role: domain.MemberRoleViewer},
	}
	for _, m := range members {
		member, err := domain.NewMember(workspace.ID, m.userID, m.role, nil)
		if err != nil {
			return fmt.Errorf("create member %s: %w", m.userID, err)
		}
		if err := store.PutMember(ctx, member); err != nil {
			return fmt.Errorf("store member %s: %w", m.userID, err)
		}
	}

	team, err := domain.CreateTeam(domain.CreateTeamInput{
		WorkspaceID: workspace.ID,
		Name:        "Design",
	}, nil, nil)
	if err != nil {
		return fmt.Errorf("create team: %w", err)
	}
	if err := store.CreateTeam(ctx, team); err != nil {
		return fmt.Errorf("store team: %w", err)
	}
	for _, userID := range []string{"bob", "dave"} {
		if err := store.AddTeamMember(ctx, team.ID, userID, team.CreatedAt); err != nil {
			return fmt.Errorf("add team member %s: %w", userID, err)
		}
	}

	shared, err := domain.CreateCollection(domain.CreateCollectionInput{
		WorkspaceID: workspace.ID,
		Name:        "Product Mockups",
	}, nil, nil)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if err := store.CreateCollection(ctx, shared); err != nil {
		return fmt.Errorf("store collection: %w", err)
	}

	private, err := domain.CreateCollection(domain.CreateCollectionInput{
		WorkspaceID: workspace.ID,
		Name:        "Alice's Drafts",
		IsPrivate:   true,
		OwnerID:     "alice",
	}, nil, nil)
	if err != nil {
		return fmt.Errorf("create private collection: %w", err)
	}
	if err := store.CreateCollection(ctx, private); err != nil {
		return fmt.Errorf("store private collection: %w", err)
	}

	grant, err := domain.NewTeamCollection(team.ID, shared.ID, domain.AccessLevelEdit, nil)
	if err != nil {
		return fmt.Errorf("create team grant: %w", err)
	}
	if err := store.PutTeamGrant(ctx, grant); err != nil {
		return fmt.Errorf("store team grant: %w", err)
	}

	scenes := []struct {
		name          string
		collectionID  string
		collaboration bool
	}{
		{name: "Onboarding Flow", collectionID: shared.ID, collaboration: true},
		{name: "Pricing Page", collectionID: shared.ID, collaboration: false},
		{name: "Unreleased Redesign", collectionID: private.ID, collaboration: false},
	}
	for _, s := range scenes {
		scene, err := domain.CreateScene(domain.CreateSceneInput{
			WorkspaceID:          workspace.ID,
			CollectionID:         s.collectionID,
			Name:                 s.name,
			CollaborationEnabled: s.collaboration,
		}, nil, nil)
		if err != nil {
			return fmt.Errorf("create scene %s: %w", s.name, err)
		}
		if err := store.CreateScene(ctx, scene); err != nil {
			return fmt.Errorf("store scene %s: %w", s.name, err)
		}
		content := fmt.Sprintf(`{"elements":[],"name":%q}`, s.name)
		if err := blobs.PutSceneContent(ctx, scene.ID, []byte(content)); err != nil {
			return fmt.Errorf("store scene content %s: %w", s.name, err)
		}
		if cfg.Verbose {
			fmt.Fprintf(out, "scene %s (%s) collaboration=%t\n", scene.ID, s.name, s.collaboration)
		}
	}

	fmt.Fprintf(out, "seeded workspace %s with %d members, 1 team, 2 collections, %d scenes\n",
		workspace.ID, len(members), len(scenes))
	return nil
}
