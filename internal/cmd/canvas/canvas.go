// Package canvas parses canvas command flags and composes the service
// entrypoint.
package canvas

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/driftboard/driftboard/internal/platform/cmd"
	server "github.com/driftboard/driftboard/internal/services/canvas/app"
)

// Config holds canvas command configuration.
type Config struct {
	HTTPAddr    string `env:"DRIFTBOARD_CANVAS_HTTP_ADDR" envDefault:":8080"`
	StoragePath string `env:"DRIFTBOARD_STORAGE_PATH"     envDefault:"driftboard.db"`
	AuthSecret  string `env:"DRIFTBOARD_AUTH_SECRET"`
	RoomSecret  string `env:"DRIFTBOARD_ROOM_SECRET"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "canvas HTTP listen address")
	fs.StringVar(&cfg.StoragePath, "storage-path", cfg.StoragePath, "sqlite database path")
	fs.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "shared secret for verifying bearer tokens")
	fs.StringVar(&cfg.RoomSecret, "room-secret", cfg.RoomSecret, "server secret protecting stored room keys")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the canvas app and serves it until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCanvas, func(context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:    cfg.HTTPAddr,
			StoragePath: cfg.StoragePath,
			AuthSecret:  cfg.AuthSecret,
			RoomSecret:  cfg.RoomSecret,
		}); err != nil {
			return fmt.Errorf("serve canvas: %w", err)
		}
		return nil
	})
}
