// Package main starts the canvas service and handles termination.
//
// The process hosts the scene access API, the room credential API, and the
// websocket collaboration relay over one HTTP listener.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	canvascmd "github.com/driftboard/driftboard/internal/cmd/canvas"
)

func main() {
	cfg, err := canvascmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[CANVAS] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := canvascmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
