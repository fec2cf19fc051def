// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/awnumar/memguard"
	"github.com/urfave/cli/v3"
)

// Build-time version information (injected via ldflags during build).
var (
	version = "dev"
)

func main() {
	defer memguard.Purge()

	cmd := &cli.Command{
		Name:     "app",
		Usage:    "Encrypted vault for database connection profiles",
		Version:  version,
		Commands: getCommands(version),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		memguard.Purge()
		os.Exit(1)
	}
}
