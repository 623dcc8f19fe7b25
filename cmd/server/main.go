// Package main is the entry point for the floor tracker server.
//
// main stays minimal:
//  1. load configuration (.env, then the environment)
//  2. build the logger
//  3. hand both to internal/server and block until shutdown
//
// Everything else lives in internal/ and is testable without a process.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/floor-tracker/internal/config"
	"github.com/sakif/floor-tracker/internal/server"
)

func main() {
	// .env is optional; real environment variables win over it.
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Error("failed to load .env", slog.String("error", err.Error()))
		os.Exit(1)
	}

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	if cfg.SessionSecretRandom {
		logger.Warn("SESSION_SECRET not set: using a random secret, sessions end on restart")
	}
	if cfg.DBPath == ":memory:" {
		logger.Warn("DB_PATH not set: accounts and grids are kept in memory only")
	} else {
		// A file database needs its directory; sqlite won't create it.
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
