package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/platform/postgres"
)

var migrateCommands = map[string]bool{
	"up":      true,
	"down":    true,
	"status":  true,
	"version": true,
	"reset":   true,
}

// handleMigrations runs a goose command against the configured database.
// It's called from run() when -migrate is set.
func handleMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	if !migrateCommands[command] {
		return fmt.Errorf("unsupported migration command %q", command)
	}
	if cfg.Database.Driver != driverPostgres {
		return fmt.Errorf("migrations require the %s driver, got %q", driverPostgres, cfg.Database.Driver)
	}

	db, err := openDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Executing migrations", slog.String("command", command))
	if err := postgres.Migrate(ctx, db, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	logger.Info("Migrations completed", slog.String("command", command))
	return nil
}
