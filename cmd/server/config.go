package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/pagepace/internal/config"
)

// loadAppConfig loads the application configuration from environment variables
// and the optional config file.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logAppConfig logs the loaded configuration without secrets.
func logAppConfig(cfg *config.Config, logger *slog.Logger) {
	logger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("log_format", cfg.Server.LogFormat),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("pacing_timezone", cfg.Pacing.Timezone))

	if cfg.Database.URL != "" {
		logger.Debug("Database configuration", slog.Bool("url_present", true))
	}
	if cfg.Auth.JWTSecret != "" {
		logger.Debug("Auth configuration", slog.Bool("jwt_secret_present", true))
	}
}
