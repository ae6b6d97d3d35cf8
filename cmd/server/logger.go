package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/platform/logger"
)

// setupAppLogger builds the process logger from the server log settings and
// installs it as the slog default.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{
		Level:  cfg.Server.LogLevel,
		Format: cfg.Server.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger for level %q format %q: %w", cfg.Server.LogLevel, cfg.Server.LogFormat, err)
	}

	logAppConfig(cfg, l)
	return l, nil
}
