// Package main implements the entry point for the pagepace API server,
// which tracks reading goals and paces users through their books.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	// Embedded zone database so Pacing.Timezone resolves in minimal images.
	_ "time/tzdata"
)

type options struct {
	configPath string
	migrateCmd string
	verbose    bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default: ./config.yaml if present)")
	fs.StringVar(&opts.migrateCmd, "migrate", "", "Run a database migration command (up, down, status, version, reset) and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Force debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("pagepace server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration and either executes a migration command or
// serves HTTP until ctx is canceled.
func run(ctx context.Context, opts options) error {
	cfg, err := loadAppConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.Server.LogLevel = "debug"
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	if opts.migrateCmd != "" {
		return handleMigrations(ctx, cfg, opts.migrateCmd, logger)
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
