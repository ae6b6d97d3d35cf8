package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/pagepace/internal/api/middleware"
	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/domain/pacing"
	"github.com/phrazzld/pagepace/internal/events"
	"github.com/phrazzld/pagepace/internal/platform/memory"
	"github.com/phrazzld/pagepace/internal/platform/postgres"
	"github.com/phrazzld/pagepace/internal/service"
	"github.com/phrazzld/pagepace/internal/service/auth"
	"github.com/phrazzld/pagepace/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	// db is nil for the memory driver.
	db *sql.DB

	libraries   store.LibraryStore
	pacer       pacing.Service
	jwtService  auth.JWTService
	goalService service.GoalService
	emitter     *events.InMemoryEventEmitter
	rateLimiter *middleware.RateLimiter
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	switch {
	case db != nil:
		app.libraries = postgres.NewPostgresLibraryStore(db, logger)
	case cfg.Database.Driver == driverMemory:
		app.libraries = memory.NewLibraryStore(logger)
	default:
		return nil, fmt.Errorf("database driver %q requires a connection", cfg.Database.Driver)
	}

	app.pacer, err = pacing.NewServiceWithParams(&pacing.Params{MinDaysLeft: cfg.Pacing.MinDaysLeft})
	if err != nil {
		return nil, fmt.Errorf("failed to create pacing service: %w", err)
	}

	location, err := time.LoadLocation(cfg.Pacing.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load pacing timezone %q: %w", cfg.Pacing.Timezone, err)
	}

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(events.NewLoggingHandler(logger))

	app.goalService, err = service.NewGoalService(
		app.libraries,
		app.pacer,
		logger,
		service.WithLocation(location),
		service.WithEventEmitter(app.emitter),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal service: %w", err)
	}

	app.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if app.rateLimiter.Enabled() {
		go app.sweepRateLimiter(ctx, time.Minute)
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// sweepRateLimiter drops idle client buckets until ctx is done.
func (app *application) sweepRateLimiter(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.rateLimiter.Sweep(); n > 0 {
				app.logger.Debug("rate limiter swept idle clients", slog.Int("removed", n))
			}
		}
	}
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
