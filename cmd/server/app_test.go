package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:            8080,
			LogLevel:        "info",
			LogFormat:       "json",
			AllowedOrigins:  []string{"https://pagepace.example"},
			ShutdownTimeout: 1,
		},
		Database: config.DatabaseConfig{Driver: driverMemory},
		Auth: config.AuthConfig{
			JWTSecret:                   "server-test-secret-that-is-long-enough",
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 120,
		},
		Pacing:    config.PacingConfig{Timezone: "Europe/Berlin", MinDaysLeft: 1},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewApplication(t *testing.T) {
	t.Parallel()

	t.Run("memory driver", func(t *testing.T) {
		t.Parallel()
		app, err := newApplication(testConfig(), discardLogger(), nil)
		require.NoError(t, err)
		assert.NotNil(t, app.goalService)
		assert.True(t, app.rateLimiter.Enabled())
	})

	t.Run("postgres driver without connection", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Database.Driver = driverPostgres
		_, err := newApplication(cfg, discardLogger(), nil)
		assert.Error(t, err)
	})

	t.Run("unknown timezone", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Pacing.Timezone = "Mars/Olympus"
		_, err := newApplication(cfg, discardLogger(), nil)
		assert.ErrorContains(t, err, "pacing timezone")
	})

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.Auth.JWTSecret = "short"
		_, err := newApplication(cfg, discardLogger(), nil)
		assert.Error(t, err)
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()
	app, err := newApplication(testConfig(), discardLogger(), nil)
	require.NoError(t, err)
	router := app.setupRouter()

	userID := uuid.New()
	token, err := app.jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	send := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("health", func(t *testing.T) {
		rec := send(http.MethodGet, "/health", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("requires authentication", func(t *testing.T) {
		rec := send(http.MethodGet, "/api/users/"+userID.String()+"/goals", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects other users", func(t *testing.T) {
		rec := send(http.MethodGet, "/api/users/"+uuid.NewString()+"/goals", token, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/users/"+userID.String()+"/goals", nil)
		req.Header.Set("Origin", "https://pagepace.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, "https://pagepace.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("rate limited per user", func(t *testing.T) {
		other := uuid.New()
		otherToken, err := app.jwtService.GenerateToken(context.Background(), other)
		require.NoError(t, err)
		path := "/api/users/" + other.String() + "/goals"

		for i := 0; i < 2; i++ {
			require.Equal(t, http.StatusOK, send(http.MethodGet, path, otherToken, "").Code)
		}
		rec := send(http.MethodGet, path, otherToken, "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	})
}

func TestSetupAppLogger_RejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.Server.LogFormat = "xml"

	_, err := setupAppLogger(cfg)
	assert.ErrorContains(t, err, `format "xml"`)
}

func TestParseFlags(t *testing.T) {
	t.Parallel()

	opts, err := parseFlags([]string{"-config", "/etc/pagepace.yaml", "-migrate", "up", "-verbose"})
	require.NoError(t, err)
	assert.Equal(t, options{configPath: "/etc/pagepace.yaml", migrateCmd: "up", verbose: true}, opts)

	opts, err = parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, options{}, opts)

	_, err = parseFlags([]string{"-unknown"})
	assert.Error(t, err)
}

func TestHandleMigrations_Rejects(t *testing.T) {
	t.Parallel()

	err := handleMigrations(context.Background(), testConfig(), "drop-everything", discardLogger())
	assert.ErrorContains(t, err, "unsupported migration command")

	err = handleMigrations(context.Background(), testConfig(), "up", discardLogger())
	assert.ErrorContains(t, err, "require the postgres driver")
}
