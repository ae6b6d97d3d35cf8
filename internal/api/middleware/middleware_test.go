package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/api/shared"
	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuth = config.AuthConfig{
	JWTSecret:                   "middleware-test-secret-of-sufficient-length",
	TokenLifetimeMinutes:        60,
	RefreshTokenLifetimeMinutes: 120,
}

type stubJWT struct {
	auth.JWTService
	claims *auth.Claims
	err    error
}

func (s stubJWT) ValidateToken(context.Context, string) (*auth.Claims, error) {
	return s.claims, s.err
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	tests := []struct {
		name           string
		authHeader     string
		jwt            auth.JWTService
		expectedStatus int
	}{
		{
			name:           "valid token",
			authHeader:     "Bearer valid-token",
			jwt:            stubJWT{claims: &auth.Claims{UserID: userID}},
			expectedStatus: http.StatusOK,
		},
		{name: "missing header", jwt: stubJWT{}, expectedStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic abc", jwt: stubJWT{}, expectedStatus: http.StatusUnauthorized},
		{name: "no token", authHeader: "Bearer", jwt: stubJWT{}, expectedStatus: http.StatusUnauthorized},
		{
			name:           "expired token",
			authHeader:     "Bearer expired",
			jwt:            stubJWT{err: auth.ErrExpiredToken},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "refresh token",
			authHeader:     "Bearer refresh",
			jwt:            stubJWT{err: auth.ErrWrongTokenType},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "unexpected failure",
			authHeader:     "Bearer whatever",
			jwt:            stubJWT{err: context.DeadlineExceeded},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var captured uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured, _ = GetUserID(r)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			NewAuthMiddleware(tt.jwt).Authenticate(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, captured)
			}
		})
	}
}

func TestAuthenticateWithRealTokens(t *testing.T) {
	t.Parallel()
	jwtService, err := auth.NewJWTService(testAuth)
	require.NoError(t, err)
	userID := uuid.New()

	access, err := jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	refresh, err := jwtService.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	handler := NewAuthMiddleware(jwtService).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for token, want := range map[string]int{access: http.StatusNoContent, refresh: http.StatusUnauthorized} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code)
	}
}

func TestRequireOwner(t *testing.T) {
	t.Parallel()
	owner := uuid.New()

	r := chi.NewRouter()
	r.With(RequireOwner("userID")).Get("/users/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		path   string
		user   uuid.UUID
		status int
	}{
		{name: "owner", path: "/users/" + owner.String(), user: owner, status: http.StatusOK},
		{name: "someone else", path: "/users/" + uuid.NewString(), user: owner, status: http.StatusForbidden},
		{name: "bad id", path: "/users/not-a-uuid", user: owner, status: http.StatusBadRequest},
		{name: "anonymous", path: "/users/" + owner.String(), status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.user != uuid.Nil {
				req = req.WithContext(shared.WithUserID(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()
	log, buf := logger.NewTestLogger()

	var traceID string
	handler := NewTraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/goals", nil))
	require.Len(t, traceID, 32)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, traceID, e["trace_id"])
	}
	last := entries[len(entries)-1]
	assert.Equal(t, "request completed", last["msg"])
	assert.Equal(t, float64(http.StatusTeapot), last["status"])
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 2)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"), "burst exhausted")
	assert.True(t, limiter.Allow("b"), "keys are independent")

	now = now.Add(time.Second)
	assert.True(t, limiter.Allow("a"), "one token refilled")

	now = now.Add(time.Hour)
	assert.Equal(t, 2, limiter.Sweep())

	disabled := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, disabled.Allow("a"))
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	t.Parallel()
	limiter := NewRateLimiter(0.5, 1)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))

	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Too many requests", body.Error)
}
