package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/api/middleware"
	"github.com/phrazzld/pagepace/internal/api/shared"
	"github.com/phrazzld/pagepace/internal/config"
	"github.com/phrazzld/pagepace/internal/domain/pacing"
	"github.com/phrazzld/pagepace/internal/platform/memory"
	"github.com/phrazzld/pagepace/internal/service"
	"github.com/phrazzld/pagepace/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow    = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	testConfig = config.AuthConfig{
		JWTSecret:                   "api-test-secret-that-is-long-enough",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 1440,
	}
)

type testServer struct {
	handler http.Handler
	jwt     auth.JWTService
	userID  uuid.UUID
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := func() time.Time { return testNow }

	jwtService, err := auth.NewJWTServiceWithClock(testConfig, clock)
	require.NoError(t, err)

	goals, err := service.NewGoalService(
		memory.NewLibraryStore(discard),
		pacing.NewDefaultService(),
		discard,
		service.WithClock(clock),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	authHandler := NewAuthHandler(jwtService, testConfig).WithTimeFunc(clock)
	r.Post("/api/auth/refresh", authHandler.RefreshToken)
	r.Route("/api/users/{userID}", func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(jwtService).Authenticate)
		r.Use(middleware.RequireOwner("userID"))
		NewGoalHandler(goals, discard).RegisterRoutes(r)
	})

	userID := uuid.New()
	token, err := jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	return &testServer{handler: r, jwt: jwtService, userID: userID, token: token}
}

// do sends a request as the server's user. A string body is sent raw, any
// other non-nil body is JSON encoded.
func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.doAs(t, s.token, method, "/api/users/"+s.userID.String()+path, body)
}

func (s *testServer) doAs(t *testing.T, token, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) createGoal(t *testing.T) GoalResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/goals", map[string]any{
		"number_of_books": 2,
		"avg_page_count":  300,
		"deadline":        "2025-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[GoalResponse](t, rec)
}

func TestGoalHandler_CreateGoal(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	goal := s.createGoal(t)

	assert.NotEqual(t, uuid.Nil, goal.ID)
	assert.Equal(t, 2, goal.NumberOfBooks)
	assert.Equal(t, 300, goal.AvgPageCount)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.March, Day: 1}, goal.Deadline)
	require.NotNil(t, goal.Pace)
	assert.Equal(t, 2, goal.Pace.BooksLeft)
	assert.Equal(t, pacing.StatusOnTrack, goal.Pace.Status)
	assert.Empty(t, goal.ChosenBooks)
}

func TestGoalHandler_BookLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	goal := s.createGoal(t)
	goalIDs := map[string]any{"goal_ids": []uuid.UUID{goal.ID}}

	rec := s.do(t, http.MethodPost, "/books", map[string]any{
		"title":      "Dune",
		"page_count": 400,
		"goal_ids":   []uuid.UUID{goal.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode[BookResponse](t, rec)
	assert.Equal(t, "Dune", book.Title)

	rec = s.do(t, http.MethodGet, "/goals/"+goal.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[GoalResponse](t, rec)
	require.Len(t, view.ChosenBooks, 1)
	require.NotNil(t, view.ChosenBooks[0].Book)
	assert.Equal(t, book.ID, view.ChosenBooks[0].Book.ID)
	chosenID := view.ChosenBooks[0].ID

	rec = s.do(t, http.MethodPost, "/chosen-books/"+chosenID.String()+"/start", goalIDs)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	active := decode[ActiveBookResponse](t, rec)
	assert.Equal(t, book.ID, active.BookID)
	assert.Equal(t, civil.DateOf(testNow), active.StartDate)

	path := "/goals/" + goal.ID.String() + "/active-books/" + active.ID.String() + "/pages"
	rec = s.do(t, http.MethodPut, path, map[string]any{"pages_read": 50})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	progress := decode[ProgressResponse](t, rec)
	assert.Equal(t, 50, progress.Delta)
	assert.Equal(t, 50, progress.ActiveBook.PagesRead)
	require.NotNil(t, progress.ActiveBook.PagesLeft)
	assert.Equal(t, 350, *progress.ActiveBook.PagesLeft)
	assert.Equal(t, 50, progress.Goal.Pace.PagesReadToday)

	rec = s.do(t, http.MethodPost, "/active-books/"+active.ID.String()+"/finish", goalIDs)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	read := decode[ReadBookResponse](t, rec)
	assert.Equal(t, civil.DateOf(testNow), read.EndDate)

	rec = s.do(t, http.MethodGet, "/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dashboard := decode[DashboardResponse](t, rec)
	assert.Equal(t, civil.DateOf(testNow), dashboard.Today)
	require.Len(t, dashboard.Goals, 1)
	assert.Len(t, dashboard.Goals[0].ReadBooks, 1)
	assert.Empty(t, dashboard.Goals[0].ActiveBooks)
	assert.Equal(t, 1, dashboard.Goals[0].Pace.BooksLeft)

	rec = s.do(t, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[CatalogResponse](t, rec).Books, 1)

	rec = s.do(t, http.MethodPost, "/read-books/"+read.ID.String()+"/reactivate",
		map[string]any{"pages_read": 120, "goal_ids": []uuid.UUID{goal.ID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reactivated := decode[ActiveBookResponse](t, rec)
	assert.Equal(t, 120, reactivated.PagesRead)

	rec = s.do(t, http.MethodPost, "/active-books/"+reactivated.ID.String()+"/move-to-chosen", goalIDs)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	chosen := decode[ChosenBookResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/chosen-books/"+chosen.ID.String()+"/remove", goalIDs)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodDelete, "/goals/"+goal.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/goals/"+goal.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoalHandler_StartNewBookAndResetToday(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	goal := s.createGoal(t)
	goalIDs := map[string]any{"goal_ids": []uuid.UUID{goal.ID}}

	rec := s.do(t, http.MethodPost, "/books", map[string]any{
		"title": "Emma", "page_count": 200, "goal_ids": []uuid.UUID{goal.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	book := decode[BookResponse](t, rec)

	rec = s.do(t, http.MethodPost, "/books/"+book.ID.String()+"/start", goalIDs)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	active := decode[ActiveBookResponse](t, rec)

	path := "/goals/" + goal.ID.String() + "/active-books/" + active.ID.String() + "/pages"
	rec = s.do(t, http.MethodPut, path, map[string]any{"pages_read": 30})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/goals/"+goal.ID.String()+"/reset-today", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, decode[GoalResponse](t, rec).Pace.PagesReadToday)

	rec = s.do(t, http.MethodPost, "/active-books/"+active.ID.String()+"/remove", goalIDs)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGoalHandler_EditGoal(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	goal := s.createGoal(t)

	rec := s.do(t, http.MethodPut, "/goals/"+goal.ID.String(), map[string]any{
		"number_of_books": 5,
		"avg_page_count":  250,
		"deadline":        "2025-06-30",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	edited := decode[GoalResponse](t, rec)
	assert.Equal(t, goal.ID, edited.ID)
	assert.Equal(t, 5, edited.NumberOfBooks)
	assert.Equal(t, 250, edited.AvgPageCount)
	assert.Equal(t, civil.Date{Year: 2025, Month: time.June, Day: 30}, edited.Deadline)
}

func TestGoalHandler_Errors(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	goal := s.createGoal(t)
	validGoal := map[string]any{"number_of_books": 1, "avg_page_count": 100, "deadline": "2025-02-01"}

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{
			name:       "malformed body",
			method:     http.MethodPost,
			path:       "/goals",
			body:       "{",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "unknown field",
			method:     http.MethodPost,
			path:       "/goals",
			body:       `{"number_of_books":1,"avg_page_count":1,"deadline":"2025-02-01","extra":true}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request format",
		},
		{
			name:       "zero books",
			method:     http.MethodPost,
			path:       "/goals",
			body:       map[string]any{"number_of_books": 0, "avg_page_count": 100, "deadline": "2025-02-01"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid number_of_books: too small",
		},
		{
			name:       "impossible date",
			method:     http.MethodPost,
			path:       "/goals",
			body:       map[string]any{"number_of_books": 1, "avg_page_count": 100, "deadline": "2025-02-30"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid deadline: must be a date formatted as YYYY-MM-DD",
		},
		{
			name:       "deadline today",
			method:     http.MethodPost,
			path:       "/goals",
			body:       map[string]any{"number_of_books": 1, "avg_page_count": 100, "deadline": "2025-01-01"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Deadline must be after today",
		},
		{
			name:       "invalid goal id",
			method:     http.MethodGet,
			path:       "/goals/not-a-uuid",
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid ID",
		},
		{
			name:       "unknown goal",
			method:     http.MethodPut,
			path:       "/goals/" + uuid.NewString(),
			body:       validGoal,
			wantStatus: http.StatusNotFound,
			wantError:  "Resource not found",
		},
		{
			name:       "missing goal ids",
			method:     http.MethodPost,
			path:       "/chosen-books/" + uuid.NewString() + "/start",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid goal_ids: required field",
		},
		{
			name:       "unknown chosen book",
			method:     http.MethodPost,
			path:       "/chosen-books/" + uuid.NewString() + "/start",
			body:       map[string]any{"goal_ids": []uuid.UUID{goal.ID}},
			wantStatus: http.StatusNotFound,
			wantError:  "Resource not found",
		},
		{
			name:       "missing pages read",
			method:     http.MethodPut,
			path:       "/goals/" + goal.ID.String() + "/active-books/" + uuid.NewString() + "/pages",
			body:       map[string]any{},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid pages_read: required field",
		},
		{
			name:       "negative pages read",
			method:     http.MethodPut,
			path:       "/goals/" + goal.ID.String() + "/active-books/" + uuid.NewString() + "/pages",
			body:       map[string]any{"pages_read": -1},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid pages_read: too small",
		},
		{
			name:       "empty title",
			method:     http.MethodPost,
			path:       "/books",
			body:       map[string]any{"title": "", "page_count": 10, "goal_ids": []uuid.UUID{goal.ID}},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid title: required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantError, decode[shared.ErrorResponse](t, rec).Error)
		})
	}
}

func TestGoalHandler_Authorization(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		rec := s.doAs(t, "", http.MethodGet, "/api/users/"+s.userID.String()+"/goals", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("other user", func(t *testing.T) {
		rec := s.doAs(t, s.token, http.MethodGet, "/api/users/"+uuid.NewString()+"/goals", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("refresh token as access token", func(t *testing.T) {
		refresh, err := s.jwt.GenerateRefreshToken(context.Background(), s.userID)
		require.NoError(t, err)
		rec := s.doAs(t, refresh, http.MethodGet, "/api/users/"+s.userID.String()+"/goals", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("libraries are per user", func(t *testing.T) {
		s.createGoal(t)

		other := uuid.New()
		token, err := s.jwt.GenerateToken(context.Background(), other)
		require.NoError(t, err)
		rec := s.doAs(t, token, http.MethodGet, "/api/users/"+other.String()+"/goals", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[DashboardResponse](t, rec).Goals)
	})
}
