package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/api/shared"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/service"
)

// GoalHandler serves goals, the book catalog and book lifecycle
// transitions of one user.
type GoalHandler struct {
	goals  service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a new GoalHandler
func NewGoalHandler(goals service.GoalService, logger *slog.Logger) *GoalHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GoalHandler")
	}
	return &GoalHandler{
		goals:  goals,
		logger: logger.With(slog.String("component", "goal_handler")),
	}
}

// RegisterRoutes mounts the handler on r. Every route is relative to
// /users/{userID}, which the caller protects with authentication and
// ownership checks.
func (h *GoalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/goals", h.Dashboard)
	r.Post("/goals", h.CreateGoal)
	r.Get("/goals/{goalID}", h.GetGoal)
	r.Put("/goals/{goalID}", h.EditGoal)
	r.Delete("/goals/{goalID}", h.DeleteGoal)
	r.Post("/goals/{goalID}/reset-today", h.ResetToday)
	r.Put("/goals/{goalID}/active-books/{activeID}/pages", h.UpdatePagesRead)

	r.Get("/books", h.Catalog)
	r.Post("/books", h.AddBook)
	r.Post("/books/{bookID}/choose", h.ChooseBook)
	r.Post("/books/{bookID}/start", h.StartNewBook)

	r.Post("/chosen-books/{chosenID}/start", h.StartBook)
	r.Post("/chosen-books/{chosenID}/remove", h.RemoveChosenBook)

	r.Post("/active-books/{activeID}/finish", h.FinishBook)
	r.Post("/active-books/{activeID}/move-to-chosen", h.MoveToChosen)
	r.Post("/active-books/{activeID}/remove", h.RemoveActiveBook)

	r.Post("/read-books/{readID}/reactivate", h.ReactivateBook)
}

// params parses the user ID and the named path IDs. On failure the error
// response is already written.
func (h *GoalHandler) params(w http.ResponseWriter, r *http.Request, names ...string) (uuid.UUID, []uuid.UUID, bool) {
	all, err := pathUUIDs(r, append([]string{"userID"}, names...)...)
	if err != nil {
		HandleAPIError(w, r, err)
		return uuid.Nil, nil, false
	}
	return all[0], all[1:], true
}

func (h *GoalHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("goal request failed",
		slog.String("operation", op),
		slog.Int("status", MapErrorToStatusCode(err)))
	HandleAPIError(w, r, err)
}

// Dashboard handles GET /goals.
func (h *GoalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.params(w, r)
	if !ok {
		return
	}

	dashboard, err := h.goals.Dashboard(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "dashboard", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dashboardToResponse(dashboard))
}

// GetGoal handles GET /goals/{goalID}.
func (h *GoalHandler) GetGoal(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "goalID")
	if !ok {
		return
	}

	view, err := h.goals.Goal(r.Context(), userID, p[0])
	if err != nil {
		h.fail(w, r, "get_goal", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goalToResponse(view))
}

func goalInput(req *GoalRequest) (service.GoalInput, error) {
	deadline, err := parseDate(req.Deadline)
	if err != nil {
		return service.GoalInput{}, err
	}
	return service.GoalInput{
		NumberOfBooks: req.NumberOfBooks,
		AvgPageCount:  req.AvgPageCount,
		Deadline:      deadline,
	}, nil
}

// CreateGoal handles POST /goals.
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.params(w, r)
	if !ok {
		return
	}
	var req GoalRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	in, err := goalInput(&req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	view, err := h.goals.CreateGoal(r.Context(), userID, in)
	if err != nil {
		h.fail(w, r, "create_goal", err)
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("goal created",
		slog.String("goal_id", view.Goal.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, goalToResponse(view))
}

// EditGoal handles PUT /goals/{goalID}.
func (h *GoalHandler) EditGoal(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "goalID")
	if !ok {
		return
	}
	var req GoalRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	in, err := goalInput(&req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	view, err := h.goals.EditGoal(r.Context(), userID, p[0], in)
	if err != nil {
		h.fail(w, r, "edit_goal", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goalToResponse(view))
}

// DeleteGoal handles DELETE /goals/{goalID}.
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "goalID")
	if !ok {
		return
	}
	if err := h.goals.DeleteGoal(r.Context(), userID, p[0]); err != nil {
		h.fail(w, r, "delete_goal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetToday handles POST /goals/{goalID}/reset-today.
func (h *GoalHandler) ResetToday(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "goalID")
	if !ok {
		return
	}

	view, err := h.goals.ResetToday(r.Context(), userID, p[0])
	if err != nil {
		h.fail(w, r, "reset_today", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, goalToResponse(view))
}

// UpdatePagesRead handles PUT /goals/{goalID}/active-books/{activeID}/pages.
func (h *GoalHandler) UpdatePagesRead(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "goalID", "activeID")
	if !ok {
		return
	}
	var req UpdatePagesRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.goals.UpdatePagesRead(r.Context(), userID, p[0], p[1], *req.PagesRead)
	if err != nil {
		h.fail(w, r, "update_pages_read", err)
		return
	}

	var book *domain.Book
	for _, a := range result.Goal.ActiveBooks {
		if a.Record.ID == result.Active.ID {
			book = a.Book
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		Delta:      result.Delta,
		ActiveBook: activeToResponse(result.Active, book),
		Goal:       goalToResponse(result.Goal),
	})
}

// Catalog handles GET /books.
func (h *GoalHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.params(w, r)
	if !ok {
		return
	}

	catalog, err := h.goals.Catalog(r.Context(), userID)
	if err != nil {
		h.fail(w, r, "catalog", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, catalogToResponse(catalog))
}

// AddBook handles POST /books.
func (h *GoalHandler) AddBook(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.params(w, r)
	if !ok {
		return
	}
	var req AddBookRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	book, err := h.goals.AddBook(r.Context(), userID, req.Title, req.PageCount, req.GoalIDs)
	if err != nil {
		h.fail(w, r, "add_book", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, bookToResponse(book))
}

// ChooseBook handles POST /books/{bookID}/choose.
func (h *GoalHandler) ChooseBook(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "bookID")
	if !ok {
		return
	}
	var req GoalIDsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	chosen, err := h.goals.AddExistingBook(r.Context(), userID, p[0], req.GoalIDs)
	if err != nil {
		h.fail(w, r, "choose_book", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, chosenToResponse(chosen, nil))
}

// StartNewBook handles POST /books/{bookID}/start.
func (h *GoalHandler) StartNewBook(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "bookID")
	if !ok {
		return
	}
	var req GoalIDsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	active, err := h.goals.StartNewBook(r.Context(), userID, p[0], req.GoalIDs)
	if err != nil {
		h.fail(w, r, "start_new_book", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, activeToResponse(active, nil))
}

// StartBook handles POST /chosen-books/{chosenID}/start.
func (h *GoalHandler) StartBook(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "chosenID")
	if !ok {
		return
	}
	var req GoalIDsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	active, err := h.goals.StartBook(r.Context(), userID, p[0], req.GoalIDs)
	if err != nil {
		h.fail(w, r, "start_book", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, activeToResponse(active, nil))
}

// RemoveChosenBook handles POST /chosen-books/{chosenID}/remove.
func (h *GoalHandler) RemoveChosenBook(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "chosenID")
	if !ok {
		return
	}
	var req GoalIDsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.goals.RemoveBook(r.Context(), userID, p[0], req.GoalIDs); err != nil {
		h.fail(w, r, "remove_book", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FinishBook handles POST /active-books/{activeID}/finish.
func (h *GoalHandler) FinishBook(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "activeID")
	if !ok {
		return
	}
	var req GoalIDsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	read, err := h.goals.FinishBook(r.Context(), userID, p[0], req.GoalIDs)
	if err != nil {
		h.fail(w, r, "finish_book", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, readToResponse(read, nil))
}

// MoveToChosen handles POST /active-books/{activeID}/move-to-chosen.
func (h *GoalHandler) MoveToChosen(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "activeID")
	if !ok {
		return
	}
	var req GoalIDsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	chosen, err := h.goals.MoveToChosen(r.Context(), userID, p[0], req.GoalIDs)
	if err != nil {
		h.fail(w, r, "move_to_chosen", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, chosenToResponse(chosen, nil))
}

// RemoveActiveBook handles POST /active-books/{activeID}/remove.
func (h *GoalHandler) RemoveActiveBook(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "activeID")
	if !ok {
		return
	}
	var req GoalIDsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.goals.RemoveActiveBook(r.Context(), userID, p[0], req.GoalIDs); err != nil {
		h.fail(w, r, "remove_active_book", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReactivateBook handles POST /read-books/{readID}/reactivate.
func (h *GoalHandler) ReactivateBook(w http.ResponseWriter, r *http.Request) {
	userID, p, ok := h.params(w, r, "readID")
	if !ok {
		return
	}
	var req ReactivateRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	active, err := h.goals.ReactivateBook(r.Context(), userID, p[0], *req.PagesRead, req.GoalIDs)
	if err != nil {
		h.fail(w, r, "reactivate_book", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, activeToResponse(active, nil))
}
