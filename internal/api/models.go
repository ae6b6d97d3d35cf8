package api

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/domain/pacing"
	"github.com/phrazzld/pagepace/internal/service"
)

// dateLayout is the wire format of calendar dates.
const dateLayout = "2006-01-02"

// GoalRequest is the payload for creating or editing a goal.
type GoalRequest struct {
	NumberOfBooks int    `json:"number_of_books" validate:"gte=1"`
	AvgPageCount  int    `json:"avg_page_count"  validate:"gte=1"`
	Deadline      string `json:"deadline"        validate:"required,datetime=2006-01-02"`
}

// AddBookRequest is the payload for adding a new book to goals.
type AddBookRequest struct {
	Title     string      `json:"title"      validate:"required,max=500"`
	PageCount int         `json:"page_count" validate:"gte=1"`
	GoalIDs   []uuid.UUID `json:"goal_ids"   validate:"required,min=1"`
}

// GoalIDsRequest names the goals a lifecycle transition applies to.
type GoalIDsRequest struct {
	GoalIDs []uuid.UUID `json:"goal_ids" validate:"required,min=1"`
}

// UpdatePagesRequest is the payload for recording progress in a book.
type UpdatePagesRequest struct {
	PagesRead *int `json:"pages_read" validate:"required,gte=0"`
}

// ReactivateRequest is the payload for moving a read book back to active.
type ReactivateRequest struct {
	PagesRead *int        `json:"pages_read" validate:"required,gte=0"`
	GoalIDs   []uuid.UUID `json:"goal_ids"   validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// BookResponse is a catalog entry.
type BookResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}

// ChosenBookResponse is a book planned for one or more goals.
type ChosenBookResponse struct {
	ID      uuid.UUID     `json:"id"`
	BookID  uuid.UUID     `json:"book_id"`
	GoalIDs []uuid.UUID   `json:"goal_ids"`
	Book    *BookResponse `json:"book,omitempty"`
}

// ActiveBookResponse is a book in progress. PagesLeft is present when the
// book is known.
type ActiveBookResponse struct {
	ID        uuid.UUID     `json:"id"`
	BookID    uuid.UUID     `json:"book_id"`
	PagesRead int           `json:"pages_read"`
	PagesLeft *int          `json:"pages_left,omitempty"`
	StartDate civil.Date    `json:"start_date"`
	GoalIDs   []uuid.UUID   `json:"goal_ids"`
	Book      *BookResponse `json:"book,omitempty"`
}

// ReadBookResponse is a finished book.
type ReadBookResponse struct {
	ID        uuid.UUID     `json:"id"`
	BookID    uuid.UUID     `json:"book_id"`
	StartDate civil.Date    `json:"start_date"`
	EndDate   civil.Date    `json:"end_date"`
	GoalIDs   []uuid.UUID   `json:"goal_ids"`
	Book      *BookResponse `json:"book,omitempty"`
}

// GoalResponse is a goal with its pacing and records.
type GoalResponse struct {
	ID            uuid.UUID            `json:"id"`
	Title         string               `json:"title"`
	NumberOfBooks int                  `json:"number_of_books"`
	AvgPageCount  int                  `json:"avg_page_count"`
	Deadline      civil.Date           `json:"deadline"`
	Pace          *pacing.Pace         `json:"pace"`
	ChosenBooks   []ChosenBookResponse `json:"chosen_books"`
	ActiveBooks   []ActiveBookResponse `json:"active_books"`
	ReadBooks     []ReadBookResponse   `json:"read_books"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// DashboardResponse lists every goal of the user.
type DashboardResponse struct {
	Today civil.Date     `json:"today"`
	Goals []GoalResponse `json:"goals"`
}

// CatalogResponse lists every book of the user.
type CatalogResponse struct {
	Books []BookResponse `json:"books"`
}

// ProgressResponse is the outcome of updating pages read.
type ProgressResponse struct {
	Delta      int                `json:"delta"`
	ActiveBook ActiveBookResponse `json:"active_book"`
	Goal       GoalResponse       `json:"goal"`
}

func ids(set domain.IDSet) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	return append(out, set...)
}

func bookToResponse(b *domain.Book) *BookResponse {
	if b == nil {
		return nil
	}
	return &BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		PageCount: b.PageCount,
		CreatedAt: b.CreatedAt,
	}
}

func chosenToResponse(c *domain.ChosenBook, book *domain.Book) ChosenBookResponse {
	return ChosenBookResponse{
		ID:      c.ID,
		BookID:  c.BookID,
		GoalIDs: ids(c.GoalIDs),
		Book:    bookToResponse(book),
	}
}

func activeToResponse(a *domain.ActiveBook, book *domain.Book) ActiveBookResponse {
	resp := ActiveBookResponse{
		ID:        a.ID,
		BookID:    a.BookID,
		PagesRead: a.PagesRead,
		StartDate: a.StartDate,
		GoalIDs:   ids(a.GoalIDs),
		Book:      bookToResponse(book),
	}
	if book != nil {
		left := a.PagesLeft(book)
		resp.PagesLeft = &left
	}
	return resp
}

func readToResponse(r *domain.ReadBook, book *domain.Book) ReadBookResponse {
	return ReadBookResponse{
		ID:        r.ID,
		BookID:    r.BookID,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		GoalIDs:   ids(r.GoalIDs),
		Book:      bookToResponse(book),
	}
}

func goalToResponse(v *service.GoalView) GoalResponse {
	resp := GoalResponse{
		ID:            v.Goal.ID,
		Title:         v.Title,
		NumberOfBooks: v.Goal.NumberOfBooks,
		AvgPageCount:  v.Goal.AvgPageCount,
		Deadline:      v.Goal.Deadline,
		Pace:          v.Pace,
		ChosenBooks:   make([]ChosenBookResponse, 0, len(v.ChosenBooks)),
		ActiveBooks:   make([]ActiveBookResponse, 0, len(v.ActiveBooks)),
		ReadBooks:     make([]ReadBookResponse, 0, len(v.ReadBooks)),
		CreatedAt:     v.Goal.CreatedAt,
		UpdatedAt:     v.Goal.UpdatedAt,
	}
	for _, c := range v.ChosenBooks {
		resp.ChosenBooks = append(resp.ChosenBooks, chosenToResponse(c.Record, c.Book))
	}
	for _, a := range v.ActiveBooks {
		resp.ActiveBooks = append(resp.ActiveBooks, activeToResponse(a.Record, a.Book))
	}
	for _, r := range v.ReadBooks {
		resp.ReadBooks = append(resp.ReadBooks, readToResponse(r.Record, r.Book))
	}
	return resp
}

func dashboardToResponse(d *service.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Today: d.Today,
		Goals: make([]GoalResponse, 0, len(d.Goals)),
	}
	for _, g := range d.Goals {
		resp.Goals = append(resp.Goals, goalToResponse(g))
	}
	return resp
}

func catalogToResponse(c *service.Catalog) CatalogResponse {
	resp := CatalogResponse{Books: make([]BookResponse, 0, len(c.Books))}
	for _, b := range c.Books {
		resp.Books = append(resp.Books, *bookToResponse(b))
	}
	return resp
}

// parseDate parses a YYYY-MM-DD date, rejecting impossible days such as
// February 30.
func parseDate(s string) (civil.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return civil.Date{}, domain.ErrInvalidDate
	}
	return civil.DateOf(t), nil
}
