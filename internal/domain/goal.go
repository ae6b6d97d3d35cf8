package domain

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Common validation errors for Goal
var (
	ErrEmptyGoalID          = errors.New("goal ID cannot be empty")
	ErrEmptyGoalUserID      = errors.New("goal user ID cannot be empty")
	ErrInvalidNumberOfBooks = errors.New("number of books must be at least 1")
	ErrInvalidAvgPageCount  = errors.New("average page count must be at least 1")
	ErrInvalidDeadline      = errors.New("invalid deadline")
	ErrNegativePagesToday   = errors.New("pages read today cannot be negative")
)

// Goal is the aggregate root of a reading goal: read NumberOfBooks books by
// Deadline. It owns the membership lists of its lifecycle records and the
// counter of pages read on TodaysDate.
//
// PagesReadToday is only meaningful while TodaysDate is the current day.
// Use Today, ResetIfNewDay and SetPagesReadToday rather than reading the
// field directly.
type Goal struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Deadline       civil.Date `json:"deadline"`
	NumberOfBooks  int        `json:"number_of_books"`
	AvgPageCount   int        `json:"avg_page_count"`
	ChosenBooks    IDSet      `json:"chosen_books"`
	ActiveBooks    IDSet      `json:"active_books"`
	ReadBooks      IDSet      `json:"read_books"`
	PagesReadToday int        `json:"pages_read_today"`
	TodaysDate     civil.Date `json:"todays_date"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewGoal creates a goal with no books whose day counter starts on the
// calendar day of now.
func NewGoal(
	userID uuid.UUID,
	numberOfBooks, avgPageCount int,
	deadline civil.Date,
	now time.Time,
) (*Goal, error) {
	ts := time.Now().UTC()
	goal := &Goal{
		ID:            uuid.New(),
		UserID:        userID,
		Deadline:      deadline,
		NumberOfBooks: numberOfBooks,
		AvgPageCount:  avgPageCount,
		TodaysDate:    civil.DateOf(now),
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	if err := goal.Validate(); err != nil {
		return nil, err
	}

	return goal, nil
}

// Validate checks if the Goal has valid data.
func (g *Goal) Validate() error {
	if g.ID == uuid.Nil {
		return ErrEmptyGoalID
	}

	if g.UserID == uuid.Nil {
		return ErrEmptyGoalUserID
	}

	if g.NumberOfBooks < 1 {
		return ErrInvalidNumberOfBooks
	}

	if g.AvgPageCount < 1 {
		return ErrInvalidAvgPageCount
	}

	if !g.Deadline.IsValid() {
		return ErrInvalidDeadline
	}

	if g.PagesReadToday < 0 {
		return ErrNegativePagesToday
	}

	return nil
}

// Edit replaces the planning inputs of the goal. Book membership and the
// day counter are untouched.
func (g *Goal) Edit(numberOfBooks, avgPageCount int, deadline civil.Date) error {
	edited := *g
	edited.NumberOfBooks = numberOfBooks
	edited.AvgPageCount = avgPageCount
	edited.Deadline = deadline
	if err := edited.Validate(); err != nil {
		return err
	}

	g.NumberOfBooks = numberOfBooks
	g.AvgPageCount = avgPageCount
	g.Deadline = deadline
	g.touch()
	return nil
}

// Today returns the current calendar day at now together with the pages
// read on it. A stale counter reads as zero; the goal itself is not
// modified.
func (g *Goal) Today(now time.Time) (civil.Date, int) {
	today := civil.DateOf(now)
	if !SameDay(g.TodaysDate, now) {
		return today, 0
	}
	return today, g.PagesReadToday
}

// ResetIfNewDay moves the day counter to the calendar day of now when the
// stored day is a different one. It reports whether anything changed, so a
// second call on the same day is a no-op.
func (g *Goal) ResetIfNewDay(now time.Time) bool {
	if SameDay(g.TodaysDate, now) {
		return false
	}
	g.TodaysDate = civil.DateOf(now)
	g.PagesReadToday = 0
	g.touch()
	return true
}

// SetPagesReadToday resets the counter if the day rolled over, then stores
// n clamped to be non-negative.
func (g *Goal) SetPagesReadToday(n int, now time.Time) {
	g.ResetIfNewDay(now)
	g.PagesReadToday = max(0, n)
	g.touch()
}

// AddPagesReadToday adds delta to the counter for the day of now. The
// result is clamped to be non-negative.
func (g *Goal) AddPagesReadToday(delta int, now time.Time) {
	_, today := g.Today(now)
	g.SetPagesReadToday(today+delta, now)
}

// ResetToday zeroes the counter for the current day.
func (g *Goal) ResetToday(now time.Time) {
	g.TodaysDate = civil.DateOf(now)
	g.PagesReadToday = 0
	g.touch()
}

// BooksLeft is the number of books still to finish. It is negative when
// more books were read than planned.
func (g *Goal) BooksLeft() int {
	return g.NumberOfBooks - g.ReadBooks.Len()
}

// HasRecord reports whether id is in any of the goal's record lists.
func (g *Goal) HasRecord(id uuid.UUID) bool {
	return g.ChosenBooks.Contains(id) || g.ActiveBooks.Contains(id) || g.ReadBooks.Contains(id)
}

// Attach adds a lifecycle record to the list matching kind.
func (g *Goal) Attach(kind EntityKind, id uuid.UUID) {
	switch kind {
	case KindChosenBook:
		g.ChosenBooks = g.ChosenBooks.With(id)
	case KindActiveBook:
		g.ActiveBooks = g.ActiveBooks.With(id)
	case KindReadBook:
		g.ReadBooks = g.ReadBooks.With(id)
	default:
		return
	}
	g.touch()
}

// Detach removes a lifecycle record from the list matching kind.
func (g *Goal) Detach(kind EntityKind, id uuid.UUID) {
	switch kind {
	case KindChosenBook:
		g.ChosenBooks = g.ChosenBooks.Without(id)
	case KindActiveBook:
		g.ActiveBooks = g.ActiveBooks.Without(id)
	case KindReadBook:
		g.ReadBooks = g.ReadBooks.Without(id)
	default:
		return
	}
	g.touch()
}

// Holds reports whether the list matching kind contains id.
func (g *Goal) Holds(kind EntityKind, id uuid.UUID) bool {
	switch kind {
	case KindChosenBook:
		return g.ChosenBooks.Contains(id)
	case KindActiveBook:
		return g.ActiveBooks.Contains(id)
	case KindReadBook:
		return g.ReadBooks.Contains(id)
	}
	return false
}

// Title renders a short human label such as "12 books by Dec 31, 2024".
// A single-book goal with exactly one attached book is named after it.
func (g *Goal) Title(lookup Lookup) string {
	deadline := g.Deadline.In(time.UTC).Format("Jan 2, 2006")

	if g.NumberOfBooks == 1 {
		books := BooksOf(g, lookup)
		if len(books) == 1 {
			return fmt.Sprintf("%s by %s", books[0].Title, deadline)
		}
		return fmt.Sprintf("1 book by %s", deadline)
	}

	return fmt.Sprintf("%d books by %s", g.NumberOfBooks, deadline)
}

func (g *Goal) touch() {
	g.UpdatedAt = time.Now().UTC()
}
