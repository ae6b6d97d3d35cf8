package domain

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// ErrNegativePagesRead is returned by Validate when pages read is below zero.
var ErrNegativePagesRead = errors.New("pages read cannot be negative")

// ActiveBook is a book currently being read, with cumulative progress.
// PagesRead never exceeds the page count of the referenced book.
type ActiveBook struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	BookID    uuid.UUID  `json:"book_id"`
	PagesRead int        `json:"pages_read"`
	StartDate civil.Date `json:"start_date"`
	GoalIDs   IDSet      `json:"goal_ids"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewActiveBook creates an active record starting on startDate with no
// pages read.
func NewActiveBook(
	userID, bookID uuid.UUID,
	startDate civil.Date,
	goalIDs ...uuid.UUID,
) (*ActiveBook, error) {
	now := time.Now().UTC()
	active := &ActiveBook{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		StartDate: startDate,
		GoalIDs:   NewIDSet(goalIDs...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := active.Validate(); err != nil {
		return nil, err
	}

	return active, nil
}

// Validate checks if the ActiveBook has valid data.
func (a *ActiveBook) Validate() error {
	if err := validateRecord(a.ID, a.UserID, a.BookID); err != nil {
		return err
	}
	if a.PagesRead < 0 {
		return ErrNegativePagesRead
	}
	if !a.StartDate.IsValid() {
		return ErrInvalidDate
	}
	return nil
}

// SetPagesRead stores n clamped to [0, book.PageCount]. Input outside that
// range is corrected rather than rejected. With a nil book only the lower
// bound applies, since the page count is unknown.
func (a *ActiveBook) SetPagesRead(n int, book *Book) {
	if book != nil && n > book.PageCount {
		n = book.PageCount
	}
	if n < 0 {
		n = 0
	}
	a.PagesRead = n
	a.UpdatedAt = time.Now().UTC()
}

// PagesLeft returns the pages remaining in book, never below zero.
// A nil book contributes nothing.
func (a *ActiveBook) PagesLeft(book *Book) int {
	if book == nil {
		return 0
	}
	return max(0, book.PageCount-a.PagesRead)
}

// AddGoals adds goal membership.
func (a *ActiveBook) AddGoals(goalIDs ...uuid.UUID) {
	a.GoalIDs = a.GoalIDs.With(goalIDs...)
	a.UpdatedAt = time.Now().UTC()
}

// RemoveGoals drops goal membership.
func (a *ActiveBook) RemoveGoals(goalIDs ...uuid.UUID) {
	a.GoalIDs = a.GoalIDs.Without(goalIDs...)
	a.UpdatedAt = time.Now().UTC()
}

// Goals returns the current goal membership.
func (a *ActiveBook) Goals() IDSet {
	return a.GoalIDs
}
