package domain

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// ErrEndBeforeStart is returned when a read record ends before it started.
var ErrEndBeforeStart = errors.New("end date cannot be before start date")

// ReadBook is a book finished within one or more goals.
type ReadBook struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	BookID    uuid.UUID  `json:"book_id"`
	StartDate civil.Date `json:"start_date"`
	EndDate   civil.Date `json:"end_date"`
	GoalIDs   IDSet      `json:"goal_ids"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewReadBook creates a read record spanning startDate to endDate.
func NewReadBook(
	userID, bookID uuid.UUID,
	startDate, endDate civil.Date,
	goalIDs ...uuid.UUID,
) (*ReadBook, error) {
	now := time.Now().UTC()
	read := &ReadBook{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		StartDate: startDate,
		EndDate:   endDate,
		GoalIDs:   NewIDSet(goalIDs...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := read.Validate(); err != nil {
		return nil, err
	}

	return read, nil
}

// Validate checks if the ReadBook has valid data.
func (r *ReadBook) Validate() error {
	if err := validateRecord(r.ID, r.UserID, r.BookID); err != nil {
		return err
	}
	if !r.StartDate.IsValid() || !r.EndDate.IsValid() {
		return ErrInvalidDate
	}
	if r.EndDate.Before(r.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

// AddGoals adds goal membership.
func (r *ReadBook) AddGoals(goalIDs ...uuid.UUID) {
	r.GoalIDs = r.GoalIDs.With(goalIDs...)
	r.UpdatedAt = time.Now().UTC()
}

// RemoveGoals drops goal membership.
func (r *ReadBook) RemoveGoals(goalIDs ...uuid.UUID) {
	r.GoalIDs = r.GoalIDs.Without(goalIDs...)
	r.UpdatedAt = time.Now().UTC()
}

// Goals returns the current goal membership.
func (r *ReadBook) Goals() IDSet {
	return r.GoalIDs
}
