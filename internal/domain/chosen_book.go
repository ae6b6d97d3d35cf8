package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors shared by the lifecycle records
var (
	ErrEmptyRecordID     = errors.New("record ID cannot be empty")
	ErrEmptyRecordUserID = errors.New("record user ID cannot be empty")
	ErrEmptyRecordBookID = errors.New("record book ID cannot be empty")
)

// Membership is implemented by lifecycle records shared between goals.
type Membership interface {
	Goals() IDSet
	AddGoals(goalIDs ...uuid.UUID)
	RemoveGoals(goalIDs ...uuid.UUID)
}

var (
	_ Membership = (*ChosenBook)(nil)
	_ Membership = (*ActiveBook)(nil)
	_ Membership = (*ReadBook)(nil)
)

// ChosenBook marks a book as assigned to one or more goals but not started.
type ChosenBook struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	BookID    uuid.UUID `json:"book_id"`
	GoalIDs   IDSet     `json:"goal_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewChosenBook creates a chosen record for bookID shared by goalIDs.
func NewChosenBook(userID, bookID uuid.UUID, goalIDs ...uuid.UUID) (*ChosenBook, error) {
	now := time.Now().UTC()
	chosen := &ChosenBook{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		GoalIDs:   NewIDSet(goalIDs...),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := chosen.Validate(); err != nil {
		return nil, err
	}

	return chosen, nil
}

// Validate checks if the ChosenBook has valid data.
func (c *ChosenBook) Validate() error {
	return validateRecord(c.ID, c.UserID, c.BookID)
}

// AddGoals adds goal membership.
func (c *ChosenBook) AddGoals(goalIDs ...uuid.UUID) {
	c.GoalIDs = c.GoalIDs.With(goalIDs...)
	c.UpdatedAt = time.Now().UTC()
}

// RemoveGoals drops goal membership. The caller deletes the record once
// the membership is empty.
func (c *ChosenBook) RemoveGoals(goalIDs ...uuid.UUID) {
	c.GoalIDs = c.GoalIDs.Without(goalIDs...)
	c.UpdatedAt = time.Now().UTC()
}

func validateRecord(id, userID, bookID uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEmptyRecordID
	}
	if userID == uuid.Nil {
		return ErrEmptyRecordUserID
	}
	if bookID == uuid.Nil {
		return ErrEmptyRecordBookID
	}
	return nil
}

// Goals returns the current goal membership.
func (c *ChosenBook) Goals() IDSet {
	return c.GoalIDs
}
