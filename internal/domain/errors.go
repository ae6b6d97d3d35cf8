package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidDate is returned when a calendar date is not a real date.
	ErrInvalidDate = errors.New("invalid date")

	// ErrRecordNotFound is returned when a lifecycle transition references
	// a book, record or goal that is not part of the library snapshot.
	ErrRecordNotFound = errors.New("record not found")

	// ErrNotInGoal is returned when a transition names a goal that does
	// not reference the record being moved.
	ErrNotInGoal = errors.New("record is not part of goal")

	// ErrNoGoals is returned when a transition is requested for an empty
	// set of goals.
	ErrNoGoals = errors.New("at least one goal is required")
)

// IsValidationError reports whether err comes from validating user input:
// the generic ErrValidation or one of the entity-specific rule violations.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrValidation,
		ErrInvalidDate,
		ErrEmptyBookTitle,
		ErrInvalidPages,
		ErrInvalidNumberOfBooks,
		ErrInvalidAvgPageCount,
		ErrInvalidDeadline,
		ErrNegativePagesToday,
		ErrNegativePagesRead,
		ErrEndBeforeStart,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
