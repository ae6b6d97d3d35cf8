package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps them to HTTP
// status codes.
var (
	// ErrDeadlineNotInFuture is returned when a goal deadline is not after
	// the current day. API layer should map this to HTTP 400 Bad Request.
	ErrDeadlineNotInFuture = errors.New("deadline must be after today")

	// ErrDeadlineTooFar is returned for deadlines in year 3000 or later.
	ErrDeadlineTooFar = errors.New("deadline is too far in the future")
)

// GoalServiceError wraps errors from the goal service with context.
type GoalServiceError struct {
	// Operation is the operation that failed (e.g., "start_book", "update_pages_read")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for GoalServiceError.
func (e *GoalServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("goal service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("goal service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GoalServiceError) Unwrap() error {
	return e.Err
}

// NewGoalServiceError creates a new GoalServiceError. A nil err yields nil.
func NewGoalServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	return &GoalServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
