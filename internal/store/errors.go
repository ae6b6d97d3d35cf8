package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants wrap it, so errors.Is(err, ErrNotFound) matches all of them.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a create would collide with an existing entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update matches no row or violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete fails, for example because
	// the entity is still referenced.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a transaction fails to commit
	// or an operation inside it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrUnsupportedMutation is returned by Apply for a mutation whose
	// entity type or operation the store does not know.
	ErrUnsupportedMutation = errors.New("unsupported mutation")

	// ErrBookNotFound indicates that the requested catalog book does not exist.
	ErrBookNotFound = fmt.Errorf("%w: book", ErrNotFound)

	// ErrGoalNotFound indicates that the requested goal does not exist.
	ErrGoalNotFound = fmt.Errorf("%w: goal", ErrNotFound)

	// ErrChosenBookNotFound indicates that the requested chosen record does not exist.
	ErrChosenBookNotFound = fmt.Errorf("%w: chosen book", ErrNotFound)

	// ErrActiveBookNotFound indicates that the requested active record does not exist.
	ErrActiveBookNotFound = fmt.Errorf("%w: active book", ErrNotFound)

	// ErrReadBookNotFound indicates that the requested read record does not exist.
	ErrReadBookNotFound = fmt.Errorf("%w: read book", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// NotFoundFor returns the entity-specific not found error for kind.
func NotFoundFor(kind string) error {
	switch kind {
	case "book":
		return ErrBookNotFound
	case "goal":
		return ErrGoalNotFound
	case "chosen_book":
		return ErrChosenBookNotFound
	case "active_book":
		return ErrActiveBookNotFound
	case "read_book":
		return ErrReadBookNotFound
	default:
		return ErrNotFound
	}
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "goal", "active_book")
	Operation string // The operation that failed (e.g., "create", "apply")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
