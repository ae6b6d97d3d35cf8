package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
)

// BookStore defines the interface for catalog book persistence.
// Books are immutable once created; there is no update.
type BookStore interface {
	// Create saves a new book. The book must pass domain validation.
	Create(ctx context.Context, book *domain.Book) error

	// ListByUser returns every book owned by userID.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Book, error)

	// Delete removes a book. Lifecycle records referring to it are removed
	// by the database through ON DELETE CASCADE.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a BookStore bound to tx.
	WithTx(tx *sql.Tx) BookStore
}
