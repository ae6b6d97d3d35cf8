package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
)

// ChosenBookStore persists chosen records.
type ChosenBookStore interface {
	Create(ctx context.Context, chosen *domain.ChosenBook) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ChosenBook, error)
	Update(ctx context.Context, chosen *domain.ChosenBook) error
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *sql.Tx) ChosenBookStore
}

// ActiveBookStore persists active records and their progress.
type ActiveBookStore interface {
	Create(ctx context.Context, active *domain.ActiveBook) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveBook, error)
	Update(ctx context.Context, active *domain.ActiveBook) error
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *sql.Tx) ActiveBookStore
}

// ReadBookStore persists read records.
type ReadBookStore interface {
	Create(ctx context.Context, read *domain.ReadBook) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReadBook, error)
	Update(ctx context.Context, read *domain.ReadBook) error
	Delete(ctx context.Context, id uuid.UUID) error
	WithTx(tx *sql.Tx) ReadBookStore
}
