package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/store"
)

// PostgresChosenBookStore implements store.ChosenBookStore.
type PostgresChosenBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresChosenBookStore creates a chosen record store on db.
func NewPostgresChosenBookStore(db store.DBTX, logger *slog.Logger) *PostgresChosenBookStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresChosenBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "chosen_book_store")),
	}
}

var _ store.ChosenBookStore = (*PostgresChosenBookStore)(nil)

const chosenColumns = `id, user_id, book_id, goal_ids, created_at, updated_at`

func scanChosen(row rowScanner) (*domain.ChosenBook, error) {
	var (
		c     domain.ChosenBook
		goals []byte
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.BookID, &goals, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	ids, err := decodeIDs(goals)
	if err != nil {
		return nil, err
	}
	c.GoalIDs = ids
	return &c, nil
}

// Create implements store.ChosenBookStore.Create.
func (s *PostgresChosenBookStore) Create(ctx context.Context, chosen *domain.ChosenBook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := chosen.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	goals, err := encodeIDs(chosen.GoalIDs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chosen_books (`+chosenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, chosen.ID, chosen.UserID, chosen.BookID, goals, chosen.CreatedAt, chosen.UpdatedAt)
	if err != nil {
		log.Error("failed to create chosen book",
			slog.String("error", err.Error()),
			slog.String("chosen_book_id", chosen.ID.String()),
			slog.String("book_id", chosen.BookID.String()))
		return MapError(err)
	}
	return nil
}

// ListByUser implements store.ChosenBookStore.ListByUser.
func (s *PostgresChosenBookStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ChosenBook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chosenColumns+` FROM chosen_books WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ChosenBook
	for rows.Next() {
		chosen, err := scanChosen(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chosen book: %w", err)
		}
		out = append(out, chosen)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// Update implements store.ChosenBookStore.Update. Only the membership list
// and timestamp change after creation.
func (s *PostgresChosenBookStore) Update(ctx context.Context, chosen *domain.ChosenBook) error {
	if err := chosen.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	goals, err := encodeIDs(chosen.GoalIDs)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE chosen_books SET goal_ids = $2, updated_at = $3 WHERE id = $1`,
		chosen.ID, goals, chosen.UpdatedAt)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrChosenBookNotFound)
}

// Delete implements store.ChosenBookStore.Delete.
func (s *PostgresChosenBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM chosen_books WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrChosenBookNotFound)
}

// WithTx implements store.ChosenBookStore.WithTx.
func (s *PostgresChosenBookStore) WithTx(tx *sql.Tx) store.ChosenBookStore {
	return &PostgresChosenBookStore{db: tx, logger: s.logger}
}
