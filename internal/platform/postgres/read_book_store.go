package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/store"
)

// PostgresReadBookStore implements store.ReadBookStore.
type PostgresReadBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReadBookStore creates a read record store on db.
func NewPostgresReadBookStore(db store.DBTX, logger *slog.Logger) *PostgresReadBookStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresReadBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "read_book_store")),
	}
}

var _ store.ReadBookStore = (*PostgresReadBookStore)(nil)

const readColumns = `id, user_id, book_id, start_date, end_date, goal_ids, created_at, updated_at`

func scanRead(row rowScanner) (*domain.ReadBook, error) {
	var (
		r          domain.ReadBook
		start, end time.Time
		goals      []byte
	)
	err := row.Scan(&r.ID, &r.UserID, &r.BookID, &start, &end, &goals, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.StartDate = dateOf(start)
	r.EndDate = dateOf(end)
	if r.GoalIDs, err = decodeIDs(goals); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create implements store.ReadBookStore.Create.
func (s *PostgresReadBookStore) Create(ctx context.Context, read *domain.ReadBook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := read.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	goals, err := encodeIDs(read.GoalIDs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO read_books (`+readColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, read.ID, read.UserID, read.BookID, dateArg(read.StartDate), dateArg(read.EndDate),
		goals, read.CreatedAt, read.UpdatedAt)
	if err != nil {
		log.Error("failed to create read book",
			slog.String("error", err.Error()),
			slog.String("read_book_id", read.ID.String()),
			slog.String("book_id", read.BookID.String()))
		return MapError(err)
	}
	return nil
}

// ListByUser implements store.ReadBookStore.ListByUser.
func (s *PostgresReadBookStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReadBook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+readColumns+` FROM read_books WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ReadBook
	for rows.Next() {
		read, err := scanRead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan read book: %w", err)
		}
		out = append(out, read)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// Update implements store.ReadBookStore.Update.
func (s *PostgresReadBookStore) Update(ctx context.Context, read *domain.ReadBook) error {
	if err := read.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	goals, err := encodeIDs(read.GoalIDs)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE read_books
		SET start_date = $2, end_date = $3, goal_ids = $4, updated_at = $5
		WHERE id = $1
	`, read.ID, dateArg(read.StartDate), dateArg(read.EndDate), goals, read.UpdatedAt)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReadBookNotFound)
}

// Delete implements store.ReadBookStore.Delete.
func (s *PostgresReadBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM read_books WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrReadBookNotFound)
}

// WithTx implements store.ReadBookStore.WithTx.
func (s *PostgresReadBookStore) WithTx(tx *sql.Tx) store.ReadBookStore {
	return &PostgresReadBookStore{db: tx, logger: s.logger}
}
