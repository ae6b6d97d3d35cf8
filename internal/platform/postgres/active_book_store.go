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

// PostgresActiveBookStore implements store.ActiveBookStore.
type PostgresActiveBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresActiveBookStore creates an active record store on db.
func NewPostgresActiveBookStore(db store.DBTX, logger *slog.Logger) *PostgresActiveBookStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresActiveBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "active_book_store")),
	}
}

var _ store.ActiveBookStore = (*PostgresActiveBookStore)(nil)

const activeColumns = `id, user_id, book_id, pages_read, start_date, goal_ids, created_at, updated_at`

func scanActive(row rowScanner) (*domain.ActiveBook, error) {
	var (
		a     domain.ActiveBook
		start time.Time
		goals []byte
	)
	err := row.Scan(&a.ID, &a.UserID, &a.BookID, &a.PagesRead, &start, &goals, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.StartDate = dateOf(start)
	if a.GoalIDs, err = decodeIDs(goals); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create implements store.ActiveBookStore.Create.
func (s *PostgresActiveBookStore) Create(ctx context.Context, active *domain.ActiveBook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := active.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	goals, err := encodeIDs(active.GoalIDs)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO active_books (`+activeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, active.ID, active.UserID, active.BookID, active.PagesRead, dateArg(active.StartDate),
		goals, active.CreatedAt, active.UpdatedAt)
	if err != nil {
		log.Error("failed to create active book",
			slog.String("error", err.Error()),
			slog.String("active_book_id", active.ID.String()),
			slog.String("book_id", active.BookID.String()))
		return MapError(err)
	}
	return nil
}

// ListByUser implements store.ActiveBookStore.ListByUser.
func (s *PostgresActiveBookStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ActiveBook, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+activeColumns+` FROM active_books WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.ActiveBook
	for rows.Next() {
		active, err := scanActive(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan active book: %w", err)
		}
		out = append(out, active)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// Update implements store.ActiveBookStore.Update.
func (s *PostgresActiveBookStore) Update(ctx context.Context, active *domain.ActiveBook) error {
	if err := active.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	goals, err := encodeIDs(active.GoalIDs)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE active_books
		SET pages_read = $2, start_date = $3, goal_ids = $4, updated_at = $5
		WHERE id = $1
	`, active.ID, active.PagesRead, dateArg(active.StartDate), goals, active.UpdatedAt)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrActiveBookNotFound)
}

// Delete implements store.ActiveBookStore.Delete.
func (s *PostgresActiveBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM active_books WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrActiveBookNotFound)
}

// WithTx implements store.ActiveBookStore.WithTx.
func (s *PostgresActiveBookStore) WithTx(tx *sql.Tx) store.ActiveBookStore {
	return &PostgresActiveBookStore{db: tx, logger: s.logger}
}
