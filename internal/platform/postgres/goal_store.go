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

// PostgresGoalStore implements store.GoalStore on the goals table.
// Membership lists are stored as JSONB arrays of record IDs.
type PostgresGoalStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGoalStore creates a goal store on db.
func NewPostgresGoalStore(db store.DBTX, logger *slog.Logger) *PostgresGoalStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresGoalStore{
		db:     db,
		logger: logger.With(slog.String("component", "goal_store")),
	}
}

var _ store.GoalStore = (*PostgresGoalStore)(nil)

const goalColumns = `id, user_id, deadline, number_of_books, avg_page_count,
	chosen_books, active_books, read_books, pages_read_today, todays_date,
	created_at, updated_at`

type goalArgs struct {
	chosen, active, read string
}

func encodeGoal(g *domain.Goal) (goalArgs, error) {
	var args goalArgs
	var err error
	if args.chosen, err = encodeIDs(g.ChosenBooks); err != nil {
		return args, err
	}
	if args.active, err = encodeIDs(g.ActiveBooks); err != nil {
		return args, err
	}
	args.read, err = encodeIDs(g.ReadBooks)
	return args, err
}

func scanGoal(row rowScanner) (*domain.Goal, error) {
	var (
		g                    domain.Goal
		deadline, today      time.Time
		chosen, active, read []byte
	)
	err := row.Scan(
		&g.ID, &g.UserID, &deadline, &g.NumberOfBooks, &g.AvgPageCount,
		&chosen, &active, &read, &g.PagesReadToday, &today,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.Deadline = dateOf(deadline)
	g.TodaysDate = dateOf(today)
	if g.ChosenBooks, err = decodeIDs(chosen); err != nil {
		return nil, err
	}
	if g.ActiveBooks, err = decodeIDs(active); err != nil {
		return nil, err
	}
	if g.ReadBooks, err = decodeIDs(read); err != nil {
		return nil, err
	}
	return &g, nil
}

// Create implements store.GoalStore.Create.
func (s *PostgresGoalStore) Create(ctx context.Context, goal *domain.Goal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("goal validation failed during create",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	args, err := encodeGoal(goal)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		goal.ID, goal.UserID, dateArg(goal.Deadline), goal.NumberOfBooks, goal.AvgPageCount,
		args.chosen, args.active, args.read, goal.PagesReadToday, dateArg(goal.TodaysDate),
		goal.CreatedAt, goal.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return MapError(err)
	}

	log.Debug("goal created", slog.String("goal_id", goal.ID.String()))
	return nil
}

// ListByUser implements store.GoalStore.ListByUser.
func (s *PostgresGoalStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = $1 ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var goals []*domain.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return goals, nil
}

// Update implements store.GoalStore.Update.
func (s *PostgresGoalStore) Update(ctx context.Context, goal *domain.Goal) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := goal.Validate(); err != nil {
		log.Warn("goal validation failed during update",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	args, err := encodeGoal(goal)
	if err != nil {
		return err
	}

	query := `
		UPDATE goals
		SET deadline = $2, number_of_books = $3, avg_page_count = $4,
			chosen_books = $5, active_books = $6, read_books = $7,
			pages_read_today = $8, todays_date = $9, updated_at = $10
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		goal.ID, dateArg(goal.Deadline), goal.NumberOfBooks, goal.AvgPageCount,
		args.chosen, args.active, args.read,
		goal.PagesReadToday, dateArg(goal.TodaysDate), goal.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to update goal",
			slog.String("error", err.Error()),
			slog.String("goal_id", goal.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGoalNotFound)
}

// Delete implements store.GoalStore.Delete.
func (s *PostgresGoalStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrGoalNotFound)
}

// WithTx implements store.GoalStore.WithTx.
func (s *PostgresGoalStore) WithTx(tx *sql.Tx) store.GoalStore {
	return &PostgresGoalStore{db: tx, logger: s.logger}
}
