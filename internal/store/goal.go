package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
)

// GoalStore defines the interface for goal persistence. A goal row carries
// its membership lists and the day counter.
type GoalStore interface {
	// Create saves a new goal.
	Create(ctx context.Context, goal *domain.Goal) error

	// ListByUser returns every goal owned by userID, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Goal, error)

	// Update overwrites every mutable field of the goal.
	// Returns ErrGoalNotFound if the goal does not exist.
	Update(ctx context.Context, goal *domain.Goal) error

	// Delete removes a goal.
	// Returns ErrGoalNotFound if the goal does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a GoalStore bound to tx.
	WithTx(tx *sql.Tx) GoalStore
}
