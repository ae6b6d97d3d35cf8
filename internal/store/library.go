package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
)

// LibraryStore loads and saves a user's whole library. Lifecycle
// transitions read a snapshot, mutate it and hand back a changeset, so this
// is the only store the service layer needs.
type LibraryStore interface {
	// Load returns a snapshot of everything userID owns. A user without
	// data gets an empty library, not an error.
	Load(ctx context.Context, userID uuid.UUID) (*domain.Library, error)

	// Apply persists every mutation of cs in order. Either all mutations
	// are applied or none are.
	Apply(ctx context.Context, cs *domain.Changeset) error

	// Atomic runs fn with exclusive access to userID's library. The store
	// passed to fn shares one transaction; it commits when fn returns nil.
	// Concurrent Atomic calls for the same user are serialized.
	Atomic(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, s LibraryStore) error) error
}
