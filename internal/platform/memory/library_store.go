// Package memory provides an in-process store.LibraryStore. It backs the
// memory database driver and the service and API tests.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/store"
)

// LibraryStore keeps one library snapshot per user.
//
// Atomic holds a per-user mutex for the whole callback and applies the
// callback's writes to a staged copy that replaces the stored library only
// when the callback succeeds. Apply calls made outside Atomic are not
// serialized against it.
type LibraryStore struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*domain.Library
	locks  map[uuid.UUID]*sync.Mutex
	logger *slog.Logger
}

// NewLibraryStore returns an empty store.
func NewLibraryStore(logger *slog.Logger) *LibraryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibraryStore{
		users:  make(map[uuid.UUID]*domain.Library),
		locks:  make(map[uuid.UUID]*sync.Mutex),
		logger: logger.With(slog.String("component", "memory_library_store")),
	}
}

var _ store.LibraryStore = (*LibraryStore)(nil)

// Load implements store.LibraryStore.Load. The snapshot is a deep copy.
func (s *LibraryStore) Load(ctx context.Context, userID uuid.UUID) (*domain.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if lib, ok := s.users[userID]; ok {
		return lib.Clone(), nil
	}
	return domain.NewLibrary(), nil
}

// Apply implements store.LibraryStore.Apply. The mutations are validated
// against a copy first, so a failing changeset leaves no trace.
func (s *LibraryStore) Apply(ctx context.Context, cs *domain.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cs == nil || cs.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[uuid.UUID]*domain.Library)
	for _, m := range cs.Mutations() {
		userID, err := s.ownerOf(staged, m)
		if err != nil {
			return err
		}
		lib, ok := staged[userID]
		if !ok {
			lib = s.libraryOf(userID).Clone()
			staged[userID] = lib
		}
		if err := applyMutation(lib, m); err != nil {
			return err
		}
	}

	for userID, lib := range staged {
		s.users[userID] = lib
	}
	logger.FromContextOrDefault(ctx, s.logger).Debug("changeset applied",
		slog.Int("mutation_count", cs.Len()))
	return nil
}

// Atomic implements store.LibraryStore.Atomic.
func (s *LibraryStore) Atomic(
	ctx context.Context,
	userID uuid.UUID,
	fn func(ctx context.Context, s store.LibraryStore) error,
) error {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	tx := &txStore{
		userID: userID,
		lib:    s.libraryOf(userID).Clone(),
	}
	s.mu.Unlock()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}

	s.mu.Lock()
	s.users[userID] = tx.lib
	s.mu.Unlock()
	return nil
}

func (s *LibraryStore) userLock(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// libraryOf returns the stored library, or an empty one. Callers hold s.mu.
func (s *LibraryStore) libraryOf(userID uuid.UUID) *domain.Library {
	if lib, ok := s.users[userID]; ok {
		return lib
	}
	return domain.NewLibrary()
}

// ownerOf finds the user a mutation belongs to. Deletes carry no entity,
// so the owner is found by looking the ID up. Callers hold s.mu.
func (s *LibraryStore) ownerOf(staged map[uuid.UUID]*domain.Library, m domain.Mutation) (uuid.UUID, error) {
	if m.Op != domain.OpDelete {
		if owner := entityOwner(m.Entity); owner != uuid.Nil {
			return owner, nil
		}
		return uuid.Nil, fmt.Errorf("%w: %s %T", store.ErrUnsupportedMutation, m.Op, m.Entity)
	}

	for userID, lib := range staged {
		if contains(lib, m.Kind, m.ID) {
			return userID, nil
		}
	}
	for userID, lib := range s.users {
		if contains(lib, m.Kind, m.ID) {
			return userID, nil
		}
	}
	return uuid.Nil, store.NewStoreError(string(m.Kind), string(m.Op), "entity not stored", store.NotFoundFor(string(m.Kind)))
}

// txStore is the store handed to an Atomic callback. It works on a private
// copy of one user's library.
type txStore struct {
	userID uuid.UUID
	lib    *domain.Library
	dirty  bool
}

func (t *txStore) Load(ctx context.Context, userID uuid.UUID) (*domain.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if userID != t.userID {
		return nil, fmt.Errorf("library of user %s is not locked", userID)
	}
	return t.lib.Clone(), nil
}

func (t *txStore) Apply(ctx context.Context, cs *domain.Changeset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if cs == nil || cs.IsEmpty() {
		return nil
	}

	staged := t.lib.Clone()
	for _, m := range cs.Mutations() {
		if m.Op != domain.OpDelete && entityOwner(m.Entity) != t.userID {
			return fmt.Errorf("%w: entity of another user", store.ErrInvalidEntity)
		}
		if err := applyMutation(staged, m); err != nil {
			return err
		}
	}
	t.lib = staged
	t.dirty = true
	return nil
}

func (t *txStore) Atomic(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context, s store.LibraryStore) error) error {
	if userID != t.userID {
		return fmt.Errorf("library of user %s is not locked", userID)
	}
	return fn(ctx, t)
}

// applyMutation checks the preconditions the postgres store enforces with
// constraints, then applies m to lib.
func applyMutation(lib *domain.Library, m domain.Mutation) error {
	exists := contains(lib, m.Kind, m.ID)

	switch m.Op {
	case domain.OpCreate:
		if exists {
			return store.NewStoreError(string(m.Kind), string(m.Op), "duplicate id", store.ErrDuplicate)
		}
		if err := validate(m.Entity); err != nil {
			return store.NewStoreError(string(m.Kind), string(m.Op), "validation failed",
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
		}
		if bookID, ok := referencedBook(m.Entity); ok && lib.Book(bookID) == nil {
			return store.NewStoreError(string(m.Kind), string(m.Op), "unknown book", store.ErrInvalidEntity)
		}
	case domain.OpUpdate:
		if m.Kind == domain.KindBook {
			return fmt.Errorf("%w: books are immutable", store.ErrUnsupportedMutation)
		}
		if !exists {
			return store.NewStoreError(string(m.Kind), string(m.Op), "entity not stored", store.NotFoundFor(string(m.Kind)))
		}
		if err := validate(m.Entity); err != nil {
			return store.NewStoreError(string(m.Kind), string(m.Op), "validation failed",
				fmt.Errorf("%w: %v", store.ErrInvalidEntity, err))
		}
	case domain.OpDelete:
		if !exists {
			return store.NewStoreError(string(m.Kind), string(m.Op), "entity not stored", store.NotFoundFor(string(m.Kind)))
		}
		lib.Remove(m.Kind, m.ID)
		if m.Kind == domain.KindBook {
			cascadeBook(lib, m.ID)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", store.ErrUnsupportedMutation, m.Op)
	}

	lib.Put(domain.CloneEntity(m.Entity))
	return nil
}

// cascadeBook mirrors ON DELETE CASCADE on the record tables.
func cascadeBook(lib *domain.Library, bookID uuid.UUID) {
	for id, c := range lib.ChosenBooks {
		if c.BookID == bookID {
			delete(lib.ChosenBooks, id)
		}
	}
	for id, a := range lib.ActiveBooks {
		if a.BookID == bookID {
			delete(lib.ActiveBooks, id)
		}
	}
	for id, r := range lib.ReadBooks {
		if r.BookID == bookID {
			delete(lib.ReadBooks, id)
		}
	}
}

func contains(lib *domain.Library, kind domain.EntityKind, id uuid.UUID) bool {
	switch kind {
	case domain.KindBook:
		return lib.Book(id) != nil
	case domain.KindChosenBook:
		return lib.ChosenBook(id) != nil
	case domain.KindActiveBook:
		return lib.ActiveBook(id) != nil
	case domain.KindReadBook:
		return lib.ReadBook(id) != nil
	case domain.KindGoal:
		return lib.Goal(id) != nil
	}
	return false
}

func entityOwner(entity any) uuid.UUID {
	switch e := entity.(type) {
	case *domain.Book:
		return e.UserID
	case *domain.ChosenBook:
		return e.UserID
	case *domain.ActiveBook:
		return e.UserID
	case *domain.ReadBook:
		return e.UserID
	case *domain.Goal:
		return e.UserID
	}
	return uuid.Nil
}

func referencedBook(entity any) (uuid.UUID, bool) {
	switch e := entity.(type) {
	case *domain.ChosenBook:
		return e.BookID, true
	case *domain.ActiveBook:
		return e.BookID, true
	case *domain.ReadBook:
		return e.BookID, true
	}
	return uuid.Nil, false
}

func validate(entity any) error {
	if v, ok := entity.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return fmt.Errorf("%T cannot be validated", entity)
}
