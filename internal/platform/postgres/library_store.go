package postgres

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/phrazzld/pagepace/internal/platform/postgres"

// PostgresLibraryStore implements store.LibraryStore by composing the
// entity stores. Bound to a *sql.DB it opens its own transactions; bound to
// a *sql.Tx (inside Atomic) it runs on that transaction.
type PostgresLibraryStore struct {
	db     *sql.DB
	tx     *sql.Tx
	logger *slog.Logger
	tracer trace.Tracer

	books  store.BookStore
	goals  store.GoalStore
	chosen store.ChosenBookStore
	active store.ActiveBookStore
	read   store.ReadBookStore
}

// NewPostgresLibraryStore creates a library store on db.
func NewPostgresLibraryStore(db *sql.DB, logger *slog.Logger) *PostgresLibraryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLibraryStore{
		db:     db,
		logger: logger.With(slog.String("component", "library_store")),
		tracer: otel.Tracer(tracerName),
		books:  NewPostgresBookStore(db, logger),
		goals:  NewPostgresGoalStore(db, logger),
		chosen: NewPostgresChosenBookStore(db, logger),
		active: NewPostgresActiveBookStore(db, logger),
		read:   NewPostgresReadBookStore(db, logger),
	}
}

var _ store.LibraryStore = (*PostgresLibraryStore)(nil)

func (s *PostgresLibraryStore) withTx(tx *sql.Tx) *PostgresLibraryStore {
	return &PostgresLibraryStore{
		db:     s.db,
		tx:     tx,
		logger: s.logger,
		tracer: s.tracer,
		books:  s.books.WithTx(tx),
		goals:  s.goals.WithTx(tx),
		chosen: s.chosen.WithTx(tx),
		active: s.active.WithTx(tx),
		read:   s.read.WithTx(tx),
	}
}

// Load implements store.LibraryStore.Load.
func (s *PostgresLibraryStore) Load(ctx context.Context, userID uuid.UUID) (*domain.Library, error) {
	ctx, span := s.tracer.Start(ctx, "library_store.load",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	lib := domain.NewLibrary()
	err := s.inTx(ctx, func(ctx context.Context, ts *PostgresLibraryStore) error {
		return ts.loadInto(ctx, userID, lib)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, store.NewStoreError("library", "load", "failed to load library", err)
	}

	span.SetAttributes(
		attribute.Int("goals.loaded", len(lib.Goals)),
		attribute.Int("books.loaded", len(lib.Books)),
	)
	return lib, nil
}

func (s *PostgresLibraryStore) loadInto(ctx context.Context, userID uuid.UUID, lib *domain.Library) error {
	books, err := s.books.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, b := range books {
		lib.Put(b)
	}

	chosen, err := s.chosen.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, c := range chosen {
		lib.Put(c)
	}

	active, err := s.active.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, a := range active {
		lib.Put(a)
	}

	read, err := s.read.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range read {
		lib.Put(r)
	}

	goals, err := s.goals.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, g := range goals {
		lib.Put(g)
	}
	return nil
}

// Apply implements store.LibraryStore.Apply.
func (s *PostgresLibraryStore) Apply(ctx context.Context, cs *domain.Changeset) error {
	if cs == nil || cs.IsEmpty() {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "library_store.apply",
		trace.WithAttributes(attribute.Int("mutation.count", cs.Len())))
	defer span.End()

	err := s.inTx(ctx, func(ctx context.Context, ts *PostgresLibraryStore) error {
		for _, m := range cs.Mutations() {
			if err := ts.applyMutation(ctx, m); err != nil {
				return err
			}
			span.AddEvent("mutation.applied", trace.WithAttributes(
				attribute.String("mutation.op", string(m.Op)),
				attribute.String("mutation.kind", string(m.Kind)),
				attribute.String("mutation.id", m.ID.String()),
			))
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "apply failed")
		return err
	}
	return nil
}

func (s *PostgresLibraryStore) applyMutation(ctx context.Context, m domain.Mutation) error {
	if m.Op == domain.OpDelete {
		return s.deleteEntity(ctx, m.Kind, m.ID)
	}

	create := m.Op == domain.OpCreate
	var err error
	switch e := m.Entity.(type) {
	case *domain.Book:
		if !create {
			return fmt.Errorf("%w: books are immutable", store.ErrUnsupportedMutation)
		}
		err = s.books.Create(ctx, e)
	case *domain.Goal:
		if create {
			err = s.goals.Create(ctx, e)
		} else {
			err = s.goals.Update(ctx, e)
		}
	case *domain.ChosenBook:
		if create {
			err = s.chosen.Create(ctx, e)
		} else {
			err = s.chosen.Update(ctx, e)
		}
	case *domain.ActiveBook:
		if create {
			err = s.active.Create(ctx, e)
		} else {
			err = s.active.Update(ctx, e)
		}
	case *domain.ReadBook:
		if create {
			err = s.read.Create(ctx, e)
		} else {
			err = s.read.Update(ctx, e)
		}
	default:
		return fmt.Errorf("%w: %s %T", store.ErrUnsupportedMutation, m.Op, m.Entity)
	}
	if err != nil {
		return store.NewStoreError(string(m.Kind), string(m.Op), "mutation failed", err)
	}
	return nil
}

func (s *PostgresLibraryStore) deleteEntity(ctx context.Context, kind domain.EntityKind, id uuid.UUID) error {
	var err error
	switch kind {
	case domain.KindBook:
		err = s.books.Delete(ctx, id)
	case domain.KindGoal:
		err = s.goals.Delete(ctx, id)
	case domain.KindChosenBook:
		err = s.chosen.Delete(ctx, id)
	case domain.KindActiveBook:
		err = s.active.Delete(ctx, id)
	case domain.KindReadBook:
		err = s.read.Delete(ctx, id)
	default:
		return fmt.Errorf("%w: delete %s", store.ErrUnsupportedMutation, kind)
	}
	if err != nil {
		return store.NewStoreError(string(kind), string(domain.OpDelete), "mutation failed", err)
	}
	return nil
}

// Atomic implements store.LibraryStore.Atomic. The per-user advisory lock
// is held until the transaction ends.
func (s *PostgresLibraryStore) Atomic(
	ctx context.Context,
	userID uuid.UUID,
	fn func(ctx context.Context, s store.LibraryStore) error,
) error {
	ctx, span := s.tracer.Start(ctx, "library_store.atomic",
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	err := s.inTx(ctx, func(ctx context.Context, ts *PostgresLibraryStore) error {
		if _, err := ts.tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey(userID)); err != nil {
			return fmt.Errorf("failed to acquire library lock: %w", MapError(err))
		}
		logger.FromContextOrDefault(ctx, s.logger).Debug("library lock acquired",
			slog.String("user_id", userID.String()))
		return fn(ctx, ts)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "atomic failed")
	}
	return err
}

// inTx runs fn on a transaction-bound store, reusing the current
// transaction when there is one.
func (s *PostgresLibraryStore) inTx(ctx context.Context, fn func(ctx context.Context, ts *PostgresLibraryStore) error) error {
	if s.tx != nil {
		return fn(ctx, s)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.withTx(tx))
	})
}

// lockKey derives the advisory lock key from the first eight bytes of the
// user ID.
func lockKey(userID uuid.UUID) int64 {
	return int64(binary.BigEndian.Uint64(userID[:8]))
}
