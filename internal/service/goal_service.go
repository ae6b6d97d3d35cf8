package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/domain/lifecycle"
	"github.com/phrazzld/pagepace/internal/domain/pacing"
	"github.com/phrazzld/pagepace/internal/events"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/phrazzld/pagepace/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxDeadlineYear is the first year a deadline may not fall in.
const maxDeadlineYear = 3000

// GoalInput holds the planning inputs of a goal.
type GoalInput struct {
	NumberOfBooks int
	AvgPageCount  int
	Deadline      civil.Date
}

// GoalService provides goal and book lifecycle operations for one user at a
// time. Every mutating method runs as a single serialized unit of work on
// the user's library: either all of its changes are stored or none are.
type GoalService interface {
	// Dashboard returns every goal of the user with its pacing as of now.
	// Reading does not persist the daily reset.
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)

	// Goal returns one goal with its pacing.
	Goal(ctx context.Context, userID, goalID uuid.UUID) (*GoalView, error)

	// Catalog returns every book the user has added, including books no
	// goal refers to.
	Catalog(ctx context.Context, userID uuid.UUID) (*Catalog, error)

	CreateGoal(ctx context.Context, userID uuid.UUID, in GoalInput) (*GoalView, error)
	EditGoal(ctx context.Context, userID, goalID uuid.UUID, in GoalInput) (*GoalView, error)
	DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error
	// ResetToday zeroes the goal's pages read today.
	ResetToday(ctx context.Context, userID, goalID uuid.UUID) (*GoalView, error)

	// AddBook creates a catalog book and chooses it for goalIDs.
	AddBook(ctx context.Context, userID uuid.UUID, title string, pageCount int, goalIDs []uuid.UUID) (*domain.Book, error)
	// AddExistingBook chooses a catalog book for goalIDs.
	AddExistingBook(ctx context.Context, userID, bookID uuid.UUID, goalIDs []uuid.UUID) (*domain.ChosenBook, error)
	// RemoveBook drops a chosen book from goalIDs.
	RemoveBook(ctx context.Context, userID, chosenID uuid.UUID, goalIDs []uuid.UUID) error

	StartBook(ctx context.Context, userID, chosenID uuid.UUID, goalIDs []uuid.UUID) (*domain.ActiveBook, error)
	StartNewBook(ctx context.Context, userID, bookID uuid.UUID, goalIDs []uuid.UUID) (*domain.ActiveBook, error)
	RemoveActiveBook(ctx context.Context, userID, activeID uuid.UUID, goalIDs []uuid.UUID) error
	// UpdatePagesRead records progress in an active book made from goalID.
	// Every goal sharing the record gets the difference on today's counter.
	UpdatePagesRead(ctx context.Context, userID, goalID, activeID uuid.UUID, pagesRead int) (*ProgressResult, error)
	FinishBook(ctx context.Context, userID, activeID uuid.UUID, goalIDs []uuid.UUID) (*domain.ReadBook, error)
	// ReactivateBook moves a read book back to active with pagesRead pages read.
	ReactivateBook(ctx context.Context, userID, readID uuid.UUID, pagesRead int, goalIDs []uuid.UUID) (*domain.ActiveBook, error)
	MoveToChosen(ctx context.Context, userID, activeID uuid.UUID, goalIDs []uuid.UUID) (*domain.ChosenBook, error)
}

// Option configures a GoalService.
type Option func(*goalServiceImpl)

// WithClock replaces the wall clock. Tests use it to pin the current day.
func WithClock(clock func() time.Time) Option {
	return func(s *goalServiceImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the zone whose midnight ends a reading day. UTC by default.
func WithLocation(loc *time.Location) Option {
	return func(s *goalServiceImpl) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithEventEmitter sets the emitter that receives lifecycle events after
// each successful transition.
func WithEventEmitter(emitter events.EventEmitter) Option {
	return func(s *goalServiceImpl) {
		s.emitter = emitter
	}
}

// goalServiceImpl implements the GoalService interface
type goalServiceImpl struct {
	libraries store.LibraryStore
	pacer     pacing.Service
	emitter   events.EventEmitter
	clock     func() time.Time
	location  *time.Location
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewGoalService creates a new GoalService.
// It returns an error if any of the required dependencies are nil.
func NewGoalService(
	libraries store.LibraryStore,
	pacer pacing.Service,
	logger *slog.Logger,
	opts ...Option,
) (GoalService, error) {
	if libraries == nil {
		return nil, NewGoalServiceError("create_service", "library store cannot be nil", domain.ErrValidation)
	}
	if pacer == nil {
		return nil, NewGoalServiceError("create_service", "pacing service cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &goalServiceImpl{
		libraries: libraries,
		pacer:     pacer,
		clock:     time.Now,
		location:  time.UTC,
		logger:    logger.With(slog.String("component", "goal_service")),
		tracer:    otel.Tracer("github.com/phrazzld/pagepace/internal/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// now returns the current instant in the configured zone, so civil dates
// derived from it follow the user's calendar.
func (s *goalServiceImpl) now() time.Time {
	return s.clock().In(s.location)
}

// read loads the user's library outside any lock.
func (s *goalServiceImpl) read(ctx context.Context, op string, userID uuid.UUID) (*domain.Library, error) {
	lib, err := s.libraries.Load(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load library",
			slog.String("operation", op),
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewGoalServiceError(op, "failed to load library", err)
	}
	return lib, nil
}

// mutate runs fn on a freshly loaded snapshot while holding the user's
// library lock, then stores the changeset fn returns. The snapshot handed
// to fn reflects fn's changes once mutate returns nil.
func (s *goalServiceImpl) mutate(
	ctx context.Context,
	op string,
	userID uuid.UUID,
	fn func(lib *domain.Library, now time.Time) (*domain.Changeset, error),
) error {
	ctx, span := s.tracer.Start(ctx, "goal_service."+op,
		trace.WithAttributes(attribute.String("user.id", userID.String())))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now()

	err := s.libraries.Atomic(ctx, userID, func(ctx context.Context, tx store.LibraryStore) error {
		lib, err := tx.Load(ctx, userID)
		if err != nil {
			return err
		}
		cs, err := fn(lib, now)
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.Int("mutation.count", cs.Len()))
		return tx.Apply(ctx, cs)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		if isClientError(err) {
			log.Debug("lifecycle operation rejected",
				slog.String("operation", op),
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		} else {
			log.Error("lifecycle operation failed",
				slog.String("operation", op),
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		}
		return NewGoalServiceError(op, "operation failed", err)
	}

	log.Debug("lifecycle operation committed",
		slog.String("operation", op),
		slog.String("user_id", userID.String()))
	return nil
}

// isClientError reports whether err was caused by the request rather than
// by the system.
func isClientError(err error) bool {
	return domain.IsValidationError(err) ||
		errors.Is(err, domain.ErrRecordNotFound) ||
		errors.Is(err, domain.ErrNotInGoal) ||
		errors.Is(err, domain.ErrNoGoals) ||
		errors.Is(err, ErrDeadlineNotInFuture) ||
		errors.Is(err, ErrDeadlineTooFar)
}

func (s *goalServiceImpl) view(goal *domain.Goal, lib *domain.Library, now time.Time) (*GoalView, error) {
	pace, err := s.pacer.Pace(goal, lib, now)
	if err != nil {
		return nil, err
	}
	return s.goalView(goal, lib, pace), nil
}

func checkDeadline(deadline civil.Date, now time.Time) error {
	if !deadline.IsValid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidDeadline, deadline)
	}
	if !deadline.After(civil.DateOf(now)) {
		return ErrDeadlineNotInFuture
	}
	if deadline.Year >= maxDeadlineYear {
		return ErrDeadlineTooFar
	}
	return nil
}

// Dashboard implements GoalService.Dashboard.
func (s *goalServiceImpl) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	lib, err := s.read(ctx, "dashboard", userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	dashboard := &Dashboard{Today: civil.DateOf(now)}
	for _, goal := range lib.SortedGoals() {
		view, err := s.view(goal, lib, now)
		if err != nil {
			return nil, NewGoalServiceError("dashboard", "failed to compute pace", err)
		}
		dashboard.Goals = append(dashboard.Goals, view)
	}
	return dashboard, nil
}

// Goal implements GoalService.Goal.
func (s *goalServiceImpl) Goal(ctx context.Context, userID, goalID uuid.UUID) (*GoalView, error) {
	lib, err := s.read(ctx, "get_goal", userID)
	if err != nil {
		return nil, err
	}

	goal := lib.Goal(goalID)
	if goal == nil {
		return nil, NewGoalServiceError("get_goal", "goal not found",
			fmt.Errorf("%w: goal %s", domain.ErrRecordNotFound, goalID))
	}
	view, err := s.view(goal, lib, s.now())
	if err != nil {
		return nil, NewGoalServiceError("get_goal", "failed to compute pace", err)
	}
	return view, nil
}

// Catalog implements GoalService.Catalog.
func (s *goalServiceImpl) Catalog(ctx context.Context, userID uuid.UUID) (*Catalog, error) {
	lib, err := s.read(ctx, "catalog", userID)
	if err != nil {
		return nil, err
	}
	return &Catalog{Books: lib.SortedBooks()}, nil
}

// CreateGoal implements GoalService.CreateGoal.
func (s *goalServiceImpl) CreateGoal(ctx context.Context, userID uuid.UUID, in GoalInput) (*GoalView, error) {
	var (
		goal *domain.Goal
		lib  *domain.Library
		at   time.Time
	)
	err := s.mutate(ctx, "create_goal", userID, func(l *domain.Library, now time.Time) (*domain.Changeset, error) {
		if err := checkDeadline(in.Deadline, now); err != nil {
			return nil, err
		}
		g, cs, err := lifecycle.CreateGoal(l, userID, in.NumberOfBooks, in.AvgPageCount, in.Deadline, now)
		if err != nil {
			return nil, err
		}
		goal, lib, at = g, l, now
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(goal, lib, at)
}

// EditGoal implements GoalService.EditGoal.
func (s *goalServiceImpl) EditGoal(ctx context.Context, userID, goalID uuid.UUID, in GoalInput) (*GoalView, error) {
	var (
		goal *domain.Goal
		lib  *domain.Library
		at   time.Time
	)
	err := s.mutate(ctx, "edit_goal", userID, func(l *domain.Library, now time.Time) (*domain.Changeset, error) {
		if err := checkDeadline(in.Deadline, now); err != nil {
			return nil, err
		}
		g, cs, err := lifecycle.EditGoal(l, goalID, in.NumberOfBooks, in.AvgPageCount, in.Deadline)
		if err != nil {
			return nil, err
		}
		goal, lib, at = g, l, now
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(goal, lib, at)
}

// DeleteGoal implements GoalService.DeleteGoal.
func (s *goalServiceImpl) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	return s.mutate(ctx, "delete_goal", userID, func(l *domain.Library, _ time.Time) (*domain.Changeset, error) {
		return lifecycle.DeleteGoal(l, goalID)
	})
}

// ResetToday implements GoalService.ResetToday.
func (s *goalServiceImpl) ResetToday(ctx context.Context, userID, goalID uuid.UUID) (*GoalView, error) {
	var (
		lib *domain.Library
		at  time.Time
	)
	err := s.mutate(ctx, "reset_today", userID, func(l *domain.Library, now time.Time) (*domain.Changeset, error) {
		cs, err := lifecycle.ResetToday(l, goalID, now)
		if err != nil {
			return nil, err
		}
		lib, at = l, now
		return cs, nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(lib.Goal(goalID), lib, at)
}

// AddBook implements GoalService.AddBook.
func (s *goalServiceImpl) AddBook(
	ctx context.Context,
	userID uuid.UUID,
	title string,
	pageCount int,
	goalIDs []uuid.UUID,
) (*domain.Book, error) {
	var book *domain.Book
	err := s.mutate(ctx, "add_book", userID, func(l *domain.Library, _ time.Time) (*domain.Changeset, error) {
		b, cs, err := lifecycle.AddNewBook(l, userID, title, pageCount, goalIDs)
		book = b
		return cs, err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// AddExistingBook implements GoalService.AddExistingBook.
func (s *goalServiceImpl) AddExistingBook(
	ctx context.Context,
	userID, bookID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ChosenBook, error) {
	var chosen *domain.ChosenBook
	err := s.mutate(ctx, "add_existing_book", userID, func(l *domain.Library, _ time.Time) (*domain.Changeset, error) {
		c, cs, err := lifecycle.AddExistingBookToGoal(l, bookID, goalIDs)
		chosen = c
		return cs, err
	})
	if err != nil {
		return nil, err
	}
	return chosen, nil
}

// RemoveBook implements GoalService.RemoveBook.
func (s *goalServiceImpl) RemoveBook(ctx context.Context, userID, chosenID uuid.UUID, goalIDs []uuid.UUID) error {
	return s.mutate(ctx, "remove_book", userID, func(l *domain.Library, _ time.Time) (*domain.Changeset, error) {
		return lifecycle.RemoveChosenBook(l, chosenID, goalIDs)
	})
}

// StartBook implements GoalService.StartBook.
func (s *goalServiceImpl) StartBook(
	ctx context.Context,
	userID, chosenID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ActiveBook, error) {
	var (
		active *domain.ActiveBook
		lib    *domain.Library
	)
	err := s.mutate(ctx, "start_book", userID, func(l *domain.Library, now time.Time) (*domain.Changeset, error) {
		a, cs, err := lifecycle.StartBook(l, chosenID, goalIDs, now)
		active, lib = a, l
		return cs, err
	})
	if err != nil {
		return nil, err
	}

	s.emitBook(ctx, events.TypeBookStarted, userID, active.ID, active.BookID, active.GoalIDs, lib)
	return active, nil
}

// StartNewBook implements GoalService.StartNewBook.
func (s *goalServiceImpl) StartNewBook(
	ctx context.Context,
	userID, bookID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ActiveBook, error) {
	var (
		active *domain.ActiveBook
		lib    *domain.Library
	)
	err := s.mutate(ctx, "start_new_book", userID, func(l *domain.Library, now time.Time) (*domain.Changeset, error) {
		a, cs, err := lifecycle.StartNewBook(l, bookID, goalIDs, now)
		active, lib = a, l
		return cs, err
	})
	if err != nil {
		return nil, err
	}

	s.emitBook(ctx, events.TypeBookStarted, userID, active.ID, active.BookID, active.GoalIDs, lib)
	return active, nil
}

// RemoveActiveBook implements GoalService.RemoveActiveBook.
func (s *goalServiceImpl) RemoveActiveBook(ctx context.Context, userID, activeID uuid.UUID, goalIDs []uuid.UUID) error {
	return s.mutate(ctx, "remove_active_book", userID, func(l *domain.Library, _ time.Time) (*domain.Changeset, error) {
		return lifecycle.RemoveActiveBook(l, activeID, goalIDs)
	})
}

// UpdatePagesRead implements GoalService.UpdatePagesRead.
func (s *goalServiceImpl) UpdatePagesRead(
	ctx context.Context,
	userID, goalID, activeID uuid.UUID,
	pagesRead int,
) (*ProgressResult, error) {
	var (
		result ProgressResult
		lib    *domain.Library
		at     time.Time
	)
	err := s.mutate(ctx, "update_pages_read", userID, func(l *domain.Library, now time.Time) (*domain.Changeset, error) {
		delta, cs, err := lifecycle.UpdatePagesRead(l, s.pacer, goalID, activeID, pagesRead, now)
		if err != nil {
			return nil, err
		}
		result.Delta = delta
		result.Active = l.ActiveBook(activeID)
		lib, at = l, now
		return cs, nil
	})
	if err != nil {
		return nil, err
	}

	view, err := s.view(lib.Goal(goalID), lib, at)
	if err != nil {
		return nil, NewGoalServiceError("update_pages_read", "failed to compute pace", err)
	}
	result.Goal = view
	return &result, nil
}

// FinishBook implements GoalService.FinishBook. Goals whose last missing
// book this was also emit goal.reached.
func (s *goalServiceImpl) FinishBook(
	ctx context.Context,
	userID, activeID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ReadBook, error) {
	var (
		read    *domain.ReadBook
		lib     *domain.Library
		reached []*domain.Goal
	)
	err := s.mutate(ctx, "finish_book", userID, func(l *domain.Library, now time.Time) (*domain.Changeset, error) {
		before := make(map[uuid.UUID]int)
		for _, id := range goalIDs {
			if g := l.Goal(id); g != nil {
				before[id] = g.BooksLeft()
			}
		}

		r, cs, err := lifecycle.FinishBook(l, activeID, goalIDs, now)
		if err != nil {
			return nil, err
		}
		for _, id := range domain.NewIDSet(goalIDs...) {
			if g := l.Goal(id); g != nil && before[id] > 0 && g.BooksLeft() <= 0 {
				reached = append(reached, g)
			}
		}
		read, lib = r, l
		return cs, nil
	})
	if err != nil {
		return nil, err
	}

	s.emitBook(ctx, events.TypeBookFinished, userID, read.ID, read.BookID, read.GoalIDs, lib)
	for _, goal := range reached {
		s.emit(ctx, events.TypeGoalReached, userID, events.GoalPayload{
			GoalID:    goal.ID,
			Title:     goal.Title(lib),
			BooksRead: goal.ReadBooks.Len(),
		})
	}
	return read, nil
}

// ReactivateBook implements GoalService.ReactivateBook.
func (s *goalServiceImpl) ReactivateBook(
	ctx context.Context,
	userID, readID uuid.UUID,
	pagesRead int,
	goalIDs []uuid.UUID,
) (*domain.ActiveBook, error) {
	var (
		active *domain.ActiveBook
		lib    *domain.Library
	)
	err := s.mutate(ctx, "reactivate_book", userID, func(l *domain.Library, _ time.Time) (*domain.Changeset, error) {
		a, cs, err := lifecycle.ReactivateBook(l, readID, pagesRead, goalIDs)
		active, lib = a, l
		return cs, err
	})
	if err != nil {
		return nil, err
	}

	s.emitBook(ctx, events.TypeBookReactivated, userID, active.ID, active.BookID, active.GoalIDs, lib)
	return active, nil
}

// MoveToChosen implements GoalService.MoveToChosen.
func (s *goalServiceImpl) MoveToChosen(
	ctx context.Context,
	userID, activeID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ChosenBook, error) {
	var chosen *domain.ChosenBook
	err := s.mutate(ctx, "move_to_chosen", userID, func(l *domain.Library, _ time.Time) (*domain.Changeset, error) {
		c, cs, err := lifecycle.MoveBookToChosen(l, activeID, goalIDs)
		chosen = c
		return cs, err
	})
	if err != nil {
		return nil, err
	}
	return chosen, nil
}

func (s *goalServiceImpl) emitBook(
	ctx context.Context,
	eventType string,
	userID, recordID, bookID uuid.UUID,
	goalIDs domain.IDSet,
	lib *domain.Library,
) {
	payload := events.BookPayload{
		RecordID: recordID,
		BookID:   bookID,
		GoalIDs:  goalIDs.Clone(),
	}
	if book := lib.Book(bookID); book != nil {
		payload.Title = book.Title
	}
	s.emit(ctx, eventType, userID, payload)
}

// emit publishes an event for a committed change. Failures are logged and
// never undo the change.
func (s *goalServiceImpl) emit(ctx context.Context, eventType string, userID uuid.UUID, payload any) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewLifecycleEvent(eventType, userID, payload)
	if err != nil {
		log.Error("failed to build lifecycle event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("lifecycle event handler failed",
			slog.String("event_type", eventType),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
