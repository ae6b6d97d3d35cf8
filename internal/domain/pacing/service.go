package pacing

import (
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/phrazzld/pagepace/internal/domain"
)

// Common errors
var (
	ErrNilGoal   = errors.New("goal cannot be nil")
	ErrNilLookup = errors.New("lookup cannot be nil")
	ErrNilRecord = errors.New("active book cannot be nil")
)

// Status summarizes where a goal stands on a given day.
type Status string

// Possible pacing statuses
const (
	// StatusOnTrack means today's quota is not met yet, or there is no
	// quota because every remaining page is read.
	StatusOnTrack Status = "on_track"
	// StatusDoneForToday means today's quota is met.
	StatusDoneForToday Status = "done_for_today"
	// StatusGoalReached means enough books are read.
	StatusGoalReached Status = "goal_reached"
	// StatusOverdue means the deadline is today or passed with books left.
	StatusOverdue Status = "overdue"
)

// Pace holds every derived number for one goal at one instant.
type Pace struct {
	Today                   civil.Date `json:"today"`
	DaysLeft                int        `json:"days_left"`
	BooksLeft               int        `json:"books_left"`
	PagesLeftInActiveBooks  int        `json:"pages_left_in_active_books"`
	PagesLeftInChosenBooks  int        `json:"pages_left_in_chosen_books"`
	PagesLeftInUnknownBooks int        `json:"pages_left_in_unknown_books"`
	TotalPagesLeft          int        `json:"total_pages_left"`
	PagesToRead             int        `json:"pages_to_read"`
	PagesPerDay             int        `json:"pages_per_day"`
	PagesPerDayTomorrow     int        `json:"pages_per_day_tomorrow"`
	PagesReadToday          int        `json:"pages_read_today"`
	PagesLeftToday          int        `json:"pages_left_today"`
	Status                  Status     `json:"status"`
}

// Service defines the interface for pacing computations. Every method takes
// the current time explicitly and reads the clock nowhere else.
type Service interface {
	// Pace computes the derived numbers of goal at now.
	Pace(goal *domain.Goal, lookup domain.Lookup, now time.Time) (*Pace, error)

	// ChangePagesReadInBook records that active now has newPagesRead pages
	// read. The difference from the stored value is added to the goal's
	// counter for today, then the record is updated with clamping. The old
	// value is the baseline, so callers must pass a fresh record each time.
	// It returns the delta that was applied.
	ChangePagesReadInBook(
		goal *domain.Goal,
		active *domain.ActiveBook,
		book *domain.Book,
		newPagesRead int,
		now time.Time,
	) (int, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new pacing service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new pacing service with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// Pace implements the Service interface.
func (s *defaultService) Pace(goal *domain.Goal, lookup domain.Lookup, now time.Time) (*Pace, error) {
	if goal == nil {
		return nil, ErrNilGoal
	}
	if lookup == nil {
		return nil, ErrNilLookup
	}

	today, pagesReadToday := goal.Today(now)
	p := &Pace{
		Today:                   today,
		DaysLeft:                DaysLeft(goal, now),
		BooksLeft:               goal.BooksLeft(),
		PagesLeftInActiveBooks:  PagesLeftInActiveBooks(goal, lookup),
		PagesLeftInChosenBooks:  PagesLeftInChosenBooks(goal, lookup),
		PagesLeftInUnknownBooks: PagesLeftInUnknownBooks(goal),
		PagesReadToday:          pagesReadToday,
	}
	p.TotalPagesLeft = p.PagesLeftInActiveBooks + p.PagesLeftInChosenBooks + p.PagesLeftInUnknownBooks
	p.PagesToRead = rebalance(p.TotalPagesLeft, p.BooksLeft, goal.ActiveBooks.Len())
	p.PagesPerDay = PagesPerDay(p.PagesToRead, p.DaysLeft, s.params.MinDaysLeft)
	p.PagesPerDayTomorrow = PagesPerDay(p.PagesToRead, p.DaysLeft-1, s.params.MinDaysLeft)
	p.PagesLeftToday = PagesLeftToday(p.PagesPerDay, p.PagesReadToday)
	p.Status = status(p)

	return p, nil
}

func status(p *Pace) Status {
	switch {
	case p.BooksLeft <= 0:
		return StatusGoalReached
	case p.DaysLeft <= 0:
		return StatusOverdue
	case p.PagesLeftToday == 0 && p.PagesPerDay > 0:
		return StatusDoneForToday
	default:
		return StatusOnTrack
	}
}

// ChangePagesReadInBook implements the Service interface.
func (s *defaultService) ChangePagesReadInBook(
	goal *domain.Goal,
	active *domain.ActiveBook,
	book *domain.Book,
	newPagesRead int,
	now time.Time,
) (int, error) {
	if goal == nil {
		return 0, ErrNilGoal
	}
	if active == nil {
		return 0, ErrNilRecord
	}

	delta := newPagesRead - active.PagesRead
	goal.AddPagesReadToday(delta, now)
	active.SetPagesRead(newPagesRead, book)

	return delta, nil
}
