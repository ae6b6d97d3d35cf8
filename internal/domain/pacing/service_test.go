package pacing

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pace(t *testing.T, f *fixture, now time.Time) *Pace {
	t.Helper()
	p, err := NewDefaultService().Pace(f.goal, f.lib, now)
	require.NoError(t, err)
	return p
}

// finishActive moves an active record of the fixture goal to read.
func (f *fixture) finishActive(t *testing.T, index int) {
	t.Helper()
	activeID := f.goal.ActiveBooks[index]
	active := f.lib.ActiveBook(activeID)
	f.goal.ActiveBooks = f.goal.ActiveBooks.Without(activeID)
	delete(f.lib.ActiveBooks, activeID)

	read := f.finish(t, 0)
	read.BookID = active.BookID
}

func TestPaceScenarios(t *testing.T) {
	t.Parallel()

	t.Run("twelve books over a full year", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		p := pace(t, f, startOf2024)
		assert.Equal(t, 365, p.DaysLeft)
		assert.Equal(t, 12*350, p.PagesToRead)
		assert.Equal(t, 12, p.PagesPerDay)
		assert.Equal(t, 12, p.PagesLeftToday)
		assert.Equal(t, StatusOnTrack, p.Status)
	})

	t.Run("starting a short book lowers the pace", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		f.start(t, 100, 0)
		assert.Equal(t, 11, pace(t, f, startOf2024).PagesPerDay)
	})

	t.Run("more active books than books left", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 2, 350)
		f.start(t, 500, 0)
		f.start(t, 500, 0)
		f.start(t, 500, 0)
		p := pace(t, f, startOf2024)
		assert.Equal(t, 2, p.BooksLeft)
		assert.Equal(t, 1500, p.TotalPagesLeft)
		assert.Equal(t, 1000, p.PagesToRead)
		assert.Equal(t, 3, p.PagesPerDay)
	})

	t.Run("six months later", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		p := pace(t, f, startOf2024.AddDate(0, 6, 0))
		assert.Equal(t, 183, p.DaysLeft)
		assert.Equal(t, 23, p.PagesPerDay)
	})

	t.Run("choosing a long book raises the pace", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		f.choose(t, 1000)
		assert.Equal(t, 14, pace(t, f, startOf2024).PagesPerDay)
	})

	t.Run("starting a short and then a long book", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		f.start(t, 100, 0)
		assert.Equal(t, 11, pace(t, f, startOf2024).PagesPerDay)
		f.start(t, 1000, 0)
		assert.Equal(t, 13, pace(t, f, startOf2024).PagesPerDay)
	})

	t.Run("fully read but unfinished book has no quota", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 1, 350)
		f.start(t, 100, 100)
		p := pace(t, f, startOf2024)
		assert.Equal(t, 1, p.BooksLeft)
		assert.Zero(t, p.PagesPerDay)
		assert.Zero(t, p.PagesLeftToday)
		assert.Equal(t, StatusOnTrack, p.Status)
	})

	t.Run("finishing books", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		f.start(t, 500, 0)
		f.start(t, 500, 0)

		f.finishActive(t, 1)
		assert.Equal(t, 11, pace(t, f, startOf2024).PagesPerDay)

		f.finishActive(t, 0)
		assert.Equal(t, 10, pace(t, f, startOf2024).PagesPerDay)
	})
}

func TestChangePagesReadInBook(t *testing.T) {
	t.Parallel()
	svc := NewDefaultService()

	t.Run("last absolute value wins within one day", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		active := f.start(t, 500, 0)
		book := f.lib.Book(active.BookID)

		assert.Equal(t, 12, pace(t, f, startOf2024).PagesLeftToday)

		steps := []struct {
			pagesRead     int
			wantDelta     int
			wantReadToday int
			wantLeftToday int
		}{
			{pagesRead: 5, wantDelta: 5, wantReadToday: 5, wantLeftToday: 7},
			{pagesRead: 10, wantDelta: 5, wantReadToday: 10, wantLeftToday: 2},
			{pagesRead: 8, wantDelta: -2, wantReadToday: 8, wantLeftToday: 4},
			{pagesRead: 12, wantDelta: 4, wantReadToday: 12, wantLeftToday: 0},
		}

		for _, step := range steps {
			delta, err := svc.ChangePagesReadInBook(f.goal, active, book, step.pagesRead, startOf2024)
			require.NoError(t, err)
			assert.Equal(t, step.wantDelta, delta)
			assert.Equal(t, step.pagesRead, active.PagesRead)

			p := pace(t, f, startOf2024)
			assert.Equal(t, step.wantReadToday, p.PagesReadToday)
			assert.Equal(t, step.wantLeftToday, p.PagesLeftToday)
		}
		assert.Equal(t, StatusDoneForToday, pace(t, f, startOf2024).Status)
	})

	t.Run("left today never below zero", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		active := f.start(t, 500, 0)

		_, err := svc.ChangePagesReadInBook(f.goal, active, f.lib.Book(active.BookID), 100, startOf2024)
		require.NoError(t, err)

		p := pace(t, f, startOf2024)
		assert.Equal(t, 100, p.PagesReadToday)
		assert.Equal(t, 0, p.PagesLeftToday)
	})

	t.Run("a new day resets the counter but not the book", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		active := f.start(t, 500, 0)
		book := f.lib.Book(active.BookID)

		_, err := svc.ChangePagesReadInBook(f.goal, active, book, 100, startOf2024)
		require.NoError(t, err)
		require.Equal(t, 0, pace(t, f, startOf2024).PagesLeftToday)

		twoDaysLater := startOf2024.AddDate(0, 0, 2)
		p := pace(t, f, twoDaysLater)
		assert.Equal(t, 0, p.PagesReadToday)
		assert.Equal(t, 12, p.PagesLeftToday)
		assert.Equal(t, 100, active.PagesRead, "book progress survives the reset")
	})

	t.Run("correcting downward on a new day cannot exceed the quota", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		active := f.start(t, 500, 0)
		book := f.lib.Book(active.BookID)

		_, err := svc.ChangePagesReadInBook(f.goal, active, book, 100, startOf2024)
		require.NoError(t, err)

		twoDaysLater := startOf2024.AddDate(0, 0, 2)
		_, err = svc.ChangePagesReadInBook(f.goal, active, book, 50, twoDaysLater)
		require.NoError(t, err)

		p := pace(t, f, twoDaysLater)
		assert.Equal(t, 0, p.PagesReadToday)
		assert.Equal(t, 12, p.PagesLeftToday)
		assert.Equal(t, civil.DateOf(twoDaysLater), f.goal.TodaysDate)
	})

	t.Run("nil inputs", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		_, err := svc.ChangePagesReadInBook(nil, nil, nil, 1, startOf2024)
		assert.ErrorIs(t, err, ErrNilGoal)
		_, err = svc.ChangePagesReadInBook(f.goal, nil, nil, 1, startOf2024)
		assert.ErrorIs(t, err, ErrNilRecord)
	})
}

func TestPaceStatus(t *testing.T) {
	t.Parallel()

	t.Run("goal reached", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 1, 350)
		f.finish(t, 200)
		p := pace(t, f, startOf2024)
		assert.Equal(t, 0, p.BooksLeft)
		assert.Equal(t, StatusGoalReached, p.Status)
	})

	t.Run("overdue uses the minimum day", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 2, 300)
		p := pace(t, f, time.Date(2025, 1, 5, 12, 0, 0, 0, time.UTC))
		assert.Equal(t, -5, p.DaysLeft)
		assert.Equal(t, 600, p.PagesPerDay)
		assert.Equal(t, 600, p.PagesPerDayTomorrow)
		assert.Equal(t, StatusOverdue, p.Status)
	})

	t.Run("tomorrow spreads over one day less", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, 12, 350)
		p := pace(t, f, startOf2024)
		assert.Equal(t, 12, p.PagesPerDayTomorrow) // 4200 / 364 = 11.5
	})
}

func TestServiceValidation(t *testing.T) {
	t.Parallel()

	_, err := NewServiceWithParams(&Params{MinDaysLeft: 0})
	assert.ErrorIs(t, err, ErrInvalidMinDaysLeft)

	svc, err := NewServiceWithParams(&Params{MinDaysLeft: 7})
	require.NoError(t, err)

	f := newFixture(t, 1, 700)
	p, err := svc.Pace(f.goal, f.lib, time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 100, p.PagesPerDay)

	_, err = svc.Pace(nil, f.lib, startOf2024)
	assert.ErrorIs(t, err, ErrNilGoal)
	_, err = svc.Pace(f.goal, nil, startOf2024)
	assert.ErrorIs(t, err, ErrNilLookup)
}
