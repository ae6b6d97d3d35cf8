package service

import (
	"cloud.google.com/go/civil"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/domain/pacing"
)

// ChosenView pairs a chosen record with its catalog entry.
type ChosenView struct {
	Record *domain.ChosenBook
	Book   *domain.Book
}

// ActiveView pairs an active record with its catalog entry.
type ActiveView struct {
	Record    *domain.ActiveBook
	Book      *domain.Book
	PagesLeft int
}

// ReadView pairs a read record with its catalog entry.
type ReadView struct {
	Record *domain.ReadBook
	Book   *domain.Book
}

// GoalView is a goal as the dashboard shows it: its pacing at one instant
// and the records it holds. Book is nil for a record whose book is gone.
type GoalView struct {
	Goal        *domain.Goal
	Title       string
	Pace        *pacing.Pace
	ChosenBooks []ChosenView
	ActiveBooks []ActiveView
	ReadBooks   []ReadView
}

// Dashboard lists every goal of a user, oldest first.
type Dashboard struct {
	Today civil.Date
	Goals []*GoalView
}

// Catalog lists every book a user has added, by title.
type Catalog struct {
	Books []*domain.Book
}

// ProgressResult is the outcome of recording pages read in an active book.
type ProgressResult struct {
	Active *domain.ActiveBook
	// Delta is the change applied to today's counter of every goal sharing
	// the record.
	Delta int
	// Goal is the goal the update was made from.
	Goal *GoalView
}

func (s *goalServiceImpl) goalView(goal *domain.Goal, lib *domain.Library, pace *pacing.Pace) *GoalView {
	view := &GoalView{
		Goal:  goal,
		Title: goal.Title(lib),
		Pace:  pace,
	}
	for _, id := range goal.ChosenBooks {
		if c := lib.ChosenBook(id); c != nil {
			view.ChosenBooks = append(view.ChosenBooks, ChosenView{Record: c, Book: lib.Book(c.BookID)})
		}
	}
	for _, id := range goal.ActiveBooks {
		if a := lib.ActiveBook(id); a != nil {
			book := lib.Book(a.BookID)
			view.ActiveBooks = append(view.ActiveBooks, ActiveView{Record: a, Book: book, PagesLeft: a.PagesLeft(book)})
		}
	}
	for _, id := range goal.ReadBooks {
		if r := lib.ReadBook(id); r != nil {
			view.ReadBooks = append(view.ReadBooks, ReadView{Record: r, Book: lib.Book(r.BookID)})
		}
	}
	return view
}
