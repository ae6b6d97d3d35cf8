package lifecycle

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
	"github.com/phrazzld/pagepace/internal/domain/pacing"
)

// AddNewBook creates a catalog entry and chooses it for goalIDs.
func AddNewBook(
	lib *domain.Library,
	userID uuid.UUID,
	title string,
	pageCount int,
	goalIDs []uuid.UUID,
) (*domain.Book, *domain.Changeset, error) {
	if _, err := goalsFor(lib, goalIDs); err != nil {
		return nil, nil, err
	}

	book, err := domain.NewBook(userID, title, pageCount)
	if err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	lib.Put(book)
	cs.Create(book)

	if _, err := attachChosen(lib, cs, userID, book.ID, goalIDs); err != nil {
		return nil, nil, err
	}
	return book, cs, nil
}

// AddExistingBookToGoal chooses a catalog book for goalIDs. A chosen record
// that already exists for the book is shared rather than duplicated.
func AddExistingBookToGoal(
	lib *domain.Library,
	bookID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ChosenBook, *domain.Changeset, error) {
	book := lib.Book(bookID)
	if book == nil {
		return nil, nil, fmt.Errorf("%w: book %s", domain.ErrRecordNotFound, bookID)
	}
	if _, err := goalsFor(lib, goalIDs); err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	chosen, err := attachChosen(lib, cs, book.UserID, book.ID, goalIDs)
	if err != nil {
		return nil, nil, err
	}
	return chosen, cs, nil
}

// StartBook moves a chosen book to active for goalIDs. The new record
// starts today with no pages read.
func StartBook(
	lib *domain.Library,
	chosenID uuid.UUID,
	goalIDs []uuid.UUID,
	now time.Time,
) (*domain.ActiveBook, *domain.Changeset, error) {
	chosen := lib.ChosenBook(chosenID)
	if chosen == nil {
		return nil, nil, fmt.Errorf("%w: chosen book %s", domain.ErrRecordNotFound, chosenID)
	}
	if err := checkMembers(lib, domain.KindChosenBook, chosenID, goalIDs); err != nil {
		return nil, nil, err
	}

	active, err := domain.NewActiveBook(chosen.UserID, chosen.BookID, civil.DateOf(now), goalIDs...)
	if err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	detach(lib, cs, domain.KindChosenBook, chosen, goalIDs)
	attach(lib, cs, domain.KindActiveBook, active, goalIDs)
	return active, cs, nil
}

// StartNewBook starts reading a catalog book directly, without a chosen
// record. The same book may be started more than once.
func StartNewBook(
	lib *domain.Library,
	bookID uuid.UUID,
	goalIDs []uuid.UUID,
	now time.Time,
) (*domain.ActiveBook, *domain.Changeset, error) {
	book := lib.Book(bookID)
	if book == nil {
		return nil, nil, fmt.Errorf("%w: book %s", domain.ErrRecordNotFound, bookID)
	}
	if _, err := goalsFor(lib, goalIDs); err != nil {
		return nil, nil, err
	}

	active, err := domain.NewActiveBook(book.UserID, book.ID, civil.DateOf(now), goalIDs...)
	if err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	attach(lib, cs, domain.KindActiveBook, active, goalIDs)
	return active, cs, nil
}

// FinishBook moves an active book to read for goalIDs. The read record
// keeps the original start date and ends today.
func FinishBook(
	lib *domain.Library,
	activeID uuid.UUID,
	goalIDs []uuid.UUID,
	now time.Time,
) (*domain.ReadBook, *domain.Changeset, error) {
	active := lib.ActiveBook(activeID)
	if active == nil {
		return nil, nil, fmt.Errorf("%w: active book %s", domain.ErrRecordNotFound, activeID)
	}
	if err := checkMembers(lib, domain.KindActiveBook, activeID, goalIDs); err != nil {
		return nil, nil, err
	}

	end := civil.DateOf(now)
	if end.Before(active.StartDate) {
		end = active.StartDate
	}

	read, err := domain.NewReadBook(active.UserID, active.BookID, active.StartDate, end, goalIDs...)
	if err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	detach(lib, cs, domain.KindActiveBook, active, goalIDs)
	attach(lib, cs, domain.KindReadBook, read, goalIDs)
	return read, cs, nil
}

// ReactivateBook moves a read book back to active for goalIDs, reopened at
// pageCount pages read and with its original start date.
func ReactivateBook(
	lib *domain.Library,
	readID uuid.UUID,
	pageCount int,
	goalIDs []uuid.UUID,
) (*domain.ActiveBook, *domain.Changeset, error) {
	read := lib.ReadBook(readID)
	if read == nil {
		return nil, nil, fmt.Errorf("%w: read book %s", domain.ErrRecordNotFound, readID)
	}
	if err := checkMembers(lib, domain.KindReadBook, readID, goalIDs); err != nil {
		return nil, nil, err
	}

	active, err := domain.NewActiveBook(read.UserID, read.BookID, read.StartDate, goalIDs...)
	if err != nil {
		return nil, nil, err
	}
	active.SetPagesRead(pageCount, lib.Book(read.BookID))

	cs := domain.NewChangeset()
	detach(lib, cs, domain.KindReadBook, read, goalIDs)
	attach(lib, cs, domain.KindActiveBook, active, goalIDs)
	return active, cs, nil
}

// MoveBookToChosen abandons progress on an active book for goalIDs and
// keeps the book assigned as chosen.
func MoveBookToChosen(
	lib *domain.Library,
	activeID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ChosenBook, *domain.Changeset, error) {
	active := lib.ActiveBook(activeID)
	if active == nil {
		return nil, nil, fmt.Errorf("%w: active book %s", domain.ErrRecordNotFound, activeID)
	}
	if err := checkMembers(lib, domain.KindActiveBook, activeID, goalIDs); err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	detach(lib, cs, domain.KindActiveBook, active, goalIDs)
	chosen, err := attachChosen(lib, cs, active.UserID, active.BookID, goalIDs)
	if err != nil {
		return nil, nil, err
	}
	return chosen, cs, nil
}

// RemoveChosenBook drops a chosen book from goalIDs.
func RemoveChosenBook(lib *domain.Library, chosenID uuid.UUID, goalIDs []uuid.UUID) (*domain.Changeset, error) {
	chosen := lib.ChosenBook(chosenID)
	if chosen == nil {
		return nil, fmt.Errorf("%w: chosen book %s", domain.ErrRecordNotFound, chosenID)
	}
	if err := checkMembers(lib, domain.KindChosenBook, chosenID, goalIDs); err != nil {
		return nil, err
	}

	cs := domain.NewChangeset()
	detach(lib, cs, domain.KindChosenBook, chosen, goalIDs)
	return cs, nil
}

// RemoveActiveBook drops an active book from goalIDs. Progress is lost
// once no goal refers to the record any more.
func RemoveActiveBook(lib *domain.Library, activeID uuid.UUID, goalIDs []uuid.UUID) (*domain.Changeset, error) {
	active := lib.ActiveBook(activeID)
	if active == nil {
		return nil, fmt.Errorf("%w: active book %s", domain.ErrRecordNotFound, activeID)
	}
	if err := checkMembers(lib, domain.KindActiveBook, activeID, goalIDs); err != nil {
		return nil, err
	}

	cs := domain.NewChangeset()
	detach(lib, cs, domain.KindActiveBook, active, goalIDs)
	return cs, nil
}

// UpdatePagesRead records progress in an active book made from goalID.
// pacer applies the change to goalID, then the same delta is credited to
// every other goal sharing the record. It returns the applied delta.
func UpdatePagesRead(
	lib *domain.Library,
	pacer pacing.Service,
	goalID, activeID uuid.UUID,
	newPagesRead int,
	now time.Time,
) (int, *domain.Changeset, error) {
	goal := lib.Goal(goalID)
	if goal == nil {
		return 0, nil, fmt.Errorf("%w: goal %s", domain.ErrRecordNotFound, goalID)
	}
	active := lib.ActiveBook(activeID)
	if active == nil {
		return 0, nil, fmt.Errorf("%w: active book %s", domain.ErrRecordNotFound, activeID)
	}
	if !goal.Holds(domain.KindActiveBook, activeID) {
		return 0, nil, fmt.Errorf("%w: active book %s in goal %s", domain.ErrNotInGoal, activeID, goalID)
	}

	delta, err := pacer.ChangePagesReadInBook(goal, active, lib.Book(active.BookID), newPagesRead, now)
	if err != nil {
		return 0, nil, err
	}

	cs := domain.NewChangeset()
	cs.Update(goal)
	for _, id := range active.GoalIDs {
		if id == goalID {
			continue
		}
		if other := lib.Goal(id); other != nil {
			other.AddPagesReadToday(delta, now)
			cs.Update(other)
		}
	}
	cs.Update(active)
	return delta, cs, nil
}
