package lifecycle

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
)

// CreateGoal adds a new goal without books.
func CreateGoal(
	lib *domain.Library,
	userID uuid.UUID,
	numberOfBooks, avgPageCount int,
	deadline civil.Date,
	now time.Time,
) (*domain.Goal, *domain.Changeset, error) {
	goal, err := domain.NewGoal(userID, numberOfBooks, avgPageCount, deadline, now)
	if err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	lib.Put(goal)
	cs.Create(goal)
	return goal, cs, nil
}

// EditGoal changes the planning inputs of a goal.
func EditGoal(
	lib *domain.Library,
	goalID uuid.UUID,
	numberOfBooks, avgPageCount int,
	deadline civil.Date,
) (*domain.Goal, *domain.Changeset, error) {
	goal := lib.Goal(goalID)
	if goal == nil {
		return nil, nil, fmt.Errorf("%w: goal %s", domain.ErrRecordNotFound, goalID)
	}
	if err := goal.Edit(numberOfBooks, avgPageCount, deadline); err != nil {
		return nil, nil, err
	}

	cs := domain.NewChangeset()
	cs.Update(goal)
	return goal, cs, nil
}

// ResetToday zeroes a goal's counter for the day of now.
func ResetToday(lib *domain.Library, goalID uuid.UUID, now time.Time) (*domain.Changeset, error) {
	goal := lib.Goal(goalID)
	if goal == nil {
		return nil, fmt.Errorf("%w: goal %s", domain.ErrRecordNotFound, goalID)
	}

	goal.ResetToday(now)
	cs := domain.NewChangeset()
	cs.Update(goal)
	return cs, nil
}

// DeleteGoal removes a goal and its membership in every record. Records no
// other goal refers to are deleted; catalog books are kept.
func DeleteGoal(lib *domain.Library, goalID uuid.UUID) (*domain.Changeset, error) {
	goal := lib.Goal(goalID)
	if goal == nil {
		return nil, fmt.Errorf("%w: goal %s", domain.ErrRecordNotFound, goalID)
	}

	cs := domain.NewChangeset()
	goals := []uuid.UUID{goalID}
	for _, id := range goal.ChosenBooks {
		if chosen := lib.ChosenBook(id); chosen != nil {
			detach(lib, cs, domain.KindChosenBook, chosen, goals)
		}
	}
	for _, id := range goal.ActiveBooks {
		if active := lib.ActiveBook(id); active != nil {
			detach(lib, cs, domain.KindActiveBook, active, goals)
		}
	}
	for _, id := range goal.ReadBooks {
		if read := lib.ReadBook(id); read != nil {
			detach(lib, cs, domain.KindReadBook, read, goals)
		}
	}

	lib.Remove(domain.KindGoal, goalID)
	cs.Delete(domain.KindGoal, goalID)
	return cs, nil
}
