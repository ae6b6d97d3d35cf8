package lifecycle

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/domain"
)

// goalsFor resolves goalIDs, failing on an empty list or an unknown goal.
func goalsFor(lib *domain.Library, goalIDs []uuid.UUID) ([]*domain.Goal, error) {
	ids := domain.NewIDSet(goalIDs...)
	if ids.IsEmpty() {
		return nil, domain.ErrNoGoals
	}

	goals := make([]*domain.Goal, 0, len(ids))
	for _, id := range ids {
		goal := lib.Goal(id)
		if goal == nil {
			return nil, fmt.Errorf("%w: goal %s", domain.ErrRecordNotFound, id)
		}
		goals = append(goals, goal)
	}
	return goals, nil
}

// checkMembers verifies every goal exists and lists the record.
func checkMembers(lib *domain.Library, kind domain.EntityKind, recordID uuid.UUID, goalIDs []uuid.UUID) error {
	goals, err := goalsFor(lib, goalIDs)
	if err != nil {
		return err
	}
	for _, goal := range goals {
		if !goal.Holds(kind, recordID) {
			return fmt.Errorf("%w: %s %s in goal %s", domain.ErrNotInGoal, kind, recordID, goal.ID)
		}
	}
	return nil
}

// attach stores a new record and lists it in every goal.
func attach(
	lib *domain.Library,
	cs *domain.Changeset,
	kind domain.EntityKind,
	record domain.Membership,
	goalIDs []uuid.UUID,
) {
	_, id := domain.EntityKey(record)
	lib.Put(record)
	cs.Create(record)

	for _, goalID := range domain.NewIDSet(goalIDs...) {
		goal := lib.Goal(goalID)
		goal.Attach(kind, id)
		cs.Update(goal)
	}
}

// detach removes goalIDs from the record and the record from those goals.
// A record left without goals is deleted.
func detach(
	lib *domain.Library,
	cs *domain.Changeset,
	kind domain.EntityKind,
	record domain.Membership,
	goalIDs []uuid.UUID,
) {
	_, id := domain.EntityKey(record)
	record.RemoveGoals(goalIDs...)

	for _, goalID := range domain.NewIDSet(goalIDs...) {
		if goal := lib.Goal(goalID); goal != nil {
			goal.Detach(kind, id)
			cs.Update(goal)
		}
	}

	if record.Goals().IsEmpty() {
		lib.Remove(kind, id)
		cs.Delete(kind, id)
		return
	}
	cs.Update(record)
}

// attachChosen chooses bookID for goalIDs, reusing an existing chosen
// record of the same book when there is one.
func attachChosen(
	lib *domain.Library,
	cs *domain.Changeset,
	userID, bookID uuid.UUID,
	goalIDs []uuid.UUID,
) (*domain.ChosenBook, error) {
	for _, existing := range lib.ChosenBooks {
		if existing.BookID != bookID {
			continue
		}
		existing.AddGoals(goalIDs...)
		cs.Update(existing)
		for _, goalID := range domain.NewIDSet(goalIDs...) {
			goal := lib.Goal(goalID)
			goal.Attach(domain.KindChosenBook, existing.ID)
			cs.Update(goal)
		}
		return existing, nil
	}

	chosen, err := domain.NewChosenBook(userID, bookID, goalIDs...)
	if err != nil {
		return nil, err
	}
	attach(lib, cs, domain.KindChosenBook, chosen, goalIDs)
	return chosen, nil
}
