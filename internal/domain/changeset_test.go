package domain

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangesetCollapse(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("create then update stays a create", func(t *testing.T) {
		t.Parallel()
		book, err := NewBook(userID, "A", 10)
		require.NoError(t, err)

		cs := NewChangeset()
		cs.Create(book)
		cs.Update(book)

		muts := cs.Mutations()
		require.Len(t, muts, 1)
		assert.Equal(t, OpCreate, muts[0].Op)
		assert.Equal(t, KindBook, muts[0].Kind)
		assert.Same(t, book, muts[0].Entity)
	})

	t.Run("create then delete disappears", func(t *testing.T) {
		t.Parallel()
		chosen, err := NewChosenBook(userID, uuid.New(), uuid.New())
		require.NoError(t, err)

		cs := NewChangeset()
		cs.Create(chosen)
		cs.Delete(KindChosenBook, chosen.ID)

		assert.True(t, cs.IsEmpty())
		assert.Empty(t, cs.Mutations())
	})

	t.Run("update then delete becomes a delete", func(t *testing.T) {
		t.Parallel()
		chosen, err := NewChosenBook(userID, uuid.New(), uuid.New())
		require.NoError(t, err)

		cs := NewChangeset()
		cs.Update(chosen)
		cs.Delete(KindChosenBook, chosen.ID)

		muts := cs.Mutations()
		require.Len(t, muts, 1)
		assert.Equal(t, OpDelete, muts[0].Op)
		assert.Nil(t, muts[0].Entity)
	})

	t.Run("delete after update moves behind later mutations", func(t *testing.T) {
		t.Parallel()
		goal, err := NewGoal(userID, 1, 100, civil.Date{Year: 2030, Month: time.January, Day: 1},
			time.Date(2029, time.January, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		chosen, err := NewChosenBook(userID, uuid.New(), goal.ID)
		require.NoError(t, err)

		cs := NewChangeset()
		cs.Update(goal)
		cs.Delete(KindChosenBook, chosen.ID)
		cs.Delete(KindGoal, goal.ID)

		muts := cs.Mutations()
		require.Len(t, muts, 2)
		assert.Equal(t, Mutation{Op: OpDelete, Kind: KindChosenBook, ID: chosen.ID}, muts[0])
		assert.Equal(t, Mutation{Op: OpDelete, Kind: KindGoal, ID: goal.ID}, muts[1])
		assert.Equal(t, 2, cs.Len())
	})

	t.Run("order of first appearance is kept", func(t *testing.T) {
		t.Parallel()
		book, _ := NewBook(userID, "A", 10)
		chosen, _ := NewChosenBook(userID, book.ID, uuid.New())

		cs := NewChangeset()
		cs.Create(book)
		cs.Create(chosen)
		cs.Update(book)

		muts := cs.Mutations()
		require.Len(t, muts, 2)
		assert.Equal(t, KindBook, muts[0].Kind)
		assert.Equal(t, KindChosenBook, muts[1].Kind)
		assert.Equal(t, 2, cs.Len())
	})
}

func TestLibraryApplyAndClone(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	lib := NewLibrary()

	book, err := NewBook(userID, "A", 100)
	require.NoError(t, err)
	chosen, err := NewChosenBook(userID, book.ID, uuid.New())
	require.NoError(t, err)

	cs := NewChangeset()
	cs.Create(book)
	cs.Create(chosen)
	lib.Apply(cs)

	require.NotNil(t, lib.Book(book.ID))
	require.NotNil(t, lib.ChosenBook(chosen.ID))
	assert.NotSame(t, chosen, lib.ChosenBook(chosen.ID), "Apply copies entities")

	clone := lib.Clone()
	clone.ChosenBook(chosen.ID).AddGoals(uuid.New())
	assert.Equal(t, 1, lib.ChosenBook(chosen.ID).GoalIDs.Len(), "clone must not share membership sets")

	del := NewChangeset()
	del.Delete(KindChosenBook, chosen.ID)
	lib.Apply(del)
	assert.Nil(t, lib.ChosenBook(chosen.ID))
	assert.NotNil(t, clone.ChosenBook(chosen.ID))
}
