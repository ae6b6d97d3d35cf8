package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLifecycleEvent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	payload := GoalPayload{GoalID: uuid.New(), Title: "2 books by Dec 31, 2024", BooksRead: 2}

	event, err := NewLifecycleEvent(TypeGoalReached, userID, payload)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeGoalReached, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.False(t, event.CreatedAt.IsZero())

	var decoded GoalPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)
}

func TestNewLifecycleEvent_UnmarshalablePayload(t *testing.T) {
	t.Parallel()

	_, err := NewLifecycleEvent(TypeBookFinished, uuid.New(), make(chan int))
	assert.Error(t, err)
}
