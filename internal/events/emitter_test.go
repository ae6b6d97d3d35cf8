package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/pagepace/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler remembers the events it was given.
type recordingHandler struct {
	mu     sync.Mutex
	events []*LifecycleEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *LifecycleEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func newEvent(t *testing.T) *LifecycleEvent {
	t.Helper()
	event, err := NewLifecycleEvent(TypeBookStarted, uuid.New(), BookPayload{Title: "Persuasion"})
	require.NoError(t, err)
	return event
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()

	t.Run("emit event with no handlers", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(log)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("every handler sees the event", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(log)
		first, second := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(first)
		emitter.RegisterHandler(second)

		event := newEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, []*LifecycleEvent{event}, first.events)
		assert.Equal(t, []*LifecycleEvent{event}, second.events)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(log)
		failing := &recordingHandler{err: errors.New("handler error")}
		after := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(after)

		err := emitter.EmitEvent(context.Background(), newEvent(t))
		require.Error(t, err)
		assert.Equal(t, "handler error", err.Error())
		assert.Len(t, after.events, 1)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		t.Parallel()
		emitter := NewInMemoryEventEmitter(log)
		var seen string
		emitter.RegisterHandler(EventHandlerFunc(func(_ context.Context, e *LifecycleEvent) error {
			seen = e.Type
			return nil
		}))

		require.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
		assert.Equal(t, TypeBookStarted, seen)
	})
}

func TestLoggingHandler(t *testing.T) {
	t.Parallel()
	log, buf := logger.NewTestLogger()

	event := newEvent(t)
	require.NoError(t, NewLoggingHandler(log).HandleEvent(context.Background(), event))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "lifecycle event", entries[0]["msg"])
	assert.Equal(t, TypeBookStarted, entries[0]["event_type"])
	assert.Equal(t, event.UserID.String(), entries[0]["user_id"])
}
