package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types
const (
	TypeBookStarted     = "book.started"
	TypeBookFinished    = "book.finished"
	TypeBookReactivated = "book.reactivated"
	TypeGoalReached     = "goal.reached"
)

// LifecycleEvent records something that happened to a user's reading.
type LifecycleEvent struct {
	// ID is the unique identifier for this event.
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants.
	Type string `json:"type"`

	// UserID owns the goals and records the event refers to.
	UserID uuid.UUID `json:"user_id"`

	// Payload holds the event-specific data as JSON.
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// BookPayload is the payload of book.* events.
type BookPayload struct {
	RecordID uuid.UUID   `json:"record_id"`
	BookID   uuid.UUID   `json:"book_id"`
	Title    string      `json:"title"`
	GoalIDs  []uuid.UUID `json:"goal_ids"`
}

// GoalPayload is the payload of goal.* events.
type GoalPayload struct {
	GoalID    uuid.UUID `json:"goal_id"`
	Title     string    `json:"title"`
	BooksRead int       `json:"books_read"`
}

// UnmarshalPayload decodes the payload into v.
func (e *LifecycleEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewLifecycleEvent creates an event with a fresh ID and the payload
// marshaled to JSON.
func NewLifecycleEvent(eventType string, userID uuid.UUID, payload any) (*LifecycleEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &LifecycleEvent{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// EventHandler processes emitted events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *LifecycleEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *LifecycleEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *LifecycleEvent) error {
	return f(ctx, event)
}

// EventEmitter publishes events to interested handlers.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *LifecycleEvent) error
}
