package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is a minimal conversation record kept per generation. It is the unit
// preservers condense during rotation and the natural source for the
// message-count policy. After being appended it should be treated as
// immutable.
type Event struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user", "assistant", "summary"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID and UTC timestamp.
func NewEvent(role, text string) Event {
	return Event{
		ID:        NewID(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// NewSummaryEvent creates an event carrying condensed prior context into a
// new or compacted generation.
func NewSummaryEvent(text string) Event {
	return NewEvent("summary", text)
}

// NewID generates a unique identifier suitable for sessions, operations and
// events.
//
// Returns a string representation of a new UUID.
func NewID() string { return uuid.NewString() }
