package testutil

import (
	"fmt"

	"github.com/hupe1980/sessionkit/core"
)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").Budget(1000).Tokens(650).Events(3).Build()
type SessionBuilder struct {
	id       string
	budget   int
	tokens   int
	messages int
	events   []core.Event
}

// NewSessionBuilder creates a new builder for a session with the given id.
// Use chainable methods (Budget, Tokens, Messages, Event, Events) then call
// Build.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, budget: 200000}
}

// Budget sets the token budget (chainable).
func (b *SessionBuilder) Budget(tokens int) *SessionBuilder {
	b.budget = tokens
	return b
}

// Tokens sets the consumed token count (chainable).
func (b *SessionBuilder) Tokens(tokens int) *SessionBuilder {
	b.tokens = tokens
	return b
}

// Messages sets the message count (chainable).
func (b *SessionBuilder) Messages(n int) *SessionBuilder {
	b.messages = n
	return b
}

// Event appends a single event to the session history (chainable).
func (b *SessionBuilder) Event(ev core.Event) *SessionBuilder {
	b.events = append(b.events, ev)
	return b
}

// Events appends n alternating user/assistant filler events (chainable).
func (b *SessionBuilder) Events(n int) *SessionBuilder {
	for i := 0; i < n; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		b.events = append(b.events, core.NewEvent(role, fmt.Sprintf("message %d", i)))
	}
	return b
}

// Build returns a *core.Session with pre-populated usage and events.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id, b.budget)
	s.ApplyUsage(core.UsageDelta{Tokens: b.tokens, Messages: b.messages})
	for _, ev := range b.events {
		s.AddEvent(ev)
	}
	return s
}
