package core

import "context"

// ContextSnapshot is the immutable view of an outgoing generation handed to a
// ContextPreserver during rotation.
type ContextSnapshot struct {
	SessionID  string
	Generation int64
	Usage      Usage
	Events     []Event
}

// Carryover is what a preserver distills from an outgoing generation. Events
// seed the next generation's history; Summary is informational and usually
// also present as a summary event.
type Carryover struct {
	Summary string
	Events  []Event
}

// ContextPreserver condenses an outgoing generation's context into carryover
// state during rotation. It is invoked synchronously while the rotation is in
// flight; any error it returns fails the attempt and is recorded by the
// circuit breaker.
type ContextPreserver interface {
	Preserve(ctx context.Context, snap ContextSnapshot) (Carryover, error)
}

// Summarizer compacts a session's context in place when a check reports
// SHOULD_SUMMARIZE, without starting a rotation. Implementations return the
// replacement history plus the number of tokens the compaction freed.
type Summarizer interface {
	Summarize(ctx context.Context, snap ContextSnapshot) (events []Event, freedTokens int, err error)
}
