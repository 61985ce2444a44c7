// Package drain tracks in-flight operations bound to a session's context
// generation and coordinates rotation with them.
//
// Operations register before touching a generation's context and complete
// when done. When a rotation is triggered the coordinator is sealed: new
// registrations are rejected against the outgoing generation, and Drain polls
// the in-flight count until it reaches zero or a timeout elapses. On timeout
// the manager proceeds with a forced swap anyway; outstanding operations are
// not aborted. They complete independently against their original generation
// tag, which stays valid for their own bookkeeping though no longer current.
package drain

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/sessionkit/core"
)

// DefaultPollInterval is the in-flight cardinality poll cadence.
const DefaultPollInterval = 100 * time.Millisecond

// DefaultTimeout bounds how long a drain waits before giving up.
const DefaultTimeout = 30 * time.Second

// Result is the terminal outcome of a Drain call.
type Result int

const (
	// FullyDrained means every registered operation completed in time.
	FullyDrained Result = iota
	// TimedOut means operations were still in flight when the timeout
	// elapsed; the caller proceeds with a forced swap.
	TimedOut
)

// String returns the canonical name of the result.
func (r Result) String() string {
	switch r {
	case FullyDrained:
		return "fully_drained"
	case TimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// Coordinator tracks operation tokens per generation for one session. All
// methods except Drain complete in bounded, non-blocking time; Drain is the
// only suspension point and is bounded by its timeout.
type Coordinator struct {
	mu         sync.Mutex
	inflight   map[string]int64 // operation token -> generation it started under
	generation int64
	sealed     bool
}

// NewCoordinator creates a coordinator accepting registrations against the
// given generation.
func NewCoordinator(generation int64) *Coordinator {
	return &Coordinator{inflight: make(map[string]int64), generation: generation}
}

// Register binds an operation token to the current generation. It fails with
// core.ErrDrainRejected while the coordinator is sealed for rotation; the
// caller should retry once the new generation is active. Returns the
// generation the operation was bound to.
func (c *Coordinator) Register(op string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return 0, core.ErrDrainRejected
	}
	c.inflight[op] = c.generation
	return c.generation, nil
}

// Complete removes an operation token. Completions arriving after a forced
// swap are still honored: the operation stays attributed to the generation it
// registered under and is never reattributed.
func (c *Coordinator) Complete(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, op)
}

// GenerationOf returns the generation an in-flight operation is bound to.
func (c *Coordinator) GenerationOf(op string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen, ok := c.inflight[op]
	return gen, ok
}

// Seal stops new registrations against the outgoing generation and returns
// that generation. Idempotent.
func (c *Coordinator) Seal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = true
	return c.generation
}

// Reopen unseals the coordinator for the given new generation. Operations
// left over from older generations remain tracked until they complete but do
// not count against the new generation.
func (c *Coordinator) Reopen(generation int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sealed = false
	c.generation = generation
}

// Sealed reports whether registrations are currently rejected.
func (c *Coordinator) Sealed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sealed
}

// Pending returns the number of in-flight operations bound to the current
// (or, while sealed, the draining) generation.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingLocked(c.generation)
}

func (c *Coordinator) pendingLocked(generation int64) int {
	n := 0
	for _, gen := range c.inflight {
		if gen == generation {
			n++
		}
	}
	return n
}

// Drain polls the in-flight cardinality of the sealed generation every poll
// interval until it reaches zero (FullyDrained) or the timeout elapses
// (TimedOut). Context cancellation is treated as a timeout. Non-positive
// parameters fall back to the package defaults.
func (c *Coordinator) Drain(ctx context.Context, timeout, poll time.Duration) Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	c.mu.Lock()
	generation := c.generation
	pending := c.pendingLocked(generation)
	c.mu.Unlock()
	if pending == 0 {
		return FullyDrained
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return TimedOut
		case <-deadline.C:
			return TimedOut
		case <-ticker.C:
			c.mu.Lock()
			pending = c.pendingLocked(generation)
			c.mu.Unlock()
			if pending == 0 {
				return FullyDrained
			}
		}
	}
}
