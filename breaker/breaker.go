// Package breaker implements the circuit breaker gating rotation attempts.
//
// The breaker is a CLOSED / OPEN / HALF_OPEN state machine driven by
// consecutive failures:
//
//   - CLOSED -> OPEN after FailureThreshold consecutive failures
//   - OPEN -> HALF_OPEN once RecoveryTimeout has elapsed
//   - HALF_OPEN -> CLOSED on trial success
//   - HALF_OPEN -> OPEN on trial failure
//
// While OPEN, AllowAttempt returns false and the rotation manager reports
// ROTATION_BLOCKED: the session keeps running on its current, possibly
// over-budget, generation. That fail-open behavior favors availability over
// strict budget enforcement and is surfaced through the OnTransition hook and
// the manager's warn logs rather than swallowed.
package breaker

import (
	"sync"
	"time"

	"github.com/hupe1980/sessionkit/core"
)

// DefaultFailureThreshold is the number of consecutive failures that opens
// the circuit.
const DefaultFailureThreshold = 3

// DefaultRecoveryTimeout is how long the circuit stays open before a trial is
// permitted.
const DefaultRecoveryTimeout = 30 * time.Second

// DefaultHalfOpenMaxCalls bounds concurrent trials while half-open. A second
// concurrent trial beyond the bound is rejected, not queued.
const DefaultHalfOpenMaxCalls = 1

// Options configures a Breaker.
type Options struct {
	// FailureThreshold is the consecutive-failure count that opens the
	// circuit. Defaults to DefaultFailureThreshold.
	FailureThreshold int

	// RecoveryTimeout is the open-state dwell time before a half-open trial
	// is admitted. Defaults to DefaultRecoveryTimeout.
	RecoveryTimeout time.Duration

	// HalfOpenMaxCalls bounds concurrent half-open trials. Defaults to
	// DefaultHalfOpenMaxCalls.
	HalfOpenMaxCalls int

	// OnTransition, when set, is invoked (outside the breaker lock) after
	// every state change. Used by the manager for observability.
	OnTransition func(from, to core.CircuitState, consecutiveFailures int)

	// Clock supplies the current time; tests inject a fake. Defaults to
	// time.Now.
	Clock func() time.Time
}

// Breaker gates rotation attempts for a single session. All methods are safe
// for concurrent use and complete in bounded, non-blocking time.
type Breaker struct {
	mu               sync.Mutex
	opts             Options
	state            core.CircuitState
	failures         int
	openedAt         time.Time
	halfOpenInFlight int
}

// New creates a Breaker in the CLOSED state.
func New(optFns ...func(o *Options)) *Breaker {
	opts := Options{
		FailureThreshold: DefaultFailureThreshold,
		RecoveryTimeout:  DefaultRecoveryTimeout,
		HalfOpenMaxCalls: DefaultHalfOpenMaxCalls,
		Clock:            time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.FailureThreshold < 1 {
		opts.FailureThreshold = DefaultFailureThreshold
	}
	if opts.RecoveryTimeout <= 0 {
		opts.RecoveryTimeout = DefaultRecoveryTimeout
	}
	if opts.HalfOpenMaxCalls < 1 {
		opts.HalfOpenMaxCalls = DefaultHalfOpenMaxCalls
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Breaker{opts: opts, state: core.CircuitClosed}
}

// AllowAttempt reports whether a rotation attempt may proceed. An OPEN
// circuit whose recovery timeout has elapsed transitions to HALF_OPEN and
// admits the caller as the trial.
func (b *Breaker) AllowAttempt() bool {
	b.mu.Lock()
	var transition func()
	allowed := false

	switch b.state {
	case core.CircuitClosed:
		allowed = true
	case core.CircuitOpen:
		if b.opts.Clock().Sub(b.openedAt) >= b.opts.RecoveryTimeout {
			transition = b.transitionLocked(core.CircuitHalfOpen)
			b.halfOpenInFlight = 1
			allowed = true
		}
	case core.CircuitHalfOpen:
		if b.halfOpenInFlight < b.opts.HalfOpenMaxCalls {
			b.halfOpenInFlight++
			allowed = true
		}
	}
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
	return allowed
}

// RecordSuccess clears the consecutive-failure counter. A half-open trial
// success closes the circuit.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	var transition func()
	b.failures = 0
	if b.state == core.CircuitHalfOpen {
		transition = b.transitionLocked(core.CircuitClosed)
		b.halfOpenInFlight = 0
	}
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
}

// RecordFailure increments the consecutive-failure counter. Crossing the
// threshold opens the circuit; a half-open trial failure reopens it
// immediately.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	var transition func()
	b.failures++
	switch {
	case b.state == core.CircuitHalfOpen:
		transition = b.transitionLocked(core.CircuitOpen)
		b.openedAt = b.opts.Clock()
		b.halfOpenInFlight = 0
	case b.state == core.CircuitClosed && b.failures >= b.opts.FailureThreshold:
		transition = b.transitionLocked(core.CircuitOpen)
		b.openedAt = b.opts.Clock()
	}
	b.mu.Unlock()

	if transition != nil {
		transition()
	}
}

// State returns the current circuit state.
func (b *Breaker) State() core.CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// ConsecutiveFailures returns the current consecutive-failure count.
func (b *Breaker) ConsecutiveFailures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// transitionLocked changes state and returns the deferred OnTransition
// invocation; the caller runs it after releasing the lock.
func (b *Breaker) transitionLocked(to core.CircuitState) func() {
	from := b.state
	b.state = to
	if b.opts.OnTransition == nil || from == to {
		return nil
	}
	failures := b.failures
	hook := b.opts.OnTransition
	return func() { hook(from, to, failures) }
}
