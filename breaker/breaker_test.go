package breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/sessionkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a mutable clock for driving recovery timeouts without sleeps.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := New(func(o *Options) { o.FailureThreshold = 3 })

	assert.Equal(t, core.CircuitClosed, b.State())
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, core.CircuitClosed, b.State())
	assert.True(t, b.AllowAttempt())

	b.RecordFailure()
	assert.Equal(t, core.CircuitOpen, b.State())
	assert.False(t, b.AllowAttempt())
}

func TestBreaker_SuccessClearsFailureCount(t *testing.T) {
	b := New(func(o *Options) { o.FailureThreshold = 3 })

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	assert.Equal(t, 0, b.ConsecutiveFailures())

	// Two more failures must not open the circuit: the counter restarted.
	b.RecordFailure()
	b.RecordFailure()
	assert.Equal(t, core.CircuitClosed, b.State())
}

func TestBreaker_HalfOpenAfterRecoveryTimeout(t *testing.T) {
	clock := newFakeClock()
	b := New(func(o *Options) {
		o.FailureThreshold = 3
		o.RecoveryTimeout = 30 * time.Second
		o.Clock = clock.Now
	})

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	require.Equal(t, core.CircuitOpen, b.State())

	clock.Advance(29 * time.Second)
	assert.False(t, b.AllowAttempt())

	clock.Advance(1 * time.Second)
	assert.True(t, b.AllowAttempt())
	assert.Equal(t, core.CircuitHalfOpen, b.State())
}

func TestBreaker_HalfOpenRejectsSecondConcurrentTrial(t *testing.T) {
	clock := newFakeClock()
	b := New(func(o *Options) {
		o.Clock = clock.Now
	})

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	clock.Advance(DefaultRecoveryTimeout)

	require.True(t, b.AllowAttempt())
	// The trial is still outstanding; a second one is rejected, not queued.
	assert.False(t, b.AllowAttempt())
}

func TestBreaker_TrialSuccessCloses(t *testing.T) {
	clock := newFakeClock()
	b := New(func(o *Options) { o.Clock = clock.Now })

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	clock.Advance(DefaultRecoveryTimeout)
	require.True(t, b.AllowAttempt())

	b.RecordSuccess()
	assert.Equal(t, core.CircuitClosed, b.State())
	assert.True(t, b.AllowAttempt())
}

func TestBreaker_TrialFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := New(func(o *Options) { o.Clock = clock.Now })

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	clock.Advance(DefaultRecoveryTimeout)
	require.True(t, b.AllowAttempt())

	b.RecordFailure()
	assert.Equal(t, core.CircuitOpen, b.State())
	assert.False(t, b.AllowAttempt())

	// A second recovery window admits another trial.
	clock.Advance(DefaultRecoveryTimeout)
	assert.True(t, b.AllowAttempt())
}

func TestBreaker_TransitionHook(t *testing.T) {
	clock := newFakeClock()

	var (
		mu          sync.Mutex
		transitions []string
	)
	b := New(func(o *Options) {
		o.Clock = clock.Now
		o.OnTransition = func(from, to core.CircuitState, _ int) {
			mu.Lock()
			defer mu.Unlock()
			transitions = append(transitions, from.String()+"->"+to.String())
		}
	})

	for i := 0; i < 3; i++ {
		b.RecordFailure()
	}
	clock.Advance(DefaultRecoveryTimeout)
	b.AllowAttempt()
	b.RecordSuccess()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, transitions)
}

func TestBreaker_ConcurrentRecording(t *testing.T) {
	b := New(func(o *Options) { o.FailureThreshold = 1000000 })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				b.RecordFailure()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5000, b.ConsecutiveFailures())
	assert.Equal(t, core.CircuitClosed, b.State())
}
