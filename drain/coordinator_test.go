package drain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hupe1980/sessionkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinator_RegisterComplete(t *testing.T) {
	c := NewCoordinator(1)

	gen, err := c.Register("op-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	assert.Equal(t, 1, c.Pending())

	c.Complete("op-1")
	assert.Equal(t, 0, c.Pending())
}

func TestCoordinator_SealRejectsRegistrations(t *testing.T) {
	c := NewCoordinator(1)

	sealed := c.Seal()
	assert.Equal(t, int64(1), sealed)

	_, err := c.Register("op-1")
	assert.ErrorIs(t, err, core.ErrDrainRejected)

	c.Reopen(2)
	gen, err := c.Register("op-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestCoordinator_DrainEmptyReturnsImmediately(t *testing.T) {
	c := NewCoordinator(1)
	c.Seal()

	start := time.Now()
	res := c.Drain(context.Background(), time.Second, 10*time.Millisecond)
	assert.Equal(t, FullyDrained, res)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestCoordinator_DrainWaitsForAllCompletions(t *testing.T) {
	c := NewCoordinator(1)

	const n = 5
	ops := make([]string, 0, n)
	for i := 0; i < n; i++ {
		op := core.NewID()
		_, err := c.Register(op)
		require.NoError(t, err)
		ops = append(ops, op)
	}
	c.Seal()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, op := range ops {
			time.Sleep(20 * time.Millisecond)
			c.Complete(op)
		}
	}()

	res := c.Drain(context.Background(), 2*time.Second, 10*time.Millisecond)
	wg.Wait()

	assert.Equal(t, FullyDrained, res)
	assert.Equal(t, 0, c.Pending())
}

func TestCoordinator_DrainTimesOutWithStragglers(t *testing.T) {
	c := NewCoordinator(1)

	_, err := c.Register("fast")
	require.NoError(t, err)
	_, err = c.Register("straggler")
	require.NoError(t, err)
	c.Seal()

	c.Complete("fast")
	res := c.Drain(context.Background(), 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, TimedOut, res)
	assert.Equal(t, 1, c.Pending())

	// The straggler keeps its original generation tag after the forced swap
	// and its completion is still honored.
	c.Reopen(2)
	gen, ok := c.GenerationOf("straggler")
	require.True(t, ok)
	assert.Equal(t, int64(1), gen)

	c.Complete("straggler")
	_, ok = c.GenerationOf("straggler")
	assert.False(t, ok)
}

func TestCoordinator_DrainHonorsContextCancellation(t *testing.T) {
	c := NewCoordinator(1)
	_, err := c.Register("op-1")
	require.NoError(t, err)
	c.Seal()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	res := c.Drain(ctx, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, TimedOut, res)
	assert.Less(t, time.Since(start), time.Second)
}

func TestCoordinator_OldGenerationLeftoversDoNotBlockNewDrain(t *testing.T) {
	c := NewCoordinator(1)
	_, err := c.Register("leftover")
	require.NoError(t, err)
	c.Seal()
	require.Equal(t, TimedOut, c.Drain(context.Background(), 50*time.Millisecond, 10*time.Millisecond))
	c.Reopen(2)

	// A drain of generation 2 ignores the generation-1 straggler.
	c.Seal()
	assert.Equal(t, FullyDrained, c.Drain(context.Background(), 50*time.Millisecond, 10*time.Millisecond))
}
