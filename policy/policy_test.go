package policy

import (
	"testing"
	"time"

	"github.com/hupe1980/sessionkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPolicy_Thresholds(t *testing.T) {
	p, err := NewTokenPolicy(200000, 0.60, 0.70)
	require.NoError(t, err)

	tests := []struct {
		name   string
		tokens int
		want   core.RotationStatus
	}{
		{"well under budget", 50000, core.StatusContinue},
		{"just under early", 119999, core.StatusContinue},
		{"exactly early", 120000, core.StatusShouldSummarize},
		{"between thresholds", 130000, core.StatusShouldSummarize},
		{"exactly force", 140000, core.StatusMustRotate},
		{"over force", 145000, core.StatusMustRotate},
		{"over budget", 250000, core.StatusMustRotate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Classify(core.Usage{TokensUsed: tt.tokens, TokensBudget: 200000})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenPolicy_Utilization(t *testing.T) {
	p, err := NewTokenPolicy(200000, 0.60, 0.70)
	require.NoError(t, err)

	u := p.Utilization(core.Usage{TokensUsed: 145000, TokensBudget: 200000})
	assert.InDelta(t, 0.725, u, 1e-9)

	// Session-level budget overrides the policy budget.
	u = p.Utilization(core.Usage{TokensUsed: 50, TokensBudget: 100})
	assert.InDelta(t, 0.5, u, 1e-9)
}

func TestTokenPolicy_InvalidConfiguration(t *testing.T) {
	var cfgErr *core.ConfigurationError

	_, err := NewTokenPolicy(0, 0.60, 0.70)
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewTokenPolicy(-5, 0.60, 0.70)
	assert.Error(t, err)

	_, err = NewTokenPolicy(1000, 0, 0.70)
	assert.Error(t, err)

	_, err = NewTokenPolicy(1000, 0.60, 1.5)
	assert.Error(t, err)

	_, err = NewTokenPolicy(1000, 0.80, 0.70)
	assert.Error(t, err)
}

func TestTokenPolicy_IsPure(t *testing.T) {
	p, err := NewTokenPolicy(1000, 0.60, 0.70)
	require.NoError(t, err)

	u := core.Usage{TokensUsed: 650, TokensBudget: 1000}
	first := p.Classify(u)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.Classify(u))
	}
	assert.Equal(t, core.StatusShouldSummarize, first)
}

func TestTimePolicy_Thresholds(t *testing.T) {
	p, err := NewTimePolicy(100*time.Second, 0.60, 0.70)
	require.NoError(t, err)

	assert.Equal(t, core.StatusContinue, p.Classify(core.Usage{ElapsedSeconds: 30}))
	assert.Equal(t, core.StatusShouldSummarize, p.Classify(core.Usage{ElapsedSeconds: 60}))
	assert.Equal(t, core.StatusMustRotate, p.Classify(core.Usage{ElapsedSeconds: 70}))

	_, err = NewTimePolicy(0, 0.60, 0.70)
	assert.Error(t, err)
}

func TestMessagePolicy_Thresholds(t *testing.T) {
	p, err := NewMessagePolicy(100, 0.60, 0.70)
	require.NoError(t, err)

	assert.Equal(t, core.StatusContinue, p.Classify(core.Usage{MessageCount: 59}))
	assert.Equal(t, core.StatusShouldSummarize, p.Classify(core.Usage{MessageCount: 60}))
	assert.Equal(t, core.StatusMustRotate, p.Classify(core.Usage{MessageCount: 70}))

	_, err = NewMessagePolicy(0, 0.60, 0.70)
	assert.Error(t, err)
}
