package policy

import "github.com/hupe1980/sessionkit/core"

// TokenPolicy rotates on token-budget utilization. This is the policy most
// deployments want: the token counter tracks the context window directly.
type TokenPolicy struct {
	budget int
	thresholds
}

var _ core.RotationPolicy = (*TokenPolicy)(nil)

// NewTokenPolicy creates a token-based policy. The budget must be positive
// and the thresholds within (0,1]; violations are fatal ConfigurationErrors.
func NewTokenPolicy(tokensBudget int, early, force float64) (*TokenPolicy, error) {
	if tokensBudget <= 0 {
		return nil, core.NewConfigurationError("tokens_budget", "must be positive")
	}
	t, err := newThresholds(early, force)
	if err != nil {
		return nil, err
	}
	return &TokenPolicy{budget: tokensBudget, thresholds: t}, nil
}

// Classify implements core.RotationPolicy.
func (p *TokenPolicy) Classify(u core.Usage) core.RotationStatus {
	return p.classify(p.Utilization(u))
}

// Utilization returns tokens_used / tokens_budget. The session's own budget
// takes precedence when set, so a store-level default can be overridden per
// session.
func (p *TokenPolicy) Utilization(u core.Usage) float64 {
	budget := p.budget
	if u.TokensBudget > 0 {
		budget = u.TokensBudget
	}
	return float64(u.TokensUsed) / float64(budget)
}

// Budget returns the configured token budget.
func (p *TokenPolicy) Budget() int { return p.budget }

// Name implements core.RotationPolicy.
func (p *TokenPolicy) Name() string { return "token" }
