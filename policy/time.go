package policy

import (
	"time"

	"github.com/hupe1980/sessionkit/core"
)

// TimePolicy rotates on elapsed wall-clock time within the active generation.
// Useful when provider pricing or staleness concerns are time-driven rather
// than token-driven.
type TimePolicy struct {
	maxDuration time.Duration
	thresholds
}

var _ core.RotationPolicy = (*TimePolicy)(nil)

// NewTimePolicy creates a time-based policy bounded by maxDuration.
func NewTimePolicy(maxDuration time.Duration, early, force float64) (*TimePolicy, error) {
	if maxDuration <= 0 {
		return nil, core.NewConfigurationError("max_duration_seconds", "must be positive")
	}
	t, err := newThresholds(early, force)
	if err != nil {
		return nil, err
	}
	return &TimePolicy{maxDuration: maxDuration, thresholds: t}, nil
}

// Classify implements core.RotationPolicy.
func (p *TimePolicy) Classify(u core.Usage) core.RotationStatus {
	return p.classify(p.Utilization(u))
}

// Utilization returns elapsed_seconds / max_duration_seconds.
func (p *TimePolicy) Utilization(u core.Usage) float64 {
	return u.ElapsedSeconds / p.maxDuration.Seconds()
}

// Name implements core.RotationPolicy.
func (p *TimePolicy) Name() string { return "time" }
