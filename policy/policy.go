// Package policy provides the built-in RotationPolicy implementations. Each
// policy governs one resource dimension (tokens, wall-clock time, message
// count) and maps utilization of that dimension onto rotation statuses using
// a shared pair of thresholds:
//
//   - utilization >= force threshold: MUST_ROTATE
//   - utilization >= early threshold: SHOULD_SUMMARIZE
//   - otherwise: CONTINUE
//
// Policies are pure: Classify and Utilization never mutate state, so a policy
// value can be shared across sessions and goroutines. Budgets and thresholds
// are validated once at construction; an invalid value is a fatal
// ConfigurationError, never a runtime surprise.
package policy

import "github.com/hupe1980/sessionkit/core"

// DefaultEarlyThreshold is the utilization at which summarization is advised.
const DefaultEarlyThreshold = 0.60

// DefaultForceThreshold is the utilization at which rotation is mandatory.
const DefaultForceThreshold = 0.70

// thresholds carries the validated early/force pair shared by all built-in
// policies.
type thresholds struct {
	early float64
	force float64
}

func newThresholds(early, force float64) (thresholds, error) {
	if early <= 0 || early > 1 {
		return thresholds{}, core.NewConfigurationError("early_rotation_threshold", "must be within (0,1]")
	}
	if force <= 0 || force > 1 {
		return thresholds{}, core.NewConfigurationError("force_rotation_threshold", "must be within (0,1]")
	}
	if early > force {
		return thresholds{}, core.NewConfigurationError("early_rotation_threshold", "must not exceed force_rotation_threshold")
	}
	return thresholds{early: early, force: force}, nil
}

// classify applies the shared threshold semantics to a utilization value.
func (t thresholds) classify(utilization float64) core.RotationStatus {
	switch {
	case utilization >= t.force:
		return core.StatusMustRotate
	case utilization >= t.early:
		return core.StatusShouldSummarize
	default:
		return core.StatusContinue
	}
}
