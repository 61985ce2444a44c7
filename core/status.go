package core

// RotationStatus classifies the outcome of a rotation check. It is a closed
// set: policies emit the first four values, the manager additionally emits
// RotationBlocked when the circuit breaker refuses an attempt.
type RotationStatus int

const (
	// StatusContinue indicates the session is within budget and may keep going.
	StatusContinue RotationStatus = iota
	// StatusShouldSummarize indicates utilization crossed the early threshold;
	// condensing context now avoids a forced rotation later.
	StatusShouldSummarize
	// StatusShouldRotate indicates rotation is advisable. The built-in
	// threshold policies never emit it; custom policies may. The manager
	// treats it exactly like StatusMustRotate.
	StatusShouldRotate
	// StatusMustRotate indicates utilization crossed the force threshold and
	// the context must be replaced.
	StatusMustRotate
	// StatusRotationBlocked indicates a rotation was required but the circuit
	// breaker is open. The session keeps running on its current, possibly
	// over-budget, generation.
	StatusRotationBlocked
)

// String returns the canonical wire name of the status.
func (s RotationStatus) String() string {
	switch s {
	case StatusContinue:
		return "CONTINUE"
	case StatusShouldSummarize:
		return "SHOULD_SUMMARIZE"
	case StatusShouldRotate:
		return "SHOULD_ROTATE"
	case StatusMustRotate:
		return "MUST_ROTATE"
	case StatusRotationBlocked:
		return "ROTATION_BLOCKED"
	default:
		return "UNKNOWN"
	}
}

// NeedsRotation reports whether the status requires the manager to attempt a
// context rotation.
func (s RotationStatus) NeedsRotation() bool {
	return s == StatusShouldRotate || s == StatusMustRotate
}

// CircuitState is the observable state of the rotation circuit breaker.
type CircuitState int

const (
	// CircuitClosed permits rotation attempts.
	CircuitClosed CircuitState = iota
	// CircuitOpen rejects rotation attempts until the recovery timeout elapses.
	CircuitOpen
	// CircuitHalfOpen permits a bounded number of trial attempts.
	CircuitHalfOpen
)

// String returns the canonical wire name of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitOpen:
		return "OPEN"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}
