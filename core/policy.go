package core

// RotationPolicy classifies usage into a rotation status. Implementations
// must be pure and side-effect-free so they can be swapped at session
// construction time without affecting the rest of the system; the manager
// never re-resolves the policy per call.
type RotationPolicy interface {
	// Classify maps cumulative usage to CONTINUE, SHOULD_SUMMARIZE,
	// SHOULD_ROTATE or MUST_ROTATE.
	Classify(u Usage) RotationStatus

	// Utilization returns the fraction of the governed budget consumed so
	// far. Values above 1.0 indicate an over-budget generation.
	Utilization(u Usage) float64

	// Name identifies the policy for logs and check-result metadata.
	Name() string
}
