package core

// RotationCheckResult is the caller-facing outcome of a rotation check. It is
// always a plain value: internal rotation failures are folded into Status,
// Reason and the breaker's bookkeeping, never surfaced as raw errors.
type RotationCheckResult struct {
	Status          RotationStatus    `json:"status"`
	Reason          string            `json:"reason"`
	UtilizationPct  float64           `json:"utilization_pct"`
	ShouldRotate    bool              `json:"should_rotate"`
	ShouldSummarize bool              `json:"should_summarize"`
	CircuitState    CircuitState      `json:"circuit_state"`
	Generation      int64             `json:"generation"`
	Rotated         bool              `json:"rotated"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
