package core

import "fmt"

var (
	// ErrSessionNotFound is returned when a session id is not registered with
	// the manager or store.
	ErrSessionNotFound = fmt.Errorf("session not found")

	// ErrSessionExists is returned when opening a session whose id is already
	// registered.
	ErrSessionExists = fmt.Errorf("session already exists")

	// ErrDrainRejected is returned when an operation registration arrives
	// while the coordinator is sealed for rotation. The caller should retry
	// once the new generation is active.
	ErrDrainRejected = fmt.Errorf("operation registration rejected: rotation draining")
)

// ConfigurationError reports an invalid budget or threshold. It is fatal at
// construction time; nothing in the rotation path ever produces one.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

// NewConfigurationError constructs a ConfigurationError for a named field.
func NewConfigurationError(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// RotationError wraps a failure raised while preserving context or committing
// a swap. It is recorded by the circuit breaker and reported through the
// check result as a retryable condition; it never escapes Check as an error.
type RotationError struct {
	SessionID  string
	Generation int64
	Err        error
}

// Error implements the error interface.
func (e *RotationError) Error() string {
	return fmt.Sprintf("rotation failed for session %s (generation %d): %v", e.SessionID, e.Generation, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is / errors.As.
func (e *RotationError) Unwrap() error { return e.Err }
