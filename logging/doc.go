// Package logging provides a minimal logging interface and adapters for
// sessionkit.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the rotation manager uses for observability. This package
// includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - LifecycleLogger with domain helpers (rotations, breaker transitions,
//     drain outcomes)
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewLogger(logging.DefaultLoggerConfig())
//	mgr := rotation.NewManager(rotation.WithLogger(logger))
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available. Degraded
// fail-open conditions (a blocked rotation leaving a session over budget, a
// drain timeout forcing a swap) are logged at Warn so they are loudly
// observable rather than silently accepted.
package logging
