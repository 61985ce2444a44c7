// Package core provides the foundational domain types and interfaces used by
// sessionkit. It defines the core abstractions for:
//
//   - Sessions (budgeted conversational containers with a generation tag)
//   - Usage (cumulative token / time / message consumption per generation)
//   - Events (the minimal conversation records preservers condense)
//   - RotationPolicy (pluggable classification of usage into statuses)
//   - ContextPreserver / Summarizer (narrow condensation hooks invoked
//     during and between rotations)
//   - SessionStore (pluggable session persistence)
//
// The package intentionally keeps implementation concerns (policies, the
// breaker, drain coordination, the rotation manager itself) out of scope,
// exposing small interfaces so backends and strategies can be swapped at
// construction time.
package core
