// Package sessionkit provides a high-level façade over the rotation manager
// and service abstractions (sessions, policies, preservation & logging)
// enabling budget-aware lifecycle control of long-running AI-agent
// conversations. Most applications interact with this package by:
//  1. Creating a SessionKit via New() (optionally overriding the default
//     in-memory store, policy, preserver or logger)
//  2. Opening one session per conversation
//  3. Reporting usage after each pipeline operation and calling Check to let
//     the controller summarize or rotate the context as budgets demand
//
// The façade delegates orchestration to rotation.Manager while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable store, an
// LLM-backed preserver and a structured logger.
package sessionkit

import (
	"context"

	"github.com/hupe1980/sessionkit/config"
	"github.com/hupe1980/sessionkit/core"
	"github.com/hupe1980/sessionkit/logging"
	"github.com/hupe1980/sessionkit/rotation"
)

// Options configures the SessionKit instance.
type Options struct {
	// Config carries the rotation tuning parameters (policy selection,
	// thresholds, breaker and drain timing). Defaults to config.Default().
	Config config.Config

	// Store persists sessions (defaults to the in-memory implementation).
	Store core.SessionStore

	// Policy overrides the policy built from Config.
	Policy core.RotationPolicy

	// Preserver condenses outgoing generations during rotation (defaults to
	// preserving nothing).
	Preserver core.ContextPreserver

	// Summarizer compacts context in place on SHOULD_SUMMARIZE (optional).
	Summarizer core.Summarizer

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// SessionKit is the high-level façade aggregating the underlying rotation
// manager and services.
type SessionKit struct {
	opts    Options
	manager *rotation.Manager
}

// New creates a new SessionKit instance with optional overrides. Any unset
// service is initialized with an in-memory or no-op implementation. An
// invalid configuration is a fatal core.ConfigurationError.
func New(optFns ...func(o *Options)) (*SessionKit, error) {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	m, err := rotation.NewManager(func(o *rotation.Options) {
		o.Config = opts.Config
		o.Store = opts.Store
		o.Policy = opts.Policy
		o.Preserver = opts.Preserver
		o.Summarizer = opts.Summarizer
		o.Logger = opts.Logger
	})
	if err != nil {
		return nil, err
	}

	return &SessionKit{opts: opts, manager: m}, nil
}

// Open registers a new session for a conversation.
func (k *SessionKit) Open(sessionID string) (*core.Session, error) {
	return k.manager.Open(sessionID)
}

// OpenWithPolicy registers a session governed by its own rotation policy.
func (k *SessionKit) OpenWithPolicy(sessionID string, p core.RotationPolicy) (*core.Session, error) {
	return k.manager.OpenWithPolicy(sessionID, p)
}

// Close drops a session at conversation end.
func (k *SessionKit) Close(sessionID string) error {
	return k.manager.Close(sessionID)
}

// Check classifies the session's usage and summarizes or rotates as needed.
func (k *SessionKit) Check(ctx context.Context, sessionID string) (core.RotationCheckResult, error) {
	return k.manager.Check(ctx, sessionID)
}

// ReportUsage accumulates a usage delta after a pipeline operation.
func (k *SessionKit) ReportUsage(sessionID string, delta core.UsageDelta) error {
	return k.manager.ReportUsage(sessionID, delta)
}

// AppendEvent records a conversation event in the active generation.
func (k *SessionKit) AppendEvent(sessionID string, ev core.Event) error {
	return k.manager.AppendEvent(sessionID, ev)
}

// RegisterOperation binds a fresh operation token to the current generation.
func (k *SessionKit) RegisterOperation(sessionID string) (string, int64, error) {
	return k.manager.RegisterOperation(sessionID)
}

// CompleteOperation releases an operation token.
func (k *SessionKit) CompleteOperation(sessionID, op string) error {
	return k.manager.CompleteOperation(sessionID, op)
}

// Snapshot returns the session's current usage and generation.
func (k *SessionKit) Snapshot(sessionID string) (core.Usage, int64, error) {
	return k.manager.Snapshot(sessionID)
}

// Manager exposes the underlying rotation manager for advanced wiring.
func (k *SessionKit) Manager() *rotation.Manager {
	return k.manager
}
