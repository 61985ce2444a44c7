// Package rotation implements the session-lifecycle controller: the
// orchestrator that decides, per check, whether a budgeted conversation keeps
// going, compacts itself, or rotates into a fresh context generation.
//
// The Manager serves as the central coordination point between the rotation
// policy, the circuit breaker, the drain coordinator and the external
// context-preservation callback. It provides:
//
// Core Responsibilities:
//   - Session Registry: thread-safe open/lookup/close of managed sessions
//   - Usage Accounting: applying pipeline-reported deltas per generation
//   - Classification: delegating usage to the session's rotation policy
//   - Rotation: breaker-gated drain, preservation and atomic generation swap
//   - Observability: structured logs for every degraded or fail-open path
//
// Concurrency Model:
//   - Check is safe under concurrent invocation from parallel operation paths
//   - At most one rotation is in flight per session; concurrent checks during
//     an active rotation observe rotation_in_progress and do not start another
//   - The only suspension point is the drain poll, bounded by its timeout;
//     every other operation completes in bounded, non-blocking time
//
// Error Handling:
//   - Preservation failures are recorded by the breaker and surfaced as a
//     retryable status, never as raw errors from Check
//   - A drain timeout degrades to a forced swap with a warning
//   - An open breaker yields ROTATION_BLOCKED: the session keeps running on
//     its current, possibly over-budget, generation. This fail-open choice
//     favors availability and is always logged at Warn.
package rotation

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hupe1980/sessionkit/breaker"
	"github.com/hupe1980/sessionkit/config"
	"github.com/hupe1980/sessionkit/core"
	"github.com/hupe1980/sessionkit/drain"
	"github.com/hupe1980/sessionkit/logging"
	"github.com/hupe1980/sessionkit/session"
)

// Options configures a Manager instance using the functional options pattern.
type Options struct {
	// Config contains the externally sourced rotation parameters. Defaults to
	// config.Default().
	Config config.Config

	// Store persists sessions. Defaults to the in-memory implementation.
	Store core.SessionStore

	// Policy classifies usage for sessions opened without a per-session
	// override. Defaults to the policy built from Config.
	Policy core.RotationPolicy

	// Preserver condenses an outgoing generation during rotation. Defaults to
	// preserving nothing (fresh generations start empty).
	Preserver core.ContextPreserver

	// Summarizer compacts context in place on SHOULD_SUMMARIZE. Optional;
	// without one the status is surfaced but nothing is compacted.
	Summarizer core.Summarizer

	// Logger provides structured logging. Defaults to NoOpLogger.
	Logger logging.Logger

	// Clock supplies the current time; tests inject a fake. Defaults to
	// time.Now.
	Clock func() time.Time
}

// WithConfig sets the rotation configuration.
func WithConfig(cfg config.Config) func(o *Options) {
	return func(o *Options) { o.Config = cfg }
}

// WithStore sets the session store.
func WithStore(store core.SessionStore) func(o *Options) {
	return func(o *Options) { o.Store = store }
}

// WithPolicy sets the default rotation policy.
func WithPolicy(p core.RotationPolicy) func(o *Options) {
	return func(o *Options) { o.Policy = p }
}

// WithPreserver sets the context-preservation callback.
func WithPreserver(p core.ContextPreserver) func(o *Options) {
	return func(o *Options) { o.Preserver = p }
}

// WithSummarizer sets the in-place summarizer.
func WithSummarizer(s core.Summarizer) func(o *Options) {
	return func(o *Options) { o.Summarizer = s }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) func(o *Options) {
	return func(o *Options) { o.Clock = clock }
}

// runtime bundles the per-session machinery: the live session plus its
// policy, breaker and drain coordinator. The strategy is resolved once at
// open time, never per call.
type runtime struct {
	session *core.Session
	policy  core.RotationPolicy
	breaker *breaker.Breaker
	drain   *drain.Coordinator
}

// Manager owns the mutable session registry and drives the rotation state
// machine. All public methods are safe for concurrent use.
type Manager struct {
	cfg        config.Config
	store      core.SessionStore
	policy     core.RotationPolicy
	preserver  core.ContextPreserver
	summarizer core.Summarizer
	logger     logging.Logger
	clock      func() time.Time

	mu       sync.RWMutex
	runtimes map[string]*runtime
}

// NewManager creates a Manager with sensible defaults and optional
// configuration. The configuration and default policy are validated here;
// an invalid value is a fatal core.ConfigurationError.
func NewManager(optFns ...func(o *Options)) (*Manager, error) {
	opts := Options{
		Config: config.Default(),
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Policy == nil {
		p, err := opts.Config.BuildPolicy()
		if err != nil {
			return nil, err
		}
		opts.Policy = p
	}
	if opts.Store == nil {
		opts.Store = session.NewInMemoryStore()
	}
	if opts.Preserver == nil {
		opts.Preserver = preserveNothing{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Manager{
		cfg:        opts.Config,
		store:      opts.Store,
		policy:     opts.Policy,
		preserver:  opts.Preserver,
		summarizer: opts.Summarizer,
		logger:     opts.Logger,
		clock:      opts.Clock,
		runtimes:   make(map[string]*runtime),
	}, nil
}

// preserveNothing is the default ContextPreserver: fresh generations start
// empty.
type preserveNothing struct{}

func (preserveNothing) Preserve(context.Context, core.ContextSnapshot) (core.Carryover, error) {
	return core.Carryover{}, nil
}

// Open creates and registers a session on generation 1 using the manager's
// default policy.
func (m *Manager) Open(id string) (*core.Session, error) {
	return m.OpenWithPolicy(id, m.policy)
}

// OpenWithPolicy creates a session governed by its own policy. The policy is
// bound once here and never re-resolved per check.
func (m *Manager) OpenWithPolicy(id string, p core.RotationPolicy) (*core.Session, error) {
	if p == nil {
		p = m.policy
	}

	sess, err := m.store.Create(id, m.cfg.TokensBudget)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		session: sess,
		policy:  p,
		drain:   drain.NewCoordinator(sess.CurrentGeneration()),
		breaker: breaker.New(func(o *breaker.Options) {
			o.FailureThreshold = m.cfg.FailureThreshold
			o.RecoveryTimeout = m.cfg.RecoveryTimeout()
			o.HalfOpenMaxCalls = m.cfg.HalfOpenMaxCalls
			o.Clock = m.clock
			o.OnTransition = func(from, to core.CircuitState, failures int) {
				m.logger.Warn("rotation breaker transition",
					"session_id", id, "from", from.String(), "to", to.String(),
					"consecutive_failures", failures)
			}
		}),
	}

	m.mu.Lock()
	m.runtimes[id] = rt
	m.mu.Unlock()

	m.logger.Info("session opened", "session_id", id, "policy", p.Name())
	return sess, nil
}

// Store exposes the underlying session store.
func (m *Manager) Store() core.SessionStore { return m.store }

// Close drops a session from the registry and store at conversation end.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	delete(m.runtimes, id)
	m.mu.Unlock()
	return m.store.Delete(id)
}

func (m *Manager) runtime(id string) (*runtime, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rt, ok := m.runtimes[id]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return rt, nil
}

// ReportUsage accumulates a usage delta for the session's active generation.
// The surrounding pipeline calls it after each operation.
func (m *Manager) ReportUsage(id string, delta core.UsageDelta) error {
	rt, err := m.runtime(id)
	if err != nil {
		return err
	}
	rt.session.ApplyUsage(delta)
	return nil
}

// AppendEvent records a conversation event in the session's active
// generation, giving preservers real context to condense.
func (m *Manager) AppendEvent(id string, ev core.Event) error {
	rt, err := m.runtime(id)
	if err != nil {
		return err
	}
	rt.session.AddEvent(ev)
	return nil
}

// RegisterOperation binds a fresh operation token to the session's current
// generation. It fails with core.ErrDrainRejected while a rotation is
// draining; callers retry once the new generation is active. Returns the
// token and the generation it is bound to.
func (m *Manager) RegisterOperation(id string) (string, int64, error) {
	rt, err := m.runtime(id)
	if err != nil {
		return "", 0, err
	}
	op := core.NewID()
	gen, err := rt.drain.Register(op)
	if err != nil {
		return "", 0, err
	}
	return op, gen, nil
}

// CompleteOperation removes an operation token. Late completions after a
// forced swap are honored against the operation's original generation.
func (m *Manager) CompleteOperation(id, op string) error {
	rt, err := m.runtime(id)
	if err != nil {
		return err
	}
	rt.drain.Complete(op)
	return nil
}

// Snapshot returns the session's current usage and generation.
func (m *Manager) Snapshot(id string) (core.Usage, int64, error) {
	rt, err := m.runtime(id)
	if err != nil {
		return core.Usage{}, 0, err
	}
	return rt.session.Snapshot(m.clock()), rt.session.CurrentGeneration(), nil
}

// Check is the sole caller-facing rotation entry point. It classifies the
// session's usage, summarizes or rotates as required, and returns an
// actionable result. Internal rotation failures never escape as errors; the
// returned error is non-nil only for an unknown session id.
func (m *Manager) Check(ctx context.Context, id string) (core.RotationCheckResult, error) {
	rt, err := m.runtime(id)
	if err != nil {
		return core.RotationCheckResult{}, err
	}

	usage := rt.session.Snapshot(m.clock())
	status := rt.policy.Classify(usage)
	util := rt.policy.Utilization(usage)

	result := core.RotationCheckResult{
		Status:         status,
		UtilizationPct: util * 100,
		CircuitState:   rt.breaker.State(),
		Generation:     rt.session.CurrentGeneration(),
		Metadata:       map[string]string{"policy": rt.policy.Name()},
	}

	switch {
	case status == core.StatusContinue:
		result.Reason = "utilization below thresholds"
		return result, nil
	case status == core.StatusShouldSummarize:
		result.ShouldSummarize = true
		m.summarize(ctx, id, rt, usage, &result)
		return result, nil
	case status.NeedsRotation():
		result.ShouldRotate = true
		m.rotate(ctx, id, rt, usage, &result)
		return result, nil
	default:
		result.Reason = "no action required"
		return result, nil
	}
}

// summarize runs the optional in-place compactor. It reuses the rotation
// in-progress flag so compaction never races an active rotation; losing the
// flag simply defers compaction to a later check. Summarizer failures are
// advisory, logged and reported through metadata, never fatal to the check.
func (m *Manager) summarize(ctx context.Context, id string, rt *runtime, usage core.Usage, result *core.RotationCheckResult) {
	result.Reason = "utilization crossed early threshold"
	if m.summarizer == nil {
		return
	}
	if !rt.session.BeginRotation() {
		result.Metadata["rotation_in_progress"] = "true"
		return
	}
	defer rt.session.EndRotation()

	snap := core.ContextSnapshot{
		SessionID:  id,
		Generation: rt.session.CurrentGeneration(),
		Usage:      usage,
		Events:     rt.session.GetEvents(),
	}
	events, freed, err := m.summarizer.Summarize(ctx, snap)
	if err != nil {
		m.logger.Warn("in-place summarization failed", "session_id", id, "error", err.Error())
		result.Metadata["summarize_error"] = err.Error()
		return
	}
	rt.session.ReplaceEvents(events)
	rt.session.CreditTokens(freed)
	result.Reason = "context summarized in place"
	result.Metadata["freed_tokens"] = strconv.Itoa(freed)
	m.logger.Info("context summarized in place", "session_id", id, "freed_tokens", freed)
}

// rotate drives one rotation attempt: breaker gate, drain, preservation,
// atomic swap. All failure paths convert to result statuses and breaker
// bookkeeping.
func (m *Manager) rotate(ctx context.Context, id string, rt *runtime, usage core.Usage, result *core.RotationCheckResult) {
	if !rt.session.BeginRotation() {
		result.Reason = "rotation already in progress"
		result.Metadata["rotation_in_progress"] = "true"
		return
	}

	if !rt.breaker.AllowAttempt() {
		rt.session.EndRotation()
		result.Status = core.StatusRotationBlocked
		result.CircuitState = rt.breaker.State()
		result.Reason = "rotation blocked: circuit open"
		result.Metadata["consecutive_failures"] = strconv.Itoa(rt.breaker.ConsecutiveFailures())
		// Deliberate fail-open: the session keeps running over budget rather
		// than halting. Must stay loudly observable.
		m.logger.Warn("rotation blocked by circuit breaker; session continues over budget",
			"session_id", id,
			"utilization_pct", result.UtilizationPct,
			"circuit_state", result.CircuitState.String())
		return
	}

	started := m.clock()
	oldGen := rt.drain.Seal()

	drainRes := rt.drain.Drain(ctx, m.cfg.RotationTimeout(), m.cfg.PollInterval())
	result.Metadata["drain"] = drainRes.String()
	if drainRes == drain.TimedOut {
		// Forced swap: stragglers finish against their original generation.
		m.logger.Warn("drain timed out; forcing generation swap",
			"session_id", id,
			"pending_operations", rt.drain.Pending(),
			"timeout", m.cfg.RotationTimeout().String())
		result.Metadata["pending_operations"] = strconv.Itoa(rt.drain.Pending())
	}

	snap := core.ContextSnapshot{
		SessionID:  id,
		Generation: oldGen,
		Usage:      usage,
		Events:     rt.session.GetEvents(),
	}
	carry, err := m.preserve(ctx, snap)
	if err != nil {
		// The swap never started: the old generation stays authoritative.
		rt.drain.Reopen(oldGen)
		rt.session.EndRotation()
		rt.breaker.RecordFailure()

		rerr := &core.RotationError{SessionID: id, Generation: oldGen, Err: err}
		m.logger.Error("rotation attempt failed", "session_id", id, "generation", oldGen, "error", rerr.Error())

		result.CircuitState = rt.breaker.State()
		result.Reason = "rotation failed; will retry"
		result.Metadata["rotation_error"] = err.Error()
		result.Metadata["retryable"] = "true"
		return
	}

	newGen := rt.session.CommitSwap(carry.Events, m.clock())
	rt.drain.Reopen(newGen)
	rt.breaker.RecordSuccess()

	result.Rotated = true
	result.Generation = newGen
	result.CircuitState = rt.breaker.State()
	result.Reason = fmt.Sprintf("context rotated: generation %d -> %d", oldGen, newGen)
	result.Metadata["previous_generation"] = strconv.FormatInt(oldGen, 10)
	result.Metadata["carryover_events"] = strconv.Itoa(len(carry.Events))

	m.logger.Info("context rotated",
		"session_id", id,
		"from_generation", oldGen,
		"to_generation", newGen,
		"drain", drainRes.String(),
		"duration", m.clock().Sub(started).String())
}

// preserve invokes the external preservation callback, converting a panic in
// foreign code into an ordinary rotation failure so it is recorded by the
// breaker instead of tearing down the caller.
func (m *Manager) preserve(ctx context.Context, snap core.ContextSnapshot) (carry core.Carryover, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("context preserver panicked: %v", r)
		}
	}()
	return m.preserver.Preserve(ctx, snap)
}
