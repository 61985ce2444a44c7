// Package condense defines the narrow interface through which the session
// lifecycle invokes context condensation. The rotation core never sees a
// model provider directly; it hands a transcript to a Condenser and receives
// a summary back. Provider adapters live in sub-packages (anthropic, openai)
// so the core carries no SDK dependency.
package condense

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/sessionkit/core"
)

// Request captures the input to a condensation call.
type Request struct {
	// Instructions steer the summary (defaults per adapter when empty).
	Instructions string
	// Transcript is the event history to condense, oldest first.
	Transcript []core.Event
	// MaxSummaryTokens bounds the summary length; 0 uses the adapter default.
	MaxSummaryTokens int64
}

// Result is the outcome of a condensation call.
type Result struct {
	// Summary is the condensed context.
	Summary string
	// TokensUsed is the provider-reported total token cost of the call, 0 if
	// unknown.
	TokensUsed int
}

// Info contains metadata about a condenser implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "anthropic", "openai", "mock", etc.
}

// Condenser distills an event transcript into a compact summary.
type Condenser interface {
	Condense(ctx context.Context, req Request) (*Result, error)

	// Info returns information about the condenser implementation.
	Info() Info
}

// RenderTranscript flattens events into the plain-text form adapters send to
// providers.
func RenderTranscript(events []core.Event) string {
	var b strings.Builder
	for _, ev := range events {
		b.WriteString(ev.Role)
		b.WriteString(": ")
		b.WriteString(ev.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// MockCondenser is a lightweight in-memory Condenser useful for tests and
// examples. It returns a deterministic summary and can be primed to fail.
type MockCondenser struct {
	Summary string
	Err     error
	Calls   int
}

var _ Condenser = (*MockCondenser)(nil)

// NewMockCondenser constructs a MockCondenser with a canned summary.
func NewMockCondenser(summary string) *MockCondenser {
	return &MockCondenser{Summary: summary}
}

// Condense implements Condenser.
func (m *MockCondenser) Condense(_ context.Context, req Request) (*Result, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	summary := m.Summary
	if summary == "" {
		summary = fmt.Sprintf("condensed %d events", len(req.Transcript))
	}
	return &Result{Summary: summary}, nil
}

// Info implements Condenser.
func (m *MockCondenser) Info() Info {
	return Info{Name: "mock", Provider: "mock"}
}
