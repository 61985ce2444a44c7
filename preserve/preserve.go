// Package preserve implements the context-preservation strategies invoked by
// the rotation manager: what carries over into a fresh generation when a
// context is rotated, and how a generation is compacted in place when a check
// advises summarization.
//
// The strategies stay deliberately dumb about models: anything needing an LLM
// goes through the narrow condense.Condenser interface.
package preserve

import (
	"context"
	"fmt"

	"github.com/hupe1980/sessionkit/condense"
	"github.com/hupe1980/sessionkit/core"
)

// DefaultKeepRecent is the number of trailing events retained verbatim
// alongside a condensed summary.
const DefaultKeepRecent = 4

// NoopPreserver discards all context on rotation: the new generation starts
// empty. Useful when the workflow layer re-seeds context itself.
type NoopPreserver struct{}

var _ core.ContextPreserver = (*NoopPreserver)(nil)

// Preserve implements core.ContextPreserver.
func (NoopPreserver) Preserve(context.Context, core.ContextSnapshot) (core.Carryover, error) {
	return core.Carryover{}, nil
}

// TailPreserver carries the last KeepRecent events verbatim into the new
// generation without invoking a model.
type TailPreserver struct {
	KeepRecent int
}

var _ core.ContextPreserver = (*TailPreserver)(nil)

// Preserve implements core.ContextPreserver.
func (p *TailPreserver) Preserve(_ context.Context, snap core.ContextSnapshot) (core.Carryover, error) {
	keep := p.KeepRecent
	if keep <= 0 {
		keep = DefaultKeepRecent
	}
	return core.Carryover{Events: tail(snap.Events, keep)}, nil
}

// SummaryPreserver condenses the outgoing generation through a Condenser and
// carries the summary plus a verbatim tail of recent events forward.
type SummaryPreserver struct {
	condenser  condense.Condenser
	keepRecent int
}

var _ core.ContextPreserver = (*SummaryPreserver)(nil)

// NewSummaryPreserver creates a SummaryPreserver. keepRecent <= 0 falls back
// to DefaultKeepRecent.
func NewSummaryPreserver(c condense.Condenser, keepRecent int) *SummaryPreserver {
	if keepRecent <= 0 {
		keepRecent = DefaultKeepRecent
	}
	return &SummaryPreserver{condenser: c, keepRecent: keepRecent}
}

// Preserve implements core.ContextPreserver. A condensation failure fails the
// rotation attempt; the manager records it with the breaker and retries
// later.
func (p *SummaryPreserver) Preserve(ctx context.Context, snap core.ContextSnapshot) (core.Carryover, error) {
	if len(snap.Events) == 0 {
		return core.Carryover{}, nil
	}

	res, err := p.condenser.Condense(ctx, condense.Request{Transcript: snap.Events})
	if err != nil {
		return core.Carryover{}, fmt.Errorf("condense context: %w", err)
	}

	events := append([]core.Event{core.NewSummaryEvent(res.Summary)}, tail(snap.Events, p.keepRecent)...)
	return core.Carryover{Summary: res.Summary, Events: events}, nil
}

// InlineCompactor implements core.Summarizer: on SHOULD_SUMMARIZE it condenses
// everything but the recent tail and credits the freed tokens back to the
// generation's counter, buying time before a forced rotation.
type InlineCompactor struct {
	condenser  condense.Condenser
	keepRecent int
}

var _ core.Summarizer = (*InlineCompactor)(nil)

// NewInlineCompactor creates an InlineCompactor. keepRecent <= 0 falls back
// to DefaultKeepRecent.
func NewInlineCompactor(c condense.Condenser, keepRecent int) *InlineCompactor {
	if keepRecent <= 0 {
		keepRecent = DefaultKeepRecent
	}
	return &InlineCompactor{condenser: c, keepRecent: keepRecent}
}

// Summarize implements core.Summarizer.
func (s *InlineCompactor) Summarize(ctx context.Context, snap core.ContextSnapshot) ([]core.Event, int, error) {
	if len(snap.Events) <= s.keepRecent {
		return snap.Events, 0, nil
	}

	head := snap.Events[:len(snap.Events)-s.keepRecent]
	recent := tail(snap.Events, s.keepRecent)

	res, err := s.condenser.Condense(ctx, condense.Request{Transcript: head})
	if err != nil {
		return nil, 0, fmt.Errorf("condense context: %w", err)
	}

	summary := core.NewSummaryEvent(res.Summary)
	freed := estimateTokens(head) - estimateTokens([]core.Event{summary})
	if freed < 0 {
		freed = 0
	}
	return append([]core.Event{summary}, recent...), freed, nil
}

// tail returns the last n events (all of them when n >= len).
func tail(events []core.Event, n int) []core.Event {
	if len(events) <= n {
		return append([]core.Event{}, events...)
	}
	return append([]core.Event{}, events[len(events)-n:]...)
}

// estimateTokens approximates token cost as chars/4. Good enough for
// crediting compaction savings; exact accounting comes from the pipeline's
// usage reports.
func estimateTokens(events []core.Event) int {
	chars := 0
	for _, ev := range events {
		chars += len(ev.Role) + len(ev.Text)
	}
	return chars / 4
}
