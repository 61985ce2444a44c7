package core

import (
	"testing"
	"time"
)

func TestSession_ApplyUsageAndSnapshot(t *testing.T) {
	s := NewSession("s1", 1000)

	s.ApplyUsage(UsageDelta{Tokens: 100, Messages: 2, Elapsed: 5 * time.Second})
	s.ApplyUsage(UsageDelta{Tokens: 50})

	u := s.Snapshot(s.GenerationStarted)
	if u.TokensUsed != 150 || u.MessageCount != 2 {
		t.Fatalf("unexpected usage: %+v", u)
	}
	if u.ElapsedSeconds != 5 {
		t.Fatalf("expected reported elapsed to win over zero wall clock, got %v", u.ElapsedSeconds)
	}

	// Wall clock wins once it exceeds the reported elapsed.
	u = s.Snapshot(s.GenerationStarted.Add(time.Minute))
	if u.ElapsedSeconds != 60 {
		t.Fatalf("expected wall elapsed 60, got %v", u.ElapsedSeconds)
	}

	// Negative deltas never roll counters back.
	s.ApplyUsage(UsageDelta{Tokens: -10})
	if got := s.Snapshot(s.GenerationStarted).TokensUsed; got != 150 {
		t.Fatalf("negative delta applied: %d", got)
	}
}

func TestSession_CommitSwapIsAtomic(t *testing.T) {
	s := NewSession("s1", 1000)
	s.ApplyUsage(UsageDelta{Tokens: 900, Messages: 9})
	s.AddEvent(NewEvent("user", "old context"))

	if !s.BeginRotation() {
		t.Fatal("BeginRotation should succeed on idle session")
	}
	if s.BeginRotation() {
		t.Fatal("second BeginRotation must fail while one is active")
	}

	carry := []Event{NewSummaryEvent("condensed")}
	now := time.Now()
	gen := s.CommitSwap(carry, now)

	if gen != 2 {
		t.Fatalf("expected generation 2, got %d", gen)
	}
	if s.RotationActive() {
		t.Fatal("swap must clear the in-progress flag")
	}
	u := s.Snapshot(now)
	if u.TokensUsed != 0 || u.MessageCount != 0 || u.TokensBudget != 1000 {
		t.Fatalf("usage not reset (budget preserved): %+v", u)
	}
	events := s.GetEvents()
	if len(events) != 1 || events[0].Role != "summary" {
		t.Fatalf("carryover not installed: %+v", events)
	}
	if s.Rotations != 1 {
		t.Fatalf("rotation count not incremented: %d", s.Rotations)
	}
}

func TestSession_GenerationNeverDecreases(t *testing.T) {
	s := NewSession("s1", 1000)
	last := s.CurrentGeneration()
	for i := 0; i < 10; i++ {
		s.BeginRotation()
		gen := s.CommitSwap(nil, time.Now())
		if gen <= last {
			t.Fatalf("generation went backwards: %d -> %d", last, gen)
		}
		last = gen
	}
}

func TestSession_GetEventsIsDefensiveCopy(t *testing.T) {
	s := NewSession("s1", 1000)
	s.AddEvent(NewEvent("user", "hello"))

	events := s.GetEvents()
	events[0].Text = "mutated"

	if s.GetEvents()[0].Text != "hello" {
		t.Fatal("events slice should be copied on read")
	}
}

func TestSession_CreditTokensClampsAtZero(t *testing.T) {
	s := NewSession("s1", 1000)
	s.ApplyUsage(UsageDelta{Tokens: 100})

	s.CreditTokens(40)
	if got := s.Snapshot(s.GenerationStarted).TokensUsed; got != 60 {
		t.Fatalf("expected 60, got %d", got)
	}

	s.CreditTokens(500)
	if got := s.Snapshot(s.GenerationStarted).TokensUsed; got != 0 {
		t.Fatalf("expected clamp at 0, got %d", got)
	}
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("s1", 1000)
	s.AddEvent(NewEvent("user", "hi"))
	s.Metadata["k"] = "v"

	clone := s.Clone()
	if clone == s {
		t.Error("Clone should be a different pointer")
	}
	clone.AddEvent(NewEvent("user", "extra"))
	clone.Metadata["k2"] = "v2"

	if len(s.GetEvents()) != 1 {
		t.Error("original should not see clone's new event")
	}
	if _, ok := s.Metadata["k2"]; ok {
		t.Error("original should not see clone's metadata")
	}
}

func TestRotationStatus_Strings(t *testing.T) {
	cases := map[RotationStatus]string{
		StatusContinue:        "CONTINUE",
		StatusShouldSummarize: "SHOULD_SUMMARIZE",
		StatusShouldRotate:    "SHOULD_ROTATE",
		StatusMustRotate:      "MUST_ROTATE",
		StatusRotationBlocked: "ROTATION_BLOCKED",
	}
	for status, want := range cases {
		if status.String() != want {
			t.Errorf("%d: want %s, got %s", status, want, status.String())
		}
	}
	if !StatusMustRotate.NeedsRotation() || !StatusShouldRotate.NeedsRotation() {
		t.Error("rotate statuses must need rotation")
	}
	if StatusContinue.NeedsRotation() || StatusRotationBlocked.NeedsRotation() {
		t.Error("non-rotate statuses must not need rotation")
	}
}

func TestCircuitState_Strings(t *testing.T) {
	cases := map[CircuitState]string{
		CircuitClosed:   "CLOSED",
		CircuitOpen:     "OPEN",
		CircuitHalfOpen: "HALF_OPEN",
	}
	for state, want := range cases {
		if state.String() != want {
			t.Errorf("%d: want %s, got %s", state, want, state.String())
		}
	}
}
