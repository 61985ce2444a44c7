package core

import (
	"sync"
	"time"
)

// Session represents a budgeted conversational container. Its context is
// versioned by Generation: a monotonic counter starting at 1 and incremented
// on every rotation. Usage accumulates for the active generation only and is
// reset by the swap.
//
// Contract:
//   - Generation only increases, never decreases or repeats
//   - A swap is all-or-nothing: generation increment, usage reset and event
//     replacement commit under one critical section
//   - GetEvents returns a defensive copy to avoid external mutation
//   - The rotation manager is the sole mutator; other collaborators read
//     through snapshots.
type Session struct {
	ID                 string            `json:"id"`
	Generation         int64             `json:"generation"`
	Usage              Usage             `json:"usage"`
	Events             []Event           `json:"events"`
	RotationInProgress bool              `json:"rotation_in_progress"`
	Rotations          int               `json:"rotations"`
	GenerationStarted  time.Time         `json:"generation_started"`
	Created            time.Time         `json:"created"`
	Updated            time.Time         `json:"updated"`
	Metadata           map[string]string `json:"metadata"`
	mu                 sync.RWMutex
}

// NewSession creates a session on generation 1 with the given token budget.
func NewSession(id string, tokensBudget int) *Session {
	now := time.Now()
	return &Session{
		ID:                id,
		Generation:        1,
		Usage:             Usage{TokensBudget: tokensBudget},
		Events:            []Event{},
		GenerationStarted: now,
		Created:           now,
		Updated:           now,
		Metadata:          map[string]string{},
	}
}

// ApplyUsage accumulates a usage delta for the active generation.
func (s *Session) ApplyUsage(d UsageDelta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Usage = s.Usage.Add(d)
	s.Updated = time.Now()
}

// Snapshot returns the usage counters as of now. ElapsedSeconds is the larger
// of the explicitly reported elapsed time and the wall clock since the
// generation started, so both pipeline-clocked and self-clocked callers see a
// monotone value.
func (s *Session) Snapshot(now time.Time) Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.Usage
	if wall := now.Sub(s.GenerationStarted).Seconds(); wall > u.ElapsedSeconds {
		u.ElapsedSeconds = wall
	}
	return u
}

// CurrentGeneration returns the active generation tag.
func (s *Session) CurrentGeneration() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Generation
}

// AddEvent appends a conversation record to the active generation's history.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ev)
	s.Updated = time.Now()
}

// GetEvents returns a defensive copy of the active generation's history.
func (s *Session) GetEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return events
}

// ReplaceEvents swaps the event history in place without touching the
// generation. Used by in-place compaction on SHOULD_SUMMARIZE.
func (s *Session) ReplaceEvents(events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append([]Event{}, events...)
	s.Updated = time.Now()
}

// CreditTokens reduces the token counter after in-place compaction freed
// budget. The counter never goes below zero.
func (s *Session) CreditTokens(tokens int) {
	if tokens <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Usage.TokensUsed -= tokens
	if s.Usage.TokensUsed < 0 {
		s.Usage.TokensUsed = 0
	}
	s.Updated = time.Now()
}

// BeginRotation atomically sets the rotation-in-progress flag. It returns
// false if a rotation is already active, guaranteeing at most one rotation in
// flight per session.
func (s *Session) BeginRotation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RotationInProgress {
		return false
	}
	s.RotationInProgress = true
	return true
}

// EndRotation clears the rotation-in-progress flag after a failed or blocked
// attempt. A successful attempt clears it inside CommitSwap instead.
func (s *Session) EndRotation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RotationInProgress = false
}

// RotationActive reports whether a rotation is currently in flight.
func (s *Session) RotationActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RotationInProgress
}

// CommitSwap atomically commits a rotation: the generation increments by one,
// usage resets (budget preserved), the event history becomes the carryover
// and the in-progress flag clears. Until it runs, the old generation remains
// authoritative; no partial swap is ever observable. Returns the new
// generation tag.
func (s *Session) CommitSwap(carryover []Event, now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Generation++
	s.Usage = Usage{TokensBudget: s.Usage.TokensBudget}
	s.Events = append([]Event{}, carryover...)
	s.GenerationStarted = now
	s.Rotations++
	s.RotationInProgress = false
	s.Updated = now
	return s.Generation
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:                 s.ID,
		Generation:         s.Generation,
		Usage:              s.Usage,
		Events:             make([]Event, len(s.Events)),
		RotationInProgress: s.RotationInProgress,
		Rotations:          s.Rotations,
		GenerationStarted:  s.GenerationStarted,
		Created:            s.Created,
		Updated:            s.Updated,
		Metadata:           make(map[string]string, len(s.Metadata)),
	}
	copy(clone.Events, s.Events)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// SessionStore persists sessions across rotation generations.
type SessionStore interface {
	Create(id string, tokensBudget int) (*Session, error)
	Get(id string) (*Session, error)
	Delete(id string) error
}
