package core

import "time"

// Usage captures cumulative resource consumption for the active generation of
// a session. It is pure data; policies read it, the rotation manager resets it
// on every generation swap.
type Usage struct {
	TokensUsed     int     `json:"tokens_used"`
	TokensBudget   int     `json:"tokens_budget"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	MessageCount   int     `json:"message_count"`
}

// UsageDelta is the increment reported by the surrounding pipeline after each
// operation. Zero-valued fields are no-ops, so callers report only the
// dimensions they track.
type UsageDelta struct {
	Tokens   int
	Elapsed  time.Duration
	Messages int
}

// Add returns a copy of u with the delta applied. Negative deltas are clamped
// so counters never go backwards within a generation.
func (u Usage) Add(d UsageDelta) Usage {
	if d.Tokens > 0 {
		u.TokensUsed += d.Tokens
	}
	if d.Elapsed > 0 {
		u.ElapsedSeconds += d.Elapsed.Seconds()
	}
	if d.Messages > 0 {
		u.MessageCount += d.Messages
	}
	return u
}
