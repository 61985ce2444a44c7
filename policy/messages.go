package policy

import "github.com/hupe1980/sessionkit/core"

// MessagePolicy rotates on the number of messages exchanged within the active
// generation. A coarse proxy for context growth when token accounting is not
// available from the provider.
type MessagePolicy struct {
	maxMessages int
	thresholds
}

var _ core.RotationPolicy = (*MessagePolicy)(nil)

// NewMessagePolicy creates a message-count-based policy bounded by maxMessages.
func NewMessagePolicy(maxMessages int, early, force float64) (*MessagePolicy, error) {
	if maxMessages <= 0 {
		return nil, core.NewConfigurationError("max_messages", "must be positive")
	}
	t, err := newThresholds(early, force)
	if err != nil {
		return nil, err
	}
	return &MessagePolicy{maxMessages: maxMessages, thresholds: t}, nil
}

// Classify implements core.RotationPolicy.
func (p *MessagePolicy) Classify(u core.Usage) core.RotationStatus {
	return p.classify(p.Utilization(u))
}

// Utilization returns message_count / max_messages.
func (p *MessagePolicy) Utilization(u core.Usage) float64 {
	return float64(u.MessageCount) / float64(p.maxMessages)
}

// Name implements core.RotationPolicy.
func (p *MessagePolicy) Name() string { return "message" }
