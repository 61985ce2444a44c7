// Package anthropic provides a condenser backed by the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hupe1980/sessionkit/condense"
)

const defaultInstructions = "Condense the following conversation into a compact summary that " +
	"preserves decisions, open tasks and key facts. The summary seeds a fresh context window, " +
	"so include everything a successor needs and nothing else."

// Options configures the Anthropic condenser (model id, temperature, max
// tokens, API key).
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Condenser wraps the Anthropic Messages API behind the generic
// condense.Condenser interface.
type Condenser struct {
	client *anthropic.Client
	opts   Options
}

var _ condense.Condenser = (*Condenser)(nil)

// NewCondenser creates a new Anthropic condenser using the official client.
func NewCondenser(optFns ...func(o *Options)) *Condenser {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   1024,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Condenser{client: &client, opts: opts}
}

// NewCondenserFromClient creates a new Anthropic condenser from an existing client.
func NewCondenserFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Condenser {
	opts := Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   1024,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Condenser{client: client, opts: opts}
}

// Condense implements condense.Condenser via a single non-streaming Messages
// call: instructions as the system prompt, the rendered transcript as the
// sole user message.
func (c *Condenser) Condense(ctx context.Context, req condense.Request) (*condense.Result, error) {
	instructions := req.Instructions
	if instructions == "" {
		instructions = defaultInstructions
	}
	maxTokens := c.opts.MaxTokens
	if req.MaxSummaryTokens > 0 {
		maxTokens = req.MaxSummaryTokens
	}

	params := anthropic.MessageNewParams{
		Model:       c.opts.Model,
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(c.opts.Temperature),
		System:      []anthropic.TextBlockParam{{Text: instructions}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(condense.RenderTranscript(req.Transcript))),
		},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var summary string
	for _, block := range resp.Content {
		if block.Type == "text" {
			summary += block.AsText().Text
		}
	}
	if summary == "" {
		return nil, fmt.Errorf("anthropic returned an empty summary")
	}

	return &condense.Result{
		Summary:    summary,
		TokensUsed: int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}, nil
}

// Info returns metadata describing this Anthropic condenser implementation.
func (c *Condenser) Info() condense.Info {
	return condense.Info{
		Name:     string(c.opts.Model),
		Provider: "anthropic",
	}
}
