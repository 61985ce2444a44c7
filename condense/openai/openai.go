// Package openai provides a condenser backed by the OpenAI Chat Completions
// API. It adapts sessionkit's normalized condense.Request into the SDK's
// message format and back.
package openai

import (
	"context"
	"fmt"

	"github.com/hupe1980/sessionkit/condense"
	"github.com/openai/openai-go"
)

const defaultInstructions = "Condense the following conversation into a compact summary that " +
	"preserves decisions, open tasks and key facts. The summary seeds a fresh context window, " +
	"so include everything a successor needs and nothing else."

// Options configure the OpenAI condenser. Fields mirror a subset of Chat
// Completion parameters intentionally kept minimal.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Condenser wraps the OpenAI Chat Completions API behind the generic
// condense.Condenser interface.
type Condenser struct {
	client *openai.Client
	opts   Options
}

var _ condense.Condenser = (*Condenser)(nil)

// NewCondenser creates a new OpenAI condenser using the official client.
func NewCondenser(optFns ...func(o *Options)) *Condenser {
	client := openai.NewClient()
	return NewCondenserFromClient(&client, optFns...)
}

// NewCondenserFromClient creates a new OpenAI condenser from an existing client.
func NewCondenserFromClient(client *openai.Client, optFns ...func(o *Options)) *Condenser {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.3,
		MaxCompletionTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Condenser{client: client, opts: opts}
}

// Condense implements condense.Condenser via a single non-streaming chat
// completion: instructions as the system message, the rendered transcript as
// the user message.
func (c *Condenser) Condense(ctx context.Context, req condense.Request) (*condense.Result, error) {
	instructions := req.Instructions
	if instructions == "" {
		instructions = defaultInstructions
	}
	maxTokens := c.opts.MaxCompletionTokens
	if req.MaxSummaryTokens > 0 {
		maxTokens = req.MaxSummaryTokens
	}

	params := openai.ChatCompletionNewParams{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(condense.RenderTranscript(req.Transcript)),
		},
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai returned an empty summary")
	}

	return &condense.Result{
		Summary:    resp.Choices[0].Message.Content,
		TokensUsed: int(resp.Usage.TotalTokens),
	}, nil
}

// Info returns metadata describing this OpenAI condenser implementation.
func (c *Condenser) Info() condense.Info {
	return condense.Info{
		Name:     c.opts.Model,
		Provider: "openai",
	}
}
