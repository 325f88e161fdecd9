// Package llm generates analysis text with the Anthropic Messages API.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	DefaultModel       = "claude-haiku-4-5"
	DefaultTemperature = 0.7

	// SystemInstruction is sent with every analysis request.
	SystemInstruction = "You are an expert in music and genre analysis. Always return a valid JSON object, with no extra text."
)

var ErrEmptyResponse = errors.New("no text content in model response")

type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Generator struct {
	client anthropic.Client
	model  string
}

// New creates a Generator. Extra options are passed to the Anthropic client,
// e.g. option.WithBaseURL in tests.
func New(apiKey, model string, opts ...option.RequestOption) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Generator{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

func (g *Generator) Model() string { return g.model }

// Generate sends one message and returns the first text block of the reply.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if req.MaxTokens <= 0 {
		return "", fmt.Errorf("max tokens must be positive, got %d", req.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	message, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
