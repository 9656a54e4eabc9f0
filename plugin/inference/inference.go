// Package inference wraps the OpenAI-compatible completion backend the chat
// proxy forwards to. Any endpoint speaking that protocol works: a hosted
// provider, a local llama.cpp server, or a relay.
package inference

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrContentFiltered reports that the backend refused to complete on content
// grounds rather than failing. Callers surface it to the user instead of
// retrying.
var ErrContentFiltered = errors.New("completion blocked by content filter")

// Completer produces one assistant reply for one user message.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, message string) (string, error)
}

// Config selects the backend.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client is the langchaingo-backed Completer.
type Client struct {
	model       llms.Model
	maxTokens   int
	temperature float64
}

// NewClient builds a client for the configured backend.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "init inference backend")
	}
	return &Client{
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends one turn and returns the reply text. An empty completion is
// an error, never an empty success.
func (c *Client) Complete(ctx context.Context, systemPrompt, message string) (string, error) {
	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(llms.ChatMessageTypeHuman, message),
		},
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion returned")
	}
	choice := resp.Choices[0]
	if choice.StopReason == "content_filter" {
		return "", ErrContentFiltered
	}
	if strings.TrimSpace(choice.Content) == "" {
		return "", errors.New("no completion returned")
	}
	return strings.TrimSpace(choice.Content), nil
}
