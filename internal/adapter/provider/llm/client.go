package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/wordfall/wordfall/internal/domain"
)

// Client is a thin chat-completion client over the Anthropic API.
// It is the last lookup tier (translation fallback) and the extras source.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	log       *slog.Logger
}

// New creates a Client. Returns domain.ErrAuthMissing when no API key is
// configured, so the caller can wire the tier as unavailable.
func New(apiKey, model string, maxTokens int, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, domain.ErrAuthMissing
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}

	return &Client{
		api:       anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
		log:       logger.With("adapter", "llm"),
	}, nil
}

// Complete sends one system instruction plus user text and returns the
// model's free-text reply.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	c.log.DebugContext(ctx, "llm request", slog.String("model", c.model))

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm: completion: %w", err)
	}

	if len(msg.Content) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}

	return msg.Content[0].Text, nil
}
