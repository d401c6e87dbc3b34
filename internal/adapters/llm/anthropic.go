// Package llm provides ports.ChatProvider implementations backed by upstream model APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/ports"
)

// DefaultSystemPrompt is sent with every upstream request unless overridden.
const DefaultSystemPrompt = "You are a helpful assistant inside the AI Hub dashboard. Answer concisely."

// AnthropicConfig configures the Anthropic provider.
type AnthropicConfig struct {
	APIKey       string
	Model        string
	MaxTokens    int64
	SystemPrompt string
	// Options are appended to the client options, e.g. option.WithBaseURL in tests.
	Options []option.RequestOption
}

// Anthropic implements ports.ChatProvider using the Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	system    string
}

var _ ports.ChatProvider = (*Anthropic)(nil)

// NewAnthropic constructs the provider.
func NewAnthropic(cfg AnthropicConfig) (*Anthropic, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.Options...)
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		system:    cfg.SystemPrompt,
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

// Complete sends the history and prompt and joins the text blocks of the reply.
func (a *Anthropic) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.History)+1)
	for _, m := range req.History {
		block := anthropic.NewTextBlock(m.Content)
		if m.Speaker == chat.SpeakerAssistant {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: a.system}},
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: empty reply")
	}
	return b.String(), nil
}
