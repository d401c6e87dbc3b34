package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	openaiopt "github.com/openai/openai-go/v3/option"
	"github.com/target/aihub-dashboard/config"
	"github.com/target/aihub-dashboard/internal/adapters/llm"
	"github.com/target/aihub-dashboard/internal/domain/nav"
	"github.com/target/aihub-dashboard/internal/ports"
)

// Models used when a provider is enabled without an explicit model.
const (
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-haiku-latest"
)

// BuildChatProviders registers every provider that has credentials, plus the
// echo provider when enabled. At least one provider must result.
func BuildChatProviders(cfg config.ChatConfig, logger *slog.Logger) ([]ports.ChatProvider, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var providers []ports.ChatProvider

	if cfg.OpenAI.Enabled() {
		var opts []openaiopt.RequestOption
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, openaiopt.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		p, err := llm.NewOpenAI(llm.OpenAIConfig{
			APIKey:       cfg.OpenAI.APIKey,
			Model:        orDefault(cfg.OpenAI.Model, defaultOpenAIModel),
			MaxTokens:    cfg.OpenAI.MaxTokens,
			SystemPrompt: cfg.SystemPrompt,
			Options:      opts,
		})
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.Anthropic.Enabled() {
		var opts []anthropicopt.RequestOption
		if cfg.Anthropic.BaseURL != "" {
			opts = append(opts, anthropicopt.WithBaseURL(cfg.Anthropic.BaseURL))
		}
		p, err := llm.NewAnthropic(llm.AnthropicConfig{
			APIKey:       cfg.Anthropic.APIKey,
			Model:        orDefault(cfg.Anthropic.Model, defaultAnthropicModel),
			MaxTokens:    cfg.Anthropic.MaxTokens,
			SystemPrompt: cfg.SystemPrompt,
			Options:      opts,
		})
		if err != nil {
			return nil, fmt.Errorf("anthropic provider: %w", err)
		}
		providers = append(providers, p)
	}

	if cfg.EchoEnabled {
		providers = append(providers, llm.Echo{})
	}

	if len(providers) == 0 {
		return nil, errors.New("no chat providers configured: set CHAT_OPENAI_API_KEY, CHAT_ANTHROPIC_API_KEY or CHAT_ECHO_ENABLED")
	}

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	logger.Info("chat providers registered", "providers", names)
	return providers, nil
}

// LoadNavTree reads the route tree from path, or returns the built-in tree when path is empty.
// A malformed file aborts startup.
func LoadNavTree(path string, logger *slog.Logger) (*nav.Tree, error) {
	if path == "" {
		return nav.DefaultTree(), nil
	}
	tree, err := nav.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("navigation tree loaded", "path", path)
	}
	return tree, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
