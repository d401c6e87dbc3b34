package config

import "time"

// ChatProviderConfig holds the credentials and model of one upstream provider.
// A provider without an API key is not registered.
type ChatProviderConfig struct {
	APIKey    string `env:"API_KEY"`
	Model     string `env:"MODEL"`
	BaseURL   string `env:"BASE_URL"`
	MaxTokens int64  `env:"MAX_TOKENS" envDefault:"1024"`
}

// Enabled reports whether the provider has credentials.
func (p ChatProviderConfig) Enabled() bool { return p.APIKey != "" }

// ChatConfig controls the chat relay, credits and rate limits.
type ChatConfig struct {
	OpenAI    ChatProviderConfig `envPrefix:"OPENAI_"`
	Anthropic ChatProviderConfig `envPrefix:"ANTHROPIC_"`

	// EchoEnabled registers the offline echo provider, used in development and demos.
	EchoEnabled bool `env:"ECHO_ENABLED" envDefault:"true"`

	// SystemPrompt overrides the default system prompt sent upstream.
	SystemPrompt string `env:"SYSTEM_PROMPT"`

	// Timeout bounds a single upstream completion.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`

	// RatePerMinute is the sustained per-user message rate; zero disables limiting.
	RatePerMinute float64 `env:"RATE_PER_MINUTE" envDefault:"20"`
	Burst         int     `env:"BURST"           envDefault:"5"`

	// CreditsPerMessage is charged before each upstream call and refunded on failure.
	CreditsPerMessage int64 `env:"CREDITS_PER_MESSAGE" envDefault:"1"`

	// StartingCredits is granted when a user is first seen.
	StartingCredits int64 `env:"STARTING_CREDITS" envDefault:"100"`

	// HistoryTurns is how many earlier prompt/reply pairs are sent with each prompt.
	HistoryTurns int `env:"HISTORY_TURNS" envDefault:"5"`

	// UserHistory and GlobalHistory cap the stored chat log lists.
	UserHistory   int `env:"USER_HISTORY"   envDefault:"200"`
	GlobalHistory int `env:"GLOBAL_HISTORY" envDefault:"1000"`
}

// Sanitize applies guardrails to chat configuration values.
func (c *ChatConfig) Sanitize() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RatePerMinute < 0 {
		c.RatePerMinute = 0
	}
	if c.Burst < 1 {
		c.Burst = 1
	}
	if c.CreditsPerMessage < 0 {
		c.CreditsPerMessage = 0
	}
	if c.StartingCredits < 0 {
		c.StartingCredits = 0
	}
	if c.HistoryTurns < 0 {
		c.HistoryTurns = 0
	}
	if c.HistoryTurns > 50 {
		c.HistoryTurns = 50
	}
}
