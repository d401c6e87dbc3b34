package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Authentication and guard configuration
//   - redis.go: Session, chat log and credit storage
//   - http.go: HTTP server configuration
//   - chat.go: Chat providers, credits and rate limits
//   - observability.go: StatsD metrics
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, caching, etc.)
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Redis configuration
	Redis RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Navigation tree configuration
	Nav NavConfig

	// Chat configuration
	Chat ChatConfig `envPrefix:"CHAT_"`

	// Metrics configuration
	Observability ObservabilityConfig
}

// NavConfig points at an optional YAML route tree.
type NavConfig struct {
	// Path is a YAML file describing the navigation tree. Empty uses the built-in tree.
	Path string `env:"NAV_CONFIG_PATH"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Auth.Sanitize()
	c.Chat.Sanitize()
	c.Observability.Sanitize()
	c.HTTP.FitChatTimeout(c.Chat.Timeout)

	// Check NODE_ENV for dev mode
	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// This is called by Sanitize() to ensure IsDev is set correctly.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
