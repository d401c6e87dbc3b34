package config

import (
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredAuthEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ADMIN_GROUP", "aihub-admins")
	t.Setenv("USER_GROUP", "aihub-users")
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")
	t.Setenv("ADMIN_GROUP", "cn=admins,ou=groups,dc=example,dc=org")
	t.Setenv("USER_GROUP", "cn=users,ou=groups,dc=example,dc=org")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://app.example.com/auth/callback")
	t.Setenv("OAUTH_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("OAUTH_SCOPE", "openid profile email")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_GROUPS", "admins;devs")
	t.Setenv("AUTH_FALLBACK_PATH", "/user/credits")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			ClientSecret: "super-secret",
			RedirectURL:  "https://app.example.com/auth/callback",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		DevAuth: DevAuthConfig{
			UserID:    "dev-user",
			Email:     "dev@example.com",
			FirstName: "Dev",
			Groups:    []string{"admins", "devs"},
		},
		AdminGroup:   "cn=admins,ou=groups,dc=example,dc=org",
		UserGroup:    "cn=users,ou=groups,dc=example,dc=org",
		LoginPath:     "/auth/login",
		FallbackPath:  "/user/credits",
		SessionMaxAge: 12 * time.Hour,
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAppConfig_RequiresGroups(t *testing.T) {
	var cfg AppConfig
	require.Error(t, env.Parse(&cfg))
}

func TestAuthMode_UnmarshalText(t *testing.T) {
	var m AuthMode
	require.NoError(t, m.UnmarshalText([]byte("MOCK")))
	assert.Equal(t, AuthModeMock, m)
	require.Error(t, m.UnmarshalText([]byte("saml")))
}

func TestAppConfig_Defaults(t *testing.T) {
	setRequiredAuthEnv(t)

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 90*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionMaxAge)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "aihub", cfg.Observability.Prefix)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, "aihub:", cfg.Redis.KeyPrefix)
	assert.Empty(t, cfg.Nav.Path)

	assert.Equal(t, 30*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, int64(1), cfg.Chat.CreditsPerMessage)
	assert.Equal(t, int64(100), cfg.Chat.StartingCredits)
	assert.True(t, cfg.Chat.EchoEnabled)
	assert.False(t, cfg.Chat.OpenAI.Enabled())
	assert.False(t, cfg.Chat.Anthropic.Enabled())
}

func TestAppConfig_ParseChatEnv(t *testing.T) {
	setRequiredAuthEnv(t)
	t.Setenv("CHAT_OPENAI_API_KEY", "sk-test")
	t.Setenv("CHAT_OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("CHAT_ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("CHAT_TIMEOUT", "5s")
	t.Setenv("CHAT_RATE_PER_MINUTE", "6")
	t.Setenv("CHAT_CREDITS_PER_MESSAGE", "3")
	t.Setenv("NAV_CONFIG_PATH", "/etc/aihub/nav.yaml")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))

	assert.True(t, cfg.Chat.OpenAI.Enabled())
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.OpenAI.Model)
	assert.Equal(t, int64(1024), cfg.Chat.OpenAI.MaxTokens)
	assert.True(t, cfg.Chat.Anthropic.Enabled())
	assert.Equal(t, 5*time.Second, cfg.Chat.Timeout)
	assert.InDelta(t, 6.0, cfg.Chat.RatePerMinute, 0.001)
	assert.Equal(t, int64(3), cfg.Chat.CreditsPerMessage)
	assert.Equal(t, "/etc/aihub/nav.yaml", cfg.Nav.Path)
}

func TestChatConfig_Sanitize(t *testing.T) {
	cfg := ChatConfig{
		Timeout:           -time.Second,
		RatePerMinute:     -1,
		Burst:             0,
		CreditsPerMessage: -2,
		StartingCredits:   -5,
		HistoryTurns:      500,
	}
	cfg.Sanitize()

	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Zero(t, cfg.RatePerMinute)
	assert.Equal(t, 1, cfg.Burst)
	assert.Zero(t, cfg.CreditsPerMessage)
	assert.Zero(t, cfg.StartingCredits)
	assert.Equal(t, 50, cfg.HistoryTurns)
}

func TestAuthConfig_Sanitize(t *testing.T) {
	cfg := AuthConfig{LoginPath: "  ", FallbackPath: " /user/activity "}
	cfg.Sanitize()
	assert.Equal(t, "/auth/login", cfg.LoginPath)
	assert.Equal(t, "/user/activity", cfg.FallbackPath)
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	low := HTTPConfig{CompressionLevel: 0}
	low.Sanitize()
	assert.Equal(t, 1, low.CompressionLevel)

	high := HTTPConfig{CompressionLevel: 12}
	high.Sanitize()
	assert.Equal(t, 9, high.CompressionLevel)
	assert.Equal(t, 90*time.Second, high.WriteTimeout)

	slow := HTTPConfig{WriteTimeout: 30 * time.Second}
	slow.FitChatTimeout(60 * time.Second)
	assert.Equal(t, 75*time.Second, slow.WriteTimeout)
	slow.FitChatTimeout(time.Second)
	assert.Equal(t, 75*time.Second, slow.WriteTimeout)
}

func TestAppConfig_DetectDevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}

func TestObservabilityConfig_Parse(t *testing.T) {
	setRequiredAuthEnv(t)
	t.Setenv("METRICS_ENABLED", "true")
	t.Setenv("STATSD_ADDRESS", " statsd:8125 ")
	t.Setenv("METRICS_PREFIX", "aihub.web.")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "statsd:8125", cfg.Observability.StatsdAddress)
	assert.Equal(t, "aihub.web", cfg.Observability.Prefix)
}

func TestObservabilityConfig_SanitizeDisablesWithoutAddress(t *testing.T) {
	cfg := ObservabilityConfig{MetricsEnabled: true, StatsdAddress: "  "}
	cfg.Sanitize()
	assert.False(t, cfg.MetricsEnabled)
}
