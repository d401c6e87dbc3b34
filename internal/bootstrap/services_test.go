package bootstrap

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/config"
	"github.com/target/aihub-dashboard/internal/adapters/llm"
	"github.com/target/aihub-dashboard/internal/ports"
)

// offlineDeps points at a Redis that is never reachable; nothing in wiring dials it.
func offlineDeps(t *testing.T) *ServiceDeps {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:0",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.AppConfig{
		Auth: config.AuthConfig{
			Mode:       config.AuthModeMock,
			AdminGroup: "admins",
			UserGroup:  "users",
			DevAuth:    config.DevAuthConfig{UserID: "dev", Email: "dev@example.com", Groups: []string{"admins"}},
		},
		Redis: config.RedisConfig{KeyPrefix: "test:"},
		Chat:  config.ChatConfig{EchoEnabled: true, CreditsPerMessage: 1, StartingCredits: 5},
	}
	cfg.Sanitize()
	return &ServiceDeps{
		Config:      cfg,
		RedisClient: client,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestNewServices(t *testing.T) {
	svcs, err := NewServices(offlineDeps(t))
	require.NoError(t, err)

	assert.NotNil(t, svcs.Auth)
	assert.NotNil(t, svcs.Dashboard)
	assert.NotNil(t, svcs.Moderation)
	assert.NotNil(t, svcs.Tree)
	assert.Equal(t, []string{"echo"}, svcs.Chat.Providers())
	assert.Equal(t, 1, svcs.Catalog.EnabledCount())
}

func TestNewServicesProviderOverride(t *testing.T) {
	deps := offlineDeps(t)
	deps.Config.Chat.EchoEnabled = false
	deps.Providers = []ports.ChatProvider{llm.Echo{}}

	svcs, err := NewServices(deps)
	require.NoError(t, err)
	assert.True(t, svcs.Chat.HasProvider("echo"))
}

func TestNewServicesErrors(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	deps := offlineDeps(t)
	deps.RedisClient = nil
	_, err = NewServices(deps)
	require.ErrorContains(t, err, "redis client is required")

	deps = offlineDeps(t)
	deps.Config.Auth.Mode = config.AuthModeOAuth
	_, err = NewServices(deps)
	require.ErrorContains(t, err, "not fully configured")

	deps = offlineDeps(t)
	deps.Config.Chat.EchoEnabled = false
	_, err = NewServices(deps)
	require.ErrorContains(t, err, "no chat providers configured")

	deps = offlineDeps(t)
	deps.Config.Nav.Path = "/does/not/exist.yaml"
	_, err = NewServices(deps)
	require.Error(t, err)
}

func TestBuildHTTPHandler(t *testing.T) {
	deps := offlineDeps(t)
	svcs, err := NewServices(deps)
	require.NoError(t, err)

	h, err := buildHTTPHandler(httpHandlerConfig{
		Logger:   deps.Logger,
		Services: routerServices(deps.Config, svcs, deps.Logger),
		HTTP:     config.HTTPConfig{CompressionEnabled: true, CompressionLevel: 5},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/user", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/credits", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login?redirect_uri=%2Fuser%2Fcredits", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBuildHTTPHandlerRejectsBadGuardPaths(t *testing.T) {
	deps := offlineDeps(t)
	svcs, err := NewServices(deps)
	require.NoError(t, err)

	deps.Config.Auth.FallbackPath = "https://evil.example.com"
	_, err = buildHTTPHandler(httpHandlerConfig{
		Logger:   deps.Logger,
		Services: routerServices(deps.Config, svcs, deps.Logger),
	})
	require.Error(t, err)

	svcs.Auth = nil
	deps.Config.Auth.FallbackPath = "/user"
	_, err = buildHTTPHandler(httpHandlerConfig{
		Logger:   deps.Logger,
		Services: routerServices(deps.Config, svcs, deps.Logger),
	})
	require.ErrorContains(t, err, "auth service is required")
}
