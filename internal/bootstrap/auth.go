package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/aihub-dashboard/config"
	"github.com/target/aihub-dashboard/internal/adapters/authroles"
	"github.com/target/aihub-dashboard/internal/adapters/devauth"
	"github.com/target/aihub-dashboard/internal/adapters/oidc"
	redisadapter "github.com/target/aihub-dashboard/internal/adapters/redis"
	"github.com/target/aihub-dashboard/internal/ports"
	"github.com/target/aihub-dashboard/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth        config.AuthConfig
	RedisClient redis.UniversalClient
	Keys        redisadapter.Keyspace
	// OnLogin runs after each sign-in; NewServices uses it to open the credit account.
	OnLogin service.LoginHook
	Logger  *slog.Logger
}

// BuildAuthService creates an auth service for the configured mode, storing
// sessions in Redis. It returns nil, after logging why, when the mode cannot
// be served.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisClient == nil {
		logger.Warn("auth service disabled: redis client not configured", "mode", cfg.Auth.Mode)
		return nil
	}

	provider, err := buildAuthProvider(cfg.Auth)
	if err != nil {
		logger.Warn("auth service disabled", "mode", cfg.Auth.Mode, "error", err)
		return nil
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStore(cfg.RedisClient, cfg.Keys),
		Roles: authroles.StaticRoleMapper{
			AdminGroup: cfg.Auth.AdminGroup,
			UserGroup:  cfg.Auth.UserGroup,
		},
		MaxLifetime: cfg.Auth.SessionMaxAge,
		OnLogin:     cfg.OnLogin,
		Logger:      logger,
	})
}

//nolint:ireturn // the provider is chosen by mode
func buildAuthProvider(auth config.AuthConfig) (ports.AuthProvider, error) {
	switch auth.Mode {
	case config.AuthModeMock:
		dev := auth.DevAuth
		return devauth.NewProvider(devauth.Config{
			UserID:          dev.UserID,
			Email:           dev.Email,
			FirstName:       dev.FirstName,
			LastName:        dev.LastName,
			Groups:          dev.Groups,
			SessionDuration: auth.SessionMaxAge,
		})

	case config.AuthModeOAuth:
		o := auth.OAuth
		var missing []string
		for _, kv := range [][2]string{
			{"OAUTH_DISCOVERY_URL", o.DiscoveryURL},
			{"OAUTH_CLIENT_ID", o.ClientID},
			{"OAUTH_CLIENT_SECRET", o.ClientSecret},
		} {
			if kv[1] == "" {
				missing = append(missing, kv[0])
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("oauth mode missing %v", missing)
		}
		return oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Scope:        o.Scope,
			DiscoveryURL: o.DiscoveryURL,
		})

	default:
		return nil, errors.New("unknown auth mode")
	}
}
