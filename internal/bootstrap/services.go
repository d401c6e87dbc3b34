package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/aihub-dashboard/config"
	redisadapter "github.com/target/aihub-dashboard/internal/adapters/redis"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/domain/nav"
	"github.com/target/aihub-dashboard/internal/observability/metrics"
	"github.com/target/aihub-dashboard/internal/ports"
	"github.com/target/aihub-dashboard/internal/service"
)

// ServiceContainer holds the services the HTTP layer is built from.
type ServiceContainer struct {
	Auth       *service.AuthService
	Chat       *service.ChatService
	Credits    *service.CreditService
	Catalog    *service.CatalogService
	Dashboard  *service.DashboardService
	Moderation *service.ModerationService
	Tree       *nav.Tree
	Metrics    metrics.Sink
	// Ping checks the backing store for /healthz.
	Ping func(ctx context.Context) error
}

// ServiceDeps groups the dependencies for NewServices.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	// Providers overrides provider construction from Config.Chat, mainly for tests.
	Providers []ports.ChatProvider
	// Metrics defaults to metrics.Discard.
	Metrics metrics.Sink
	Logger  *slog.Logger
}

// NewServices wires the domain services on top of Redis.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service config is required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sink := deps.Metrics
	if sink == nil {
		sink = metrics.Discard
	}
	cfg := deps.Config
	keys := redisadapter.Keyspace{Prefix: cfg.Redis.KeyPrefix}

	tree, err := LoadNavTree(cfg.Nav.Path, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	providers := deps.Providers
	if len(providers) == 0 {
		if providers, err = BuildChatProviders(cfg.Chat, logger); err != nil {
			return ServiceContainer{}, err
		}
	}

	chatLog := redisadapter.NewChatLog(deps.RedisClient, redisadapter.ChatLogOptions{
		Keys:          keys,
		UserHistory:   cfg.Chat.UserHistory,
		GlobalHistory: cfg.Chat.GlobalHistory,
	})

	credits, err := service.NewCreditService(service.CreditServiceOptions{
		Store:    redisadapter.NewCreditStore(deps.RedisClient, keys),
		Starting: cfg.Chat.StartingCredits,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("credit service: %w", err)
	}

	auth := BuildAuthService(AuthConfig{
		Auth:        cfg.Auth,
		RedisClient: deps.RedisClient,
		Keys:        keys,
		OnLogin:     openCreditAccount(credits),
		Logger:      logger,
	})
	if auth == nil {
		return ServiceContainer{}, fmt.Errorf("auth mode %q is not fully configured", cfg.Auth.Mode)
	}

	chat, err := service.NewChatService(service.ChatServiceOptions{
		Providers: providers,
		Stores:    service.ChatStores{Log: chatLog, Credits: credits, Logger: logger},
		Config: service.ChatConfig{
			Timeout:           cfg.Chat.Timeout,
			CreditsPerMessage: cfg.Chat.CreditsPerMessage,
			RatePerMinute:     cfg.Chat.RatePerMinute,
			Burst:             cfg.Chat.Burst,
			HistoryTurns:      cfg.Chat.HistoryTurns,
		},
		Metrics: sink,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("chat service: %w", err)
	}

	catalog := service.NewCatalogService(chat.Providers())
	dashboard, err := service.NewDashboardService(service.DashboardServiceOptions{
		Chat:    chat,
		Credits: credits,
		Catalog: catalog,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("dashboard service: %w", err)
	}
	moderation, err := service.NewModerationService(chatLog)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("moderation service: %w", err)
	}

	client := deps.RedisClient
	return ServiceContainer{
		Auth:       auth,
		Chat:       chat,
		Credits:    credits,
		Catalog:    catalog,
		Dashboard:  dashboard,
		Moderation: moderation,
		Tree:       tree,
		Metrics:    sink,
		Ping:       func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}, nil
}

// openCreditAccount grants the starting balance at first sign-in so the
// dashboard shows it before any chat.
func openCreditAccount(credits *service.CreditService) service.LoginHook {
	return func(ctx context.Context, sess domainauth.Session) error {
		_, err := credits.Balance(ctx, sess.UserID)
		return err
	}
}
