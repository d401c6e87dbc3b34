package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// DashboardStats are the headline numbers on the user dashboard.
type DashboardStats struct {
	Credits            int64
	MessagesSent       int64
	ProvidersAvailable int
}

// DashboardServiceOptions groups dependencies for DashboardService.
type DashboardServiceOptions struct {
	Chat    *ChatService    // Required
	Credits *CreditService  // Required
	Catalog *CatalogService // Optional; falls back to registered providers
}

// DashboardService aggregates per-user stats.
type DashboardService struct {
	chat    *ChatService
	credits *CreditService
	catalog *CatalogService
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(opts DashboardServiceOptions) (*DashboardService, error) {
	if opts.Chat == nil {
		return nil, errors.New("ChatService is required")
	}
	if opts.Credits == nil {
		return nil, errors.New("CreditService is required")
	}
	return &DashboardService{chat: opts.Chat, credits: opts.Credits, catalog: opts.Catalog}, nil
}

// Stats fetches the user's balance and message count concurrently.
func (s *DashboardService) Stats(ctx context.Context, userID string) (DashboardStats, error) {
	var stats DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b, err := s.credits.Balance(gctx, userID)
		if err != nil {
			return err
		}
		stats.Credits = b
		return nil
	})
	g.Go(func() error {
		n, err := s.chat.MessagesSent(gctx, userID)
		if err != nil {
			return err
		}
		stats.MessagesSent = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}

	if s.catalog != nil {
		stats.ProvidersAvailable = s.catalog.EnabledCount()
	} else {
		stats.ProvidersAvailable = len(s.chat.Providers())
	}
	return stats, nil
}
