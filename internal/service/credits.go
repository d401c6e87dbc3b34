package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/aihub-dashboard/internal/ports"
)

// ErrInsufficientCredits is returned when a user's balance cannot cover a charge.
var ErrInsufficientCredits = ports.ErrInsufficientCredits

// ErrInvalidAmount is returned for non-positive credit amounts or amounts above MaxTopUp.
var ErrInvalidAmount = errors.New("invalid credit amount")

// MaxTopUp bounds a single grant or top-up.
const MaxTopUp = 100_000

// CreditServiceOptions groups dependencies for CreditService.
type CreditServiceOptions struct {
	Store    ports.CreditStore // Required
	Starting int64             // Balance granted when an account is first seen
	Logger   *slog.Logger      // Optional
}

// CreditService manages per-user credit balances.
type CreditService struct {
	store    ports.CreditStore
	starting int64
	logger   *slog.Logger
}

// NewCreditService constructs a CreditService.
func NewCreditService(opts CreditServiceOptions) (*CreditService, error) {
	if opts.Store == nil {
		return nil, errors.New("CreditStore is required")
	}
	if opts.Starting < 0 {
		return nil, fmt.Errorf("starting credits must not be negative: %d", opts.Starting)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CreditService{
		store:    opts.Store,
		starting: opts.Starting,
		logger:   logger.With("component", "credit_service"),
	}, nil
}

// MustNewCreditService constructs a CreditService and panics on error.
func MustNewCreditService(opts CreditServiceOptions) *CreditService {
	svc, err := NewCreditService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
	}
	return svc
}

// Balance returns the user's balance, opening the account on first use.
func (s *CreditService) Balance(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, errors.New("user ID is required")
	}
	b, err := s.store.Open(ctx, userID, s.starting)
	if err != nil {
		return 0, fmt.Errorf("open credit account: %w", err)
	}
	return b, nil
}

// Charge debits amount from the user's balance.
func (s *CreditService) Charge(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount == 0 {
		return s.Balance(ctx, userID)
	}
	if amount < 0 {
		return 0, ErrInvalidAmount
	}
	if _, err := s.Balance(ctx, userID); err != nil {
		return 0, err
	}
	b, err := s.store.Debit(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, ports.ErrInsufficientCredits) {
			return b, ErrInsufficientCredits
		}
		return 0, fmt.Errorf("debit credits: %w", err)
	}
	return b, nil
}

// Refund returns amount to the user's balance after a failed charge-bearing operation.
func (s *CreditService) Refund(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if _, err := s.store.Credit(ctx, userID, amount); err != nil {
		return fmt.Errorf("refund credits: %w", err)
	}
	return nil
}

// TopUp adds amount to the user's own balance.
func (s *CreditService) TopUp(ctx context.Context, userID string, amount int64) (int64, error) {
	return s.add(ctx, userID, amount, "top_up", userID)
}

// Grant adds amount to another user's balance on behalf of an admin.
func (s *CreditService) Grant(ctx context.Context, adminID, userID string, amount int64) (int64, error) {
	return s.add(ctx, userID, amount, "grant", adminID)
}

func (s *CreditService) add(ctx context.Context, userID string, amount int64, reason, actor string) (int64, error) {
	if amount <= 0 || amount > MaxTopUp {
		return 0, ErrInvalidAmount
	}
	if _, err := s.Balance(ctx, userID); err != nil {
		return 0, err
	}
	b, err := s.store.Credit(ctx, userID, amount)
	if err != nil {
		return 0, fmt.Errorf("credit account: %w", err)
	}
	s.logger.InfoContext(ctx, "credits added",
		"user_id", userID, "amount", amount, "reason", reason, "actor", actor, "balance", b)
	return b, nil
}
