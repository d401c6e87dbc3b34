package ports

import (
	"context"
	"errors"

	"github.com/target/aihub-dashboard/internal/domain/chat"
)

// ErrInsufficientCredits is returned by a CreditStore when a debit would overdraw the balance.
var ErrInsufficientCredits = errors.New("insufficient credits")

// CompletionRequest is a single prompt sent to an upstream model.
type CompletionRequest struct {
	UserID  string
	Message string
	// History holds earlier turns, oldest first.
	History []chat.Message
}

// ChatProvider sends a prompt to an upstream model and returns its reply text.
type ChatProvider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// ChatLog persists conversation messages.
type ChatLog interface {
	Append(ctx context.Context, msgs ...chat.Message) error
	// Recent returns the newest messages of one user, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]chat.Message, error)
	// RecentAll returns the newest messages across all users, newest first.
	RecentAll(ctx context.Context, limit int) ([]chat.Message, error)
	// Count returns how many messages the user has sent.
	Count(ctx context.Context, userID string) (int64, error)
}

// CreditStore holds per-user credit balances.
type CreditStore interface {
	// Open creates the account with the starting balance if it does not exist and returns the balance.
	Open(ctx context.Context, userID string, starting int64) (int64, error)
	Balance(ctx context.Context, userID string) (int64, error)
	// Debit atomically subtracts amount, failing with ErrInsufficientCredits when the balance is too low.
	Debit(ctx context.Context, userID string, amount int64) (int64, error)
	Credit(ctx context.Context, userID string, amount int64) (int64, error)
}
