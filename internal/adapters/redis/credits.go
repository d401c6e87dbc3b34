package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/target/aihub-dashboard/internal/ports"
)

// debitScript subtracts ARGV[1] from KEYS[1] only when the balance covers it.
// Returns {1, newBalance} on success and {0, balance} when funds are short.
var debitScript = redis.NewScript(`
local bal = tonumber(redis.call('GET', KEYS[1]) or '0')
local amt = tonumber(ARGV[1])
if bal < amt then
  return {0, bal}
end
return {1, redis.call('DECRBY', KEYS[1], amt)}
`)

// CreditStore keeps balances as integer strings.
type CreditStore struct {
	client redis.UniversalClient
	keys   Keyspace
}

var _ ports.CreditStore = (*CreditStore)(nil)

// NewCreditStore creates a CreditStore.
func NewCreditStore(client redis.UniversalClient, keys Keyspace) *CreditStore {
	return &CreditStore{client: client, keys: keys}
}

func (s *CreditStore) Open(ctx context.Context, userID string, starting int64) (int64, error) {
	key := s.keys.Credits(userID)
	if err := s.client.SetNX(ctx, key, starting, 0).Err(); err != nil {
		return 0, fmt.Errorf("redis setnx credits: %w", err)
	}
	return s.Balance(ctx, userID)
}

func (s *CreditStore) Balance(ctx context.Context, userID string) (int64, error) {
	b, err := s.client.Get(ctx, s.keys.Credits(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get credits: %w", err)
	}
	return b, nil
}

func (s *CreditStore) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, errors.New("debit amount must not be negative")
	}
	res, err := debitScript.Run(ctx, s.client, []string{s.keys.Credits(userID)}, amount).Int64Slice()
	if err != nil {
		return 0, fmt.Errorf("redis debit credits: %w", err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("redis debit credits: unexpected reply %v", res)
	}
	if res[0] == 0 {
		return res[1], ports.ErrInsufficientCredits
	}
	return res[1], nil
}

func (s *CreditStore) Credit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, errors.New("credit amount must not be negative")
	}
	b, err := s.client.IncrBy(ctx, s.keys.Credits(userID), amount).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incrby credits: %w", err)
	}
	return b, nil
}
