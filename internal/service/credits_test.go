package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mockschat "github.com/target/aihub-dashboard/internal/mocks/chat"
)

type failingCreditStore struct {
	*mockschat.MemoryCreditStore
	err error
}

func (f failingCreditStore) Debit(context.Context, string, int64) (int64, error) { return 0, f.err }

func TestNewCreditService_Validation(t *testing.T) {
	_, err := NewCreditService(CreditServiceOptions{})
	require.Error(t, err)

	_, err = NewCreditService(CreditServiceOptions{Store: mockschat.NewMemoryCreditStore(), Starting: -1})
	require.Error(t, err)
}

func TestCreditService_BalanceOpensAccountOnce(t *testing.T) {
	svc := MustNewCreditService(CreditServiceOptions{Store: mockschat.NewMemoryCreditStore(), Starting: 25})
	ctx := context.Background()

	b, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(25), b)

	_, err = svc.Charge(ctx, "u1", 5)
	require.NoError(t, err)

	b, err = svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), b, "reopening must not reset the balance")

	_, err = svc.Balance(ctx, "")
	require.Error(t, err)
}

func TestCreditService_Charge(t *testing.T) {
	svc := MustNewCreditService(CreditServiceOptions{Store: mockschat.NewMemoryCreditStore(), Starting: 3})
	ctx := context.Background()

	b, err := svc.Charge(ctx, "u1", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b)

	_, err = svc.Charge(ctx, "u1", 1)
	require.ErrorIs(t, err, ErrInsufficientCredits)

	_, err = svc.Charge(ctx, "u1", -1)
	require.ErrorIs(t, err, ErrInvalidAmount)

	b, err = svc.Charge(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b)
}

func TestCreditService_Charge_StoreError(t *testing.T) {
	store := failingCreditStore{MemoryCreditStore: mockschat.NewMemoryCreditStore(), err: errors.New("redis down")}
	svc := MustNewCreditService(CreditServiceOptions{Store: store, Starting: 3})

	_, err := svc.Charge(context.Background(), "u1", 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientCredits)
	assert.Contains(t, err.Error(), "redis down")
}

func TestCreditService_TopUpAndGrant(t *testing.T) {
	svc := MustNewCreditService(CreditServiceOptions{Store: mockschat.NewMemoryCreditStore(), Starting: 10})
	ctx := context.Background()

	b, err := svc.TopUp(ctx, "u1", 15)
	require.NoError(t, err)
	assert.Equal(t, int64(25), b)

	b, err = svc.Grant(ctx, "admin", "u2", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), b)

	for _, amount := range []int64{0, -5, MaxTopUp + 1} {
		_, err = svc.TopUp(ctx, "u1", amount)
		assert.ErrorIs(t, err, ErrInvalidAmount, amount)
	}
}

func TestCreditService_Refund(t *testing.T) {
	svc := MustNewCreditService(CreditServiceOptions{Store: mockschat.NewMemoryCreditStore(), Starting: 4})
	ctx := context.Background()

	_, err := svc.Charge(ctx, "u1", 4)
	require.NoError(t, err)
	require.NoError(t, svc.Refund(ctx, "u1", 4))
	require.NoError(t, svc.Refund(ctx, "u1", 0))

	b, err := svc.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), b)
}
