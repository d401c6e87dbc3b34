// Package chat contains in-memory doubles for the chat log and credit ports.
package chat

import (
	"context"
	"errors"
	"sync"

	domainchat "github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/ports"
)

var (
	_ ports.ChatLog     = (*MemoryChatLog)(nil)
	_ ports.CreditStore = (*MemoryCreditStore)(nil)
)

// MemoryChatLog keeps messages in insertion order.
type MemoryChatLog struct {
	mu   sync.RWMutex
	msgs []domainchat.Message

	// AppendErr, when set, is returned by Append.
	AppendErr error
}

// NewMemoryChatLog creates an empty log.
func NewMemoryChatLog() *MemoryChatLog { return &MemoryChatLog{} }

func (l *MemoryChatLog) Append(_ context.Context, msgs ...domainchat.Message) error {
	if l.AppendErr != nil {
		return l.AppendErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, msgs...)
	return nil
}

func (l *MemoryChatLog) Recent(_ context.Context, userID string, limit int) ([]domainchat.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domainchat.Message
	for i := len(l.msgs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if l.msgs[i].UserID == userID {
			out = append(out, l.msgs[i])
		}
	}
	return out, nil
}

func (l *MemoryChatLog) RecentAll(_ context.Context, limit int) ([]domainchat.Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domainchat.Message
	for i := len(l.msgs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, l.msgs[i])
	}
	return out, nil
}

func (l *MemoryChatLog) Count(_ context.Context, userID string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var n int64
	for _, m := range l.msgs {
		if m.UserID == userID && m.Speaker == domainchat.SpeakerUser {
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored messages.
func (l *MemoryChatLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.msgs)
}

// MemoryCreditStore holds balances in a map.
type MemoryCreditStore struct {
	mu       sync.Mutex
	balances map[string]int64
}

// NewMemoryCreditStore creates an empty store.
func NewMemoryCreditStore() *MemoryCreditStore {
	return &MemoryCreditStore{balances: make(map[string]int64)}
}

func (s *MemoryCreditStore) Open(_ context.Context, userID string, starting int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.balances[userID]; ok {
		return b, nil
	}
	s.balances[userID] = starting
	return starting, nil
}

func (s *MemoryCreditStore) Balance(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[userID], nil
}

func (s *MemoryCreditStore) Debit(_ context.Context, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, errors.New("amount must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.balances[userID]
	if b < amount {
		return b, ports.ErrInsufficientCredits
	}
	s.balances[userID] = b - amount
	return b - amount, nil
}

func (s *MemoryCreditStore) Credit(_ context.Context, userID string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, errors.New("amount must not be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[userID] += amount
	return s.balances[userID], nil
}
