// Package redis provides Redis-backed adapters for sessions, the chat log, and credit balances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
)

// ErrNotFound is returned when a session is missing or already past its expiry.
var ErrNotFound = errors.New("session not found")

// SessionStore keeps one JSON record per session, expiring with the session itself.
type SessionStore struct {
	client redis.UniversalClient
	keys   Keyspace
	now    func() time.Time
}

// NewSessionStore creates a session store under keys.Session().
func NewSessionStore(client redis.UniversalClient, keys Keyspace) *SessionStore {
	return &SessionStore{client: client, keys: keys, now: time.Now}
}

// sessionRecord is the stored shape; it stays stable if the domain type grows.
type sessionRecord struct {
	UserID    string          `json:"uid"`
	FirstName string          `json:"fn,omitempty"`
	LastName  string          `json:"ln,omitempty"`
	Email     string          `json:"em,omitempty"`
	Role      domainauth.Role `json:"role"`
	ExpiresAt time.Time       `json:"exp"`
}

func (s *SessionStore) key(id string) string { return s.keys.Session() + id }

// Save writes sess with an absolute Redis expiry equal to sess.ExpiresAt.
func (s *SessionStore) Save(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	if !sess.ExpiresAt.After(s.now()) {
		return errors.New("session is expired")
	}

	data, err := json.Marshal(sessionRecord{
		UserID:    sess.UserID,
		FirstName: sess.FirstName,
		LastName:  sess.LastName,
		Email:     sess.Email,
		Role:      sess.Role,
		ExpiresAt: sess.ExpiresAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = s.client.SetArgs(ctx, s.key(sess.ID), data, redis.SetArgs{ExpireAt: sess.ExpiresAt}).Err()
	if err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get loads a session. A record whose expiry has passed but whose key has not
// been evicted yet is reported as ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (domainauth.Session, error) {
	if id == "" {
		return domainauth.Session{}, ErrNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return domainauth.Session{}, ErrNotFound
	case err != nil:
		return domainauth.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domainauth.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	if !rec.ExpiresAt.After(s.now()) {
		return domainauth.Session{}, ErrNotFound
	}

	return domainauth.Session{
		ID:        id,
		UserID:    rec.UserID,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Email:     rec.Email,
		Role:      rec.Role,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Delete removes a session; deleting a missing one is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
