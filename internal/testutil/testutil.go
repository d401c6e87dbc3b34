// Package testutil provides Redis fixtures and small helpers shared by package tests.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
)

// redisCandidates are tried in order when REDIS_ADDR is unset: the CI
// service name, a default local install, then the compose port.
var redisCandidates = []string{"redis:6379", "localhost:6379", "localhost:56379"}

// envBool parses common truthy values from env vars.
func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// NewSession returns an unexpired session for role with deterministic fields.
func NewSession(id string, role domainauth.Role) domainauth.Session {
	return domainauth.Session{
		ID:        id,
		UserID:    "user-" + id,
		FirstName: "Test",
		LastName:  string(role),
		Email:     id + "@example.com",
		Role:      role,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// SetupTestRedis connects to a reachable Redis or skips the test. Setting
// TEST_REQUIRE_REDIS turns the skip into a failure. The client is closed on cleanup.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addrs := redisCandidates
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		addrs = []string{addr}
	}

	for _, addr := range addrs {
		client := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: time.Second})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err == nil {
			t.Cleanup(func() { _ = client.Close() })
			return client
		}
		_ = client.Close()
		t.Logf("redis not available at %s: %v", addr, err)
	}

	if requireRedis() {
		t.Fatal("redis not available for testing")
	}
	t.Skip("redis not available for testing")
	return nil
}

// KeyPrefix returns a prefix unique to this test and deletes every key under
// it on cleanup, so tests can share one Redis database.
func KeyPrefix(t testing.TB, client redis.UniversalClient) string {
	t.Helper()
	prefix := "aihub-test:" + uuid.NewString()[:8] + ":"
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
		for iter.Next(ctx) {
			if err := client.Del(ctx, iter.Val()).Err(); err != nil {
				t.Logf("cleanup %s: %v", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			t.Logf("scan %s*: %v", prefix, err)
		}
	})
	return prefix
}
