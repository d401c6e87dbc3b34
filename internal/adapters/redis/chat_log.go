package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/ports"
)

const (
	defaultUserHistory   = 200
	defaultGlobalHistory = 1000
)

// ChatLogOptions configures ChatLog.
type ChatLogOptions struct {
	Keys Keyspace
	// UserHistory caps each user's list; GlobalHistory caps the moderation list.
	UserHistory   int
	GlobalHistory int
}

// ChatLog stores messages as JSON in capped Redis lists.
type ChatLog struct {
	client redis.UniversalClient
	keys   Keyspace
	user   int64
	global int64
}

var _ ports.ChatLog = (*ChatLog)(nil)

// NewChatLog creates a ChatLog.
func NewChatLog(client redis.UniversalClient, opts ChatLogOptions) *ChatLog {
	user, global := opts.UserHistory, opts.GlobalHistory
	if user <= 0 {
		user = defaultUserHistory
	}
	if global <= 0 {
		global = defaultGlobalHistory
	}
	return &ChatLog{client: client, keys: opts.Keys, user: int64(user), global: int64(global)}
}

// Append pushes msgs in order in a single pipeline, trimming both lists.
func (l *ChatLog) Append(ctx context.Context, msgs ...chat.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	_, err := l.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range msgs {
			if m.UserID == "" {
				return errors.New("message user ID is required")
			}
			data, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal message: %w", err)
			}
			userKey := l.keys.UserChat(m.UserID)
			pipe.LPush(ctx, userKey, data)
			pipe.LTrim(ctx, userKey, 0, l.user-1)
			pipe.LPush(ctx, l.keys.AllChat(), data)
			if m.Speaker == chat.SpeakerUser {
				pipe.Incr(ctx, l.keys.ChatCount(m.UserID))
			}
		}
		pipe.LTrim(ctx, l.keys.AllChat(), 0, l.global-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}
	return nil
}

func (l *ChatLog) Recent(ctx context.Context, userID string, limit int) ([]chat.Message, error) {
	return l.read(ctx, l.keys.UserChat(userID), limit)
}

func (l *ChatLog) RecentAll(ctx context.Context, limit int) ([]chat.Message, error) {
	return l.read(ctx, l.keys.AllChat(), limit)
}

func (l *ChatLog) Count(ctx context.Context, userID string) (int64, error) {
	n, err := l.client.Get(ctx, l.keys.ChatCount(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get chat count: %w", err)
	}
	return n, nil
}

func (l *ChatLog) read(ctx context.Context, key string, limit int) ([]chat.Message, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	raw, err := l.client.LRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange %s: %w", key, err)
	}
	out := make([]chat.Message, 0, len(raw))
	for _, item := range raw {
		var m chat.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			slog.WarnContext(ctx, "skip undecodable chat message", "key", key, "error", err)
			continue
		}
		out = append(out, m)
	}
	return out, nil
}
