package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/ports"
)

// replySanitizer strips scripts, handlers, and other active content from
// provider replies before admins view them.
var replySanitizer = bluemonday.UGCPolicy()

// ModeratedMessage is a logged message prepared for the admin moderation screen.
type ModeratedMessage struct {
	chat.Message
	Body template.HTML
}

// ModerationService lists conversations for admins.
type ModerationService struct {
	log ports.ChatLog
}

// NewModerationService constructs a ModerationService.
func NewModerationService(log ports.ChatLog) (*ModerationService, error) {
	if log == nil {
		return nil, errors.New("ChatLog is required")
	}
	return &ModerationService{log: log}, nil
}

// Recent returns the newest messages across all users with sanitized bodies.
func (s *ModerationService) Recent(ctx context.Context, limit int) ([]ModeratedMessage, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	msgs, err := s.log.RecentAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent conversations: %w", err)
	}
	out := make([]ModeratedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ModeratedMessage{Message: m, Body: SanitizeBody(m.Content)})
	}
	return out, nil
}

// UserSummary aggregates one user's activity from the global log.
type UserSummary struct {
	UserID   string
	Email    string
	Messages int
	LastSeen time.Time
}

// Users summarizes the users seen in the newest limit messages, most recently active first.
func (s *ModerationService) Users(ctx context.Context, limit int) ([]UserSummary, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	msgs, err := s.log.RecentAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent conversations: %w", err)
	}
	index := make(map[string]int)
	var out []UserSummary
	for _, m := range msgs {
		i, ok := index[m.UserID]
		if !ok {
			i = len(out)
			index[m.UserID] = i
			out = append(out, UserSummary{UserID: m.UserID, LastSeen: m.CreatedAt})
		}
		u := &out[i]
		if u.Email == "" {
			u.Email = m.UserEmail
		}
		if m.Speaker == chat.SpeakerUser {
			u.Messages++
		}
		if m.CreatedAt.After(u.LastSeen) {
			u.LastSeen = m.CreatedAt
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out, nil
}

// SanitizeBody renders message text as safe HTML, keeping line breaks.
func SanitizeBody(s string) template.HTML {
	clean := replySanitizer.Sanitize(s)
	clean = strings.ReplaceAll(clean, "\n", "<br>")
	return template.HTML(clean) //nolint:gosec // sanitized by bluemonday above
}
