// Package chat contains the domain types exchanged with AI providers and
// persisted in the per-user conversation log.
package chat

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Speaker identifies who authored a message.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// MaxMessageLength bounds a single user message in runes.
const MaxMessageLength = 4000

var (
	// ErrEmptyMessage is returned when a message has no visible content.
	ErrEmptyMessage = errors.New("message is required")
	// ErrMessageTooLong is returned when a message exceeds MaxMessageLength.
	ErrMessageTooLong = errors.New("message is too long")
)

// Message is one entry of a conversation.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserEmail string    `json:"user_email,omitempty"`
	Provider  string    `json:"provider"`
	Speaker   Speaker   `json:"speaker"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Exchange is a user prompt together with the provider's reply.
type Exchange struct {
	Prompt  Message
	Reply   Message
	Charged int64
	Balance int64
}

// NormalizeMessage trims s and enforces the length bounds.
func NormalizeMessage(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyMessage
	}
	if utf8.RuneCountInString(s) > MaxMessageLength {
		return "", ErrMessageTooLong
	}
	return s, nil
}

// ProviderInfo describes an upstream model for the comparison screen.
type ProviderInfo struct {
	Name              string
	Title             string
	Model             string
	Vendor            string
	ContextTokens     int
	InputCostPerMTok  float64
	OutputCostPerMTok float64
	TypicalLatency    time.Duration
	Enabled           bool
}
