package viewmodel

import (
	"html/template"
	"time"

	"github.com/target/aihub-dashboard/internal/domain/chat"
)

// Stats are the dashboard counters.
type Stats struct {
	Credits            int64
	MessagesSent       int64
	ProvidersAvailable int
}

// DashboardPage is the landing screen.
type DashboardPage struct {
	Layout
	Stats     Stats
	Providers []chat.ProviderInfo
}

// ChatPage renders the chat widget for one provider, or the provider picker
// when Provider is nil.
type ChatPage struct {
	Layout
	Provider  *chat.ProviderInfo
	Providers []chat.ProviderInfo
	History   []chat.Message
	Balance   int64
	MaxLength int
}

// ComparisonPage is the cost and latency table.
type ComparisonPage struct {
	Layout
	Providers []chat.ProviderInfo
}

// CreditsPage shows the balance and the top-up form.
type CreditsPage struct {
	Layout
	Balance  int64
	MaxTopUp int64
	PerChat  int64
}

// ActivityPage lists the user's own recent messages.
type ActivityPage struct {
	Layout
	Messages []chat.Message
}

// ConversationRow is one moderated message with its sanitized body.
type ConversationRow struct {
	chat.Message
	Body template.HTML
}

// ConversationsPage is the admin moderation list.
type ConversationsPage struct {
	Layout
	Rows []ConversationRow
}

// UserRow summarizes one user for credit administration.
type UserRow struct {
	UserID   string
	Email    string
	Messages int
	LastSeen time.Time
	Balance  int64
}

// UsersPage is the admin credit grant screen.
type UsersPage struct {
	Layout
	Users    []UserRow
	MaxGrant int64
}

// SignedOutPage is shown after logout and to HTMX requests whose session ended.
type SignedOutPage struct {
	Title       string
	RedirectURI string
	LoginPath   string
}

// ErrorPage renders a standalone error screen.
type ErrorPage struct {
	Title           string
	Code            int
	Message         string
	IsAuthenticated bool
	ShowLogin       bool
	RedirectURI     string
	HomePath        string
}
