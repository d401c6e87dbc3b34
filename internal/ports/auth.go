// Package ports declares what the dashboard services need from the outside:
// an identity provider, a session store, a group-to-role mapping, chat
// providers, and the chat log and credit ledger.
package ports

import (
	"context"

	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
)

// AuthProvider signs a dashboard user in against an identity provider
// (OIDC in production, a configured identity in mock mode).
type AuthProvider interface {
	// Begin returns the IdP URL to send the browser to, plus the state and
	// nonce the login handler keeps in short-lived cookies.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange turns the callback code into an identity. Groups are raw IdP
	// groups; mapping them to a role is the RoleMapper's job.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// BeginInput is where the user should land once signed in.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput is the callback query plus the nonce issued by Begin.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore holds the server-side half of a sign-in. The guard reads it on
// every request, so a Delete must be visible to the very next Get.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	// Get fails for unknown and lapsed sessions alike.
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper picks the dashboard role for a set of IdP groups.
// Identities with no recognised group map to the guest role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
