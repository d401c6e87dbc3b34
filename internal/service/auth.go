package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/ports"
)

// ErrSessionExpired is returned by GetSession when the stored session is past its expiry.
var ErrSessionExpired = errors.New("session expired")

// DefaultSessionLifetime applies when the identity provider reports no expiry.
const DefaultSessionLifetime = 8 * time.Hour

// LoginHook runs after a session is saved. A failing hook is logged and does not fail the login.
type LoginHook func(ctx context.Context, sess domainauth.Session) error

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
	// MaxLifetime caps how long a session lives regardless of the IdP expiry. Zero means no cap.
	MaxLifetime time.Duration
	OnLogin     LoginHook
	Logger      *slog.Logger
}

// AuthService owns the signed-in state of the dashboard: it turns an IdP identity
// into a persisted session and answers, per request, who is looking at the page.
type AuthService struct {
	provider    ports.AuthProvider
	sessions    ports.SessionStore
	roles       ports.RoleMapper
	maxLifetime time.Duration
	onLogin     LoginHook
	logger      *slog.Logger
	now         func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider:    opts.Provider,
		sessions:    opts.Sessions,
		roles:       opts.Roles,
		maxLifetime: opts.MaxLifetime,
		onLogin:     opts.OnLogin,
		logger:      logger.With("component", "auth_service"),
		now:         time.Now,
	}
}

// BeginLoginResult is what the login handler needs to send the browser to the IdP.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin starts a provider flow that will return to redirectURL.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}
	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput is the callback payload plus the nonce kept in a cookie.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult carries the new session.
type CompleteLoginResult struct {
	Session domainauth.Session
}

func (in CompleteLoginInput) validate() error {
	switch {
	case in.Code == "":
		return errors.New("authorization code is required")
	case in.State == "":
		return errors.New("state parameter is required")
	case in.Nonce == "":
		return errors.New("nonce parameter is required")
	}
	return nil
}

// CompleteLogin exchanges the callback for an identity, maps its groups to a
// role and saves the session. The login hook runs last.
func (s *AuthService) CompleteLogin(ctx context.Context, in CompleteLoginInput) (*CompleteLoginResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	id, err := s.provider.Exchange(ctx, ports.ExchangeInput{Code: in.Code, State: in.State, Nonce: in.Nonce})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	sess := domainauth.Session{
		ID:        uuid.NewString(),
		UserID:    id.UserID,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Email:     id.Email,
		Role:      s.roles.Map(id.Groups),
		ExpiresAt: s.expiry(id.ExpiresAt),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if s.onLogin != nil {
		if err := s.onLogin(ctx, sess); err != nil {
			s.logger.WarnContext(ctx, "login hook failed", "user_id", sess.UserID, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "user signed in", "user_id", sess.UserID, "role", sess.Role)
	return &CompleteLoginResult{Session: sess}, nil
}

// expiry picks the session deadline from the IdP expiry and the lifetime cap.
func (s *AuthService) expiry(idp time.Time) time.Time {
	now := s.now()
	exp := idp
	if exp.IsZero() {
		exp = now.Add(DefaultSessionLifetime)
	}
	if s.maxLifetime > 0 && exp.After(now.Add(s.maxLifetime)) {
		exp = now.Add(s.maxLifetime)
	}
	return exp
}

// GetSession loads a live session. Expired sessions are deleted on sight.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s.now().Before(sess.ExpiresAt) {
		return &sess, nil
	}

	if err := s.sessions.Delete(context.WithoutCancel(ctx), sessionID); err != nil {
		return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", err))
	}
	return nil, ErrSessionExpired
}

// State resolves the navigation-time session state for sessionID.
// A missing, expired, or unreadable session yields the anonymous state; the error
// is returned alongside for logging only.
func (s *AuthService) State(ctx context.Context, sessionID string) (domainauth.State, *domainauth.Session, error) {
	if sessionID == "" {
		return domainauth.Anonymous(), nil, nil
	}
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return domainauth.Anonymous(), nil, err
	}
	return domainauth.StateFromSession(sess), sess, nil
}

// Logout removes a session. The session is gone from the store before Logout returns,
// so every later State lookup for sessionID is anonymous.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.InfoContext(ctx, "session ended", "session_id_prefix", idPrefix(sessionID))
	return nil
}

func idPrefix(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
