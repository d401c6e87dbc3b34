// Package access decides whether a session may render a guarded screen.
//
// Evaluation is pure: the same session state and guard always produce the same
// Decision, and denial is an ordinary value rather than an error.
package access

import (
	"fmt"
	"net/url"
	"strings"

	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
)

const (
	// DefaultLoginPath is where unauthenticated navigations are sent.
	DefaultLoginPath = "/auth/login"
	// DefaultFallbackPath is the dashboard route every authenticated user can open.
	DefaultFallbackPath = "/user"
)

// Outcome enumerates the three results of a guard evaluation.
type Outcome int

const (
	// Render means the protected content may be shown unchanged.
	Render Outcome = iota
	// RedirectLogin means the session is not authenticated.
	RedirectLogin
	// RedirectFallback means the session lacks a required capability.
	RedirectFallback
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect_login"
	case RedirectFallback:
		return "redirect_fallback"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Decision is the result of evaluating a guard. Location is set for redirects.
type Decision struct {
	Outcome  Outcome
	Location string
}

// Allowed reports whether the decision renders the protected content.
func (d Decision) Allowed() bool { return d.Outcome == Render }

// Options configures a Guard. Zero values fall back to the defaults above.
type Options struct {
	// Requires is the capability set C; access is granted iff the user's capabilities ⊇ C.
	Requires []domainauth.Capability
	// LoginPath is the redirect target for unauthenticated sessions.
	LoginPath string
	// FallbackPath is the redirect target for authenticated sessions lacking capabilities.
	FallbackPath string
	// Roles maps roles to capabilities; nil uses domainauth.DefaultRoleCapabilities.
	Roles domainauth.RoleCapabilities
}

// Guard gates a screen behind authentication and an optional capability set.
type Guard struct {
	requires     domainauth.CapabilitySet
	loginPath    string
	fallbackPath string
	roles        domainauth.RoleCapabilities
}

// New validates opts and returns a Guard.
// Redirect locations must be same-origin absolute paths.
func New(opts Options) (Guard, error) {
	login := opts.LoginPath
	if login == "" {
		login = DefaultLoginPath
	}
	fallback := opts.FallbackPath
	if fallback == "" {
		fallback = DefaultFallbackPath
	}
	if err := validateLocation(login); err != nil {
		return Guard{}, fmt.Errorf("login path: %w", err)
	}
	if err := validateLocation(fallback); err != nil {
		return Guard{}, fmt.Errorf("fallback path: %w", err)
	}
	roles := opts.Roles
	if roles == nil {
		roles = domainauth.DefaultRoleCapabilities()
	}
	return Guard{
		requires:     domainauth.NewCapabilitySet(opts.Requires...),
		loginPath:    login,
		fallbackPath: fallback,
		roles:        roles,
	}, nil
}

// Authenticated returns a guard that only requires a signed-in session.
func Authenticated(loginPath, fallbackPath string) (Guard, error) {
	return New(Options{LoginPath: loginPath, FallbackPath: fallbackPath})
}

// Evaluate decides, for one navigation, whether st may render the guarded content.
func (g Guard) Evaluate(st domainauth.State) Decision {
	if !st.Authenticated {
		return Decision{Outcome: RedirectLogin, Location: g.login()}
	}
	if len(g.requires) > 0 && !g.capabilities(st).Covers(g.requires) {
		return Decision{Outcome: RedirectFallback, Location: g.fallback()}
	}
	return Decision{Outcome: Render}
}

// Requires returns a copy of the capability set this guard demands.
func (g Guard) Requires() domainauth.CapabilitySet {
	return domainauth.NewCapabilitySet(g.requires.Sorted()...)
}

// LoginPath returns the configured login location.
func (g Guard) LoginPath() string { return g.login() }

// FallbackPath returns the configured fallback location.
func (g Guard) FallbackPath() string { return g.fallback() }

// Capabilities returns the capabilities st holds under this guard's role mapping.
func (g Guard) Capabilities(st domainauth.State) domainauth.CapabilitySet {
	return g.capabilities(st)
}

func (g Guard) capabilities(st domainauth.State) domainauth.CapabilitySet {
	roles := g.roles
	if roles == nil {
		roles = domainauth.DefaultRoleCapabilities()
	}
	return roles.Of(st)
}

// login and fallback keep a zero Guard usable.
func (g Guard) login() string {
	if g.loginPath == "" {
		return DefaultLoginPath
	}
	return g.loginPath
}

func (g Guard) fallback() string {
	if g.fallbackPath == "" {
		return DefaultFallbackPath
	}
	return g.fallbackPath
}

func validateLocation(p string) error {
	u, err := url.Parse(p)
	if err != nil {
		return fmt.Errorf("parse %q: %w", p, err)
	}
	if u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") || strings.HasPrefix(p, "//") {
		return fmt.Errorf("%q must be a relative path starting with /", p)
	}
	return nil
}
