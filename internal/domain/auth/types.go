package auth

// Package auth contains domain-level types for authentication, sessions and capabilities.
// It is pure and free of framework/adapter concerns.

import (
	"sort"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID    string // stable user identifier (e.g., sub)
	FirstName string
	LastName  string
	Email     string
	Groups    []string
	ExpiresAt time.Time // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsGuest returns true if the session role is guest.
func (s Session) IsGuest() bool { return s.Role == RoleGuest }

// DisplayName returns the best human-readable name for the session's user.
func (s Session) DisplayName() string {
	if name := strings.TrimSpace(s.FirstName + " " + s.LastName); name != "" {
		return name
	}
	if s.Email != "" {
		return s.Email
	}
	return s.UserID
}

// User is the read-only view of the signed-in principal handed to guards and the page shell.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// State is the session as observed by one navigation: either anonymous or a signed-in user.
// It is a value; components receive it explicitly and never mutate the underlying session.
type State struct {
	Authenticated bool
	User          *User
}

// Anonymous is the state of a request without a valid session.
func Anonymous() State { return State{} }

// StateFromSession derives the navigation-time state from a persisted session.
// A nil session yields the anonymous state.
func StateFromSession(s *Session) State {
	if s == nil {
		return Anonymous()
	}
	return State{
		Authenticated: true,
		User: &User{
			ID:    s.UserID,
			Name:  s.DisplayName(),
			Email: s.Email,
			Role:  s.Role,
		},
	}
}

// Role returns the signed-in user's role, or the empty role for anonymous state.
func (st State) Role() Role {
	if !st.Authenticated || st.User == nil {
		return ""
	}
	return st.User.Role
}

// Capability names a permission required by a guarded screen.
type Capability string

const (
	// CapabilityUser grants access to the end-user dashboard screens.
	CapabilityUser Capability = "user"
	// CapabilityAdmin grants access to moderation and credit administration.
	CapabilityAdmin Capability = "admin"
)

// CapabilitySet is an unordered set of capabilities.
// The zero value is an empty set and is safe to read.
type CapabilitySet map[Capability]struct{}

// NewCapabilitySet builds a set from the given capabilities, ignoring blanks.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		c = Capability(strings.TrimSpace(string(c)))
		if c == "" {
			continue
		}
		set[c] = struct{}{}
	}
	return set
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// Covers reports whether s is a superset of required. An empty requirement is always covered.
func (s CapabilitySet) Covers(required CapabilitySet) bool {
	for c := range required {
		if !s.Has(c) {
			return false
		}
	}
	return true
}

// Union returns a new set containing the members of s and other.
func (s CapabilitySet) Union(other CapabilitySet) CapabilitySet {
	out := make(CapabilitySet, len(s)+len(other))
	for c := range s {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s CapabilitySet) Sorted() []Capability {
	out := make([]Capability, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoleCapabilities maps each role to the capabilities it grants.
// Adding a role is a data change here; guards only ever compare sets.
type RoleCapabilities map[Role]CapabilitySet

// DefaultRoleCapabilities returns the built-in grants: guest has nothing,
// user has the user capability, admin has both user and admin.
func DefaultRoleCapabilities() RoleCapabilities {
	return RoleCapabilities{
		RoleGuest: NewCapabilitySet(),
		RoleUser:  NewCapabilitySet(CapabilityUser),
		RoleAdmin: NewCapabilitySet(CapabilityUser, CapabilityAdmin),
	}
}

// For returns the capabilities granted to role. Unknown roles get an empty set.
func (rc RoleCapabilities) For(role Role) CapabilitySet {
	if set, ok := rc[role]; ok {
		return set
	}
	return CapabilitySet{}
}

// Of returns the capabilities of the signed-in user in st; anonymous state has none.
func (rc RoleCapabilities) Of(st State) CapabilitySet {
	if !st.Authenticated {
		return CapabilitySet{}
	}
	return rc.For(st.Role())
}
