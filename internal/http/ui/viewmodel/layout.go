// Package viewmodel holds the data shapes handed to HTML templates.
package viewmodel

import "github.com/target/aihub-dashboard/internal/domain/nav"

// User represents the authenticated user context exposed to templates.
type User struct {
	Name  string
	Email string
	Role  string
}

// Layout captures shared chrome metadata (titles, navigation state, auth flags).
type Layout struct {
	Title           string
	PageTitle       string
	CurrentPage     string
	CurrentPath     string
	CSRFToken       string
	IsAuthenticated bool
	IsAdmin         bool
	User            *User
	// Nav is the menu projected for CurrentPath and the user's capabilities.
	Nav []nav.Entry
	// Error is a page-level message shown above the content.
	Error string
	// Flash is a one-shot success message.
	Flash string
}

// LayoutData lets renderer utilities read the layout of any page that embeds it.
func (l *Layout) LayoutData() *Layout { return l }

// LayoutProvider exposes layout metadata for renderer utilities.
type LayoutProvider interface {
	LayoutData() *Layout
}

// ActiveEntry returns the active menu entry, if any.
func (l *Layout) ActiveEntry() (nav.Entry, bool) {
	for _, e := range l.Nav {
		if e.IsActive {
			return e, true
		}
	}
	return nav.Entry{}, false
}
