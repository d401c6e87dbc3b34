// Package nav holds the static route tree and projects it into the menu shown
// for a given request path.
//
// A Tree is validated once at construction and is immutable afterwards, so it
// may be shared by concurrent requests without locking.
package nav

import (
	"fmt"
	"path"
	"strings"

	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
)

// Route is one entry of the navigation tree.
// Children may not have children of their own.
type Route struct {
	Title    string                  `yaml:"title"    json:"title"`
	Path     string                  `yaml:"path"     json:"path"`
	Requires []domainauth.Capability `yaml:"requires" json:"requires,omitempty"`
	Children []Route                 `yaml:"children" json:"children,omitempty"`
}

// Link is a child entry in a projected menu. Children carry no active flag;
// the parent's flag drives highlighting and expansion.
type Link struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Entry is a projected top-level menu item.
type Entry struct {
	Title    string `json:"title"`
	Path     string `json:"path"`
	IsActive bool   `json:"is_active"`
	Children []Link `json:"children,omitempty"`
}

// HasChildren reports whether the entry renders a submenu.
func (e Entry) HasChildren() bool { return len(e.Children) > 0 }

// ConfigError reports a malformed route tree.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "nav config: " + e.Reason
	}
	return fmt.Sprintf("nav config: route %q: %s", e.Path, e.Reason)
}

// Tree is a validated, immutable route tree.
type Tree struct {
	routes []Route
	owners map[string]Route
}

// NewTree validates routes and returns a Tree.
func NewTree(routes []Route) (*Tree, error) {
	if len(routes) == 0 {
		return nil, &ConfigError{Reason: "at least one route is required"}
	}

	t := &Tree{
		routes: make([]Route, 0, len(routes)),
		owners: make(map[string]Route),
	}
	for _, r := range routes {
		if err := validateRoute(r); err != nil {
			return nil, err
		}
		if _, dup := t.owners[r.Path]; dup {
			return nil, &ConfigError{Path: r.Path, Reason: "duplicate path"}
		}

		top := Route{
			Title:    r.Title,
			Path:     r.Path,
			Requires: append([]domainauth.Capability(nil), r.Requires...),
		}
		seen := make(map[string]struct{}, len(r.Children))
		for _, c := range r.Children {
			if err := validateChild(r, c, seen); err != nil {
				return nil, err
			}
			if _, dup := t.owners[c.Path]; dup {
				return nil, &ConfigError{Path: c.Path, Reason: "duplicate path"}
			}
			seen[c.Path] = struct{}{}
			top.Children = append(top.Children, Route{
				Title:    c.Title,
				Path:     c.Path,
				Requires: append([]domainauth.Capability(nil), c.Requires...),
			})
		}

		t.routes = append(t.routes, top)
		t.owners[top.Path] = top
		for _, c := range top.Children {
			// a child inherits its parent's requirements
			c.Requires = append(append([]domainauth.Capability(nil), top.Requires...), c.Requires...)
			t.owners[c.Path] = c
		}
	}
	return t, nil
}

// MustTree is NewTree that panics on error, for static trees known at compile time.
func MustTree(routes []Route) *Tree {
	t, err := NewTree(routes)
	if err != nil {
		panic(err)
	}
	return t
}

func validateRoute(r Route) error {
	if strings.TrimSpace(r.Title) == "" {
		return &ConfigError{Path: r.Path, Reason: "title is required"}
	}
	if !strings.HasPrefix(r.Path, "/") {
		return &ConfigError{Path: r.Path, Reason: "path must be absolute"}
	}
	if path.Clean(r.Path) != r.Path {
		return &ConfigError{Path: r.Path, Reason: "path must be clean"}
	}
	return nil
}

func validateChild(parent, c Route, seen map[string]struct{}) error {
	if err := validateRoute(c); err != nil {
		return err
	}
	if len(c.Children) > 0 {
		return &ConfigError{Path: c.Path, Reason: "nested children are not supported"}
	}
	if c.Path == parent.Path || !isUnder(c.Path, parent.Path) {
		return &ConfigError{Path: c.Path, Reason: fmt.Sprintf("child must be below parent %q", parent.Path)}
	}
	if _, dup := seen[c.Path]; dup {
		return &ConfigError{Path: c.Path, Reason: "duplicate child path"}
	}
	return nil
}

// isUnder reports whether p equals prefix or lies below it segment-wise,
// so "/user/chatbot" is under "/user" but "/username" is not.
func isUnder(p, prefix string) bool {
	if p == prefix || prefix == "/" {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

func normalize(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// Routes returns a copy of the top-level routes.
func (t *Tree) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		out[i] = r
		out[i].Children = append([]Route(nil), r.Children...)
	}
	return out
}

// Project returns the full menu for currentPath, ignoring capability requirements.
func (t *Tree) Project(currentPath string) []Entry {
	return t.project(currentPath, nil, false)
}

// ProjectFor returns the menu for currentPath limited to routes caps satisfies.
// Active selection only considers visible entries.
func (t *Tree) ProjectFor(currentPath string, caps domainauth.CapabilitySet) []Entry {
	return t.project(currentPath, caps, true)
}

func (t *Tree) project(currentPath string, caps domainauth.CapabilitySet, filter bool) []Entry {
	current := normalize(currentPath)

	entries := make([]Entry, 0, len(t.routes))
	for _, r := range t.routes {
		if filter && !caps.Covers(domainauth.NewCapabilitySet(r.Requires...)) {
			continue
		}
		e := Entry{Title: r.Title, Path: r.Path}
		for _, c := range r.Children {
			if filter && !caps.Covers(domainauth.NewCapabilitySet(c.Requires...)) {
				continue
			}
			e.Children = append(e.Children, Link{Title: c.Title, Path: c.Path})
		}
		entries = append(entries, e)
	}

	if i := activeIndex(entries, t.routes, current); i >= 0 {
		entries[i].IsActive = true
	}
	return entries
}

// activeIndex picks the single active entry: an exact match first, otherwise the
// longest parent route whose path contains current. Parents are matched on their
// configured children, so a parent whose children were all filtered out still
// owns its subtree.
func activeIndex(entries []Entry, routes []Route, current string) int {
	for i, e := range entries {
		if e.Path == current {
			return i
		}
	}

	parents := make(map[string]bool, len(routes))
	for _, r := range routes {
		parents[r.Path] = len(r.Children) > 0
	}

	best, bestLen := -1, -1
	for i, e := range entries {
		if !parents[e.Path] || !isUnder(current, e.Path) {
			continue
		}
		if len(e.Path) > bestLen {
			best, bestLen = i, len(e.Path)
		}
	}
	return best
}

// Resolve returns the route owning p: the exact route, a child, or the deepest
// top-level route above it. Child routes carry their parent's requirements.
func (t *Tree) Resolve(p string) (Route, bool) {
	p = normalize(p)
	if r, ok := t.owners[p]; ok {
		return r, true
	}

	var (
		best  Route
		found bool
	)
	for _, r := range t.routes {
		if isUnder(p, r.Path) && (!found || len(r.Path) > len(best.Path)) {
			best, found = r, true
		}
	}
	return best, found
}

// Title returns the title of the route owning p, or fallback when none does.
func (t *Tree) Title(p, fallback string) string {
	if r, ok := t.Resolve(p); ok {
		return r.Title
	}
	return fallback
}
