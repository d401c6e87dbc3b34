package httpx

import (
	"net/http"

	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/domain/nav"
)

// NavHandlers exposes the projected menu as JSON for client-side shells.
type NavHandlers struct {
	Tree  *nav.Tree
	Roles domainauth.RoleCapabilities
}

type navResponse struct {
	Path         string                  `json:"path"`
	Title        string                  `json:"title"`
	Capabilities []domainauth.Capability `json:"capabilities"`
	Entries      []nav.Entry             `json:"entries"`
}

// Menu returns the navigation model for ?path= (default /user) and the current session.
// GET /api/nav?path=/user/chatbot/openai.
func (h *NavHandlers) Menu(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		p = defaultHome
	}
	p = safeRedirectPath(p)

	roles := h.Roles
	if roles == nil {
		roles = domainauth.DefaultRoleCapabilities()
	}
	caps := roles.Of(StateFromContext(r.Context()))

	entries := h.Tree.ProjectFor(p, caps)
	if entries == nil {
		entries = []nav.Entry{}
	}
	WriteJSON(w, http.StatusOK, navResponse{
		Path:         p,
		Title:        h.Tree.Title(p, ""),
		Capabilities: caps.Sorted(),
		Entries:      entries,
	})
}
