package httpx

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/target/aihub-dashboard/internal/http/ui/viewmodel"
)

// SignedOut renders the signed-out page with a Sign In button.
func (h *UIHandlers) SignedOut(w http.ResponseWriter, r *http.Request) {
	redirect := safeRedirectPath(r.URL.Query().Get("redirect_uri"))
	loginURL := h.loginPath() + "?redirect_uri=" + url.QueryEscape(redirect)
	if h.T == nil {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
		return
	}
	data := viewmodel.SignedOutPage{
		Title:       "Signed out - " + appName,
		RedirectURI: redirect,
		LoginPath:   h.loginPath(),
	}
	if err := h.T.RenderSignedOut(w, r, data); err != nil {
		http.Redirect(w, r, loginURL, http.StatusSeeOther)
	}
}

// NotFound handles 404 errors with auth-aware behavior.
// For browser requests, it renders an HTML error page.
// For API requests, it returns a JSON error response.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) {
		h.renderBrowserNotFound(w, r)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "not_found",
		Err:     errors.New("not found"),
	})
}

// renderBrowserNotFound renders an HTML 404 page with auth-aware content.
func (h *UIHandlers) renderBrowserNotFound(w http.ResponseWriter, r *http.Request) {
	authenticated := StateFromContext(r.Context()).Authenticated
	data := viewmodel.ErrorPage{
		Title:           "Page Not Found - " + appName,
		Code:            http.StatusNotFound,
		Message:         "The page you're looking for doesn't exist.",
		IsAuthenticated: authenticated,
		ShowLogin:       !authenticated,
		RedirectURI:     safeRedirectPath(r.URL.RequestURI()),
		HomePath:        defaultHome,
	}
	if h.T == nil {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}
	if err := h.T.RenderError(w, r, http.StatusNotFound, data); err != nil {
		http.Error(w, "Page not found", http.StatusNotFound)
	}
}
