package httpx

import (
	"bytes"
	"context"
	"html"
	"log/slog"
	"net/http"

	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/domain/nav"
	"github.com/target/aihub-dashboard/internal/http/ui/viewmodel"
	"github.com/target/aihub-dashboard/internal/service"
)

const (
	appName         = "AI Hub"
	errMsgLoadFails = "Some data could not be loaded. Please try again."
)

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T          *TemplateRenderer
	Tree       *nav.Tree
	Roles      domainauth.RoleCapabilities
	Chat       *service.ChatService
	Credits    *service.CreditService
	Catalog    *service.CatalogService
	Dashboard  *service.DashboardService
	Moderation *service.ModerationService
	// CreditsPerMessage is shown on the credits screen.
	CreditsPerMessage int64
	LoginPath         string
	IsDev             bool // Development mode flag for enhanced error reporting
	Logger            *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) roles() domainauth.RoleCapabilities {
	if h.Roles != nil {
		return h.Roles
	}
	return domainauth.DefaultRoleCapabilities()
}

func (h *UIHandlers) tree() *nav.Tree {
	if h.Tree != nil {
		return h.Tree
	}
	return nav.DefaultTree()
}

func (h *UIHandlers) loginPath() string {
	if h.LoginPath != "" {
		return h.LoginPath
	}
	return defaultLogin
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
	// Path overrides the request path for menu projection, e.g. on form posts.
	Path string
}

// buildLayout constructs the shared chrome for one request: titles, the
// signed-in user, the CSRF token, and the menu projected for the request path.
func (h *UIHandlers) buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	st := StateFromContext(r.Context())
	caps := h.roles().Of(st)
	current := meta.Path
	if current == "" {
		current = r.URL.Path
	}

	pageTitle := meta.PageTitle
	if pageTitle == "" {
		pageTitle = h.tree().Title(current, meta.Title)
	}
	title := meta.Title
	if title == "" {
		title = pageTitle
	}

	layout := viewmodel.Layout{
		Title:       title + " - " + appName,
		PageTitle:   pageTitle,
		CurrentPage: meta.CurrentPage,
		CurrentPath: current,
		CSRFToken:   GetCSRFToken(r),
		Nav:         h.tree().ProjectFor(current, caps),
		IsAdmin:     caps.Has(domainauth.CapabilityAdmin),
	}

	if st.Authenticated && st.User != nil {
		layout.IsAuthenticated = true
		layout.User = &viewmodel.User{
			Name:  st.User.Name,
			Email: st.User.Email,
			Role:  string(st.User.Role),
		}
	}
	return layout
}

// currentUser returns the signed-in user. Guarded handlers always have one.
func currentUser(ctx context.Context) domainauth.User {
	if st := StateFromContext(ctx); st.User != nil {
		return *st.User
	}
	return domainauth.User{}
}

// renderPage renders a full page or, for HTMX navigations, the content fragment.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data viewmodel.LayoutProvider) {
	h.renderPageStatus(w, r, data, http.StatusOK)
}

func (h *UIHandlers) renderPageStatus(
	w http.ResponseWriter,
	r *http.Request,
	data viewmodel.LayoutProvider,
	status int,
) {
	if !WantsPartial(r) {
		if err := h.T.renderStatus(w, "layout", data, status); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	layout := data.LayoutData()
	var buf bytes.Buffer
	// A <title> element lets htmx update document.title on partial swaps.
	buf.WriteString(`<title>` + html.EscapeString(layout.Title) + `</title>`)
	// Out-of-band update for the header title
	buf.WriteString(`<h1 id="header-title" class="header-title" hx-swap-oob="outerHTML">` +
		html.EscapeString(layout.PageTitle) + `</h1>`)
	if err := h.T.executeTo(&buf, "nav", layout); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial nav render")
		return
	}
	if err := h.T.executeTo(&buf, ContentTemplateFor(layout.CurrentPage), data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Hint client JS to update nav active state based on current path
	SetHXTrigger(w, "nav:activate", map[string]string{"path": layout.CurrentPath})
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger().Error("failed to write partial page", "error", err)
	}
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(`<div class="template-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
