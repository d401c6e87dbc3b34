package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	aihub "github.com/target/aihub-dashboard"
	"github.com/target/aihub-dashboard/internal/domain/access"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/domain/nav"
	"github.com/target/aihub-dashboard/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth       AuthServiceInterface
	Chat       *service.ChatService
	Credits    *service.CreditService
	Catalog    *service.CatalogService
	Dashboard  *service.DashboardService
	Moderation *service.ModerationService
	// Tree is the navigation tree; nil uses nav.DefaultTree.
	Tree *nav.Tree
	// Roles maps roles to capabilities; nil uses domainauth.DefaultRoleCapabilities.
	Roles        domainauth.RoleCapabilities
	LoginPath    string
	FallbackPath string
	CookieDomain string
	// CreditsPerMessage is displayed on the credits screen.
	CreditsPerMessage int64
	Health            *HealthHandler
	// TemplateFS overrides template discovery, mainly for tests.
	TemplateFS fs.FS
	IsDev      bool         // Development mode flag for hot reloading, etc.
	Logger     *slog.Logger // Logger for template and HTTP errors (optional)
}

func (s RouterServices) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// NewRouter creates and configures a new HTTP router with browser middleware.
// It fails when a guard cannot be built, so a bad login or fallback path
// aborts startup instead of producing an open route.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Auth == nil {
		return nil, errors.New("auth service is required")
	}
	if services.Tree == nil {
		services.Tree = nav.DefaultTree()
	}
	if services.Roles == nil {
		services.Roles = domainauth.DefaultRoleCapabilities()
	}
	if services.LoginPath == "" {
		services.LoginPath = defaultLogin
	}
	if services.FallbackPath == "" {
		services.FallbackPath = defaultHome
	}

	mux := http.NewServeMux()
	rr := &routeRegistrar{
		mux:  mux,
		auth: services.Auth,
		tree: services.Tree,
		opts: access.Options{
			LoginPath:    services.LoginPath,
			FallbackPath: services.FallbackPath,
			Roles:        services.Roles,
		},
		csrf: CSRFProtection(CSRFConfig{CookieDomain: services.CookieDomain}),
	}

	registerAuthRoutes(mux, &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		HomePath:     services.FallbackPath,
		Roles:        services.Roles,
		Logger:       services.Logger,
	})

	health := http.Handler(http.HandlerFunc(healthHandler))
	if services.Health != nil {
		health = services.Health
	}
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)

	// Static assets at /static
	// Dev mode: serve from disk for hot reloading
	// Prod mode: serve from embedded FS
	mux.Handle("GET /static/", staticWithFallback(services.IsDev, services.logger()))

	registerAPIRoutes(rr, services)

	uiHandlers := setupUIHandlers(services)
	if uiHandlers != nil {
		registerUIRoutes(rr, uiHandlers)
	}

	if rr.err != nil {
		return nil, rr.err
	}

	// Wrap with NotFound handler and browser detection middleware
	handler := &notFoundHandler{
		mux:        mux,
		uiHandlers: uiHandlers,
		auth:       services.Auth,
	}
	return BrowserDetection()(handler), nil
}

// routeRegistrar wires guarded routes and remembers the first guard error.
type routeRegistrar struct {
	mux  *http.ServeMux
	auth AuthServiceInterface
	tree *nav.Tree
	opts access.Options
	csrf func(http.Handler) http.Handler
	err  error
}

// guardFor builds the guard for screen: the tree's requirement for that path
// plus any minimum the route itself demands.
func (rr *routeRegistrar) guardFor(screen string, minimum ...domainauth.Capability) (access.Guard, error) {
	requires := domainauth.NewCapabilitySet(minimum...)
	if screen != "" {
		if route, ok := rr.tree.Resolve(screen); ok {
			requires = requires.Union(domainauth.NewCapabilitySet(route.Requires...))
		}
	}
	opts := rr.opts
	opts.Requires = requires.Sorted()
	g, err := access.New(opts)
	if err != nil {
		return access.Guard{}, fmt.Errorf("guard for %q: %w", screen, err)
	}
	return g, nil
}

// page registers a browser screen behind Guard and CSRF protection.
func (rr *routeRegistrar) page(pattern, screen string, h http.HandlerFunc, minimum ...domainauth.Capability) {
	g, err := rr.guardFor(screen, minimum...)
	if err != nil {
		rr.fail(err)
		return
	}
	rr.mux.Handle(pattern, Guard(rr.auth, g)(rr.csrf(h)))
}

// api registers a JSON endpoint behind GuardAPI and CSRF protection.
func (rr *routeRegistrar) api(pattern string, h http.HandlerFunc, minimum ...domainauth.Capability) {
	g, err := rr.guardFor("", minimum...)
	if err != nil {
		rr.fail(err)
		return
	}
	rr.mux.Handle(pattern, GuardAPI(rr.auth, g)(rr.csrf(h)))
}

func (rr *routeRegistrar) fail(err error) {
	if rr.err == nil {
		rr.err = err
	}
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
}

func registerAPIRoutes(rr *routeRegistrar, services RouterServices) {
	user := domainauth.CapabilityUser
	chat := &ChatHandlers{
		Svc:     services.Chat,
		Catalog: services.Catalog,
		Credits: services.Credits,
		Logger:  services.Logger,
	}
	if services.Chat != nil {
		rr.api("POST /api/chat", chat.Send, user)
		rr.api("GET /api/chat/providers", chat.Providers)
		rr.api("GET /api/chat/history", chat.History, user)
	}
	if services.Credits != nil {
		rr.api("GET /api/credits", chat.Balance, user)
	}
	menu := &NavHandlers{Tree: services.Tree, Roles: services.Roles}
	rr.api("GET /api/nav", menu.Menu)
}

func registerUIRoutes(rr *routeRegistrar, h *UIHandlers) {
	user := domainauth.CapabilityUser
	admin := domainauth.CapabilityAdmin

	rr.mux.HandleFunc("GET /{$}", h.Index)
	rr.page("GET "+nav.PathDashboard, nav.PathDashboard, h.DashboardPage)
	rr.page("GET "+nav.PathChatbot, nav.PathChatbot, h.Chatbot, user)
	rr.page("GET "+nav.PathChatbot+"/{provider}", nav.PathChatbot, h.ChatProvider, user)
	rr.page("GET "+nav.PathComparison, nav.PathComparison, h.Comparison, user)
	rr.page("GET "+nav.PathCredits, nav.PathCredits, h.CreditsPage, user)
	rr.page("POST "+nav.PathCredits+"/top-up", nav.PathCredits, h.CreditsTopUp, user)
	rr.page("GET "+nav.PathActivity, nav.PathActivity, h.Activity, user)

	rr.page("GET "+nav.PathAdmin, nav.PathAdmin, h.Admin, admin)
	rr.page("GET "+nav.PathConversations, nav.PathConversations, h.Conversations, admin)
	rr.page("GET "+nav.PathUsers, nav.PathUsers, h.Users, admin)
	rr.page("POST "+nav.PathUsers+"/{id}/credits", nav.PathUsers, h.GrantCredits, admin)

	// Public auth-related UI routes (no guard)
	rr.mux.HandleFunc("GET "+signedOutPath, h.SignedOut)
}

// setupUIHandlers returns nil when templates cannot be loaded; the API keeps working.
func setupUIHandlers(services RouterServices) *UIHandlers {
	templateFS, err := templateFSFor(services)
	if err != nil {
		services.logger().Error("failed to locate templates", slog.Any("error", err))
		return nil
	}

	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS,
		Logger:     services.Logger,
	})
	if err != nil {
		services.logger().Error("failed to create template renderer", slog.Any("error", err))
		return nil
	}

	return &UIHandlers{
		T:                 tr,
		Tree:              services.Tree,
		Roles:             services.Roles,
		Chat:              services.Chat,
		Credits:           services.Credits,
		Catalog:           services.Catalog,
		Dashboard:         services.Dashboard,
		Moderation:        services.Moderation,
		CreditsPerMessage: services.CreditsPerMessage,
		LoginPath:         services.LoginPath,
		IsDev:             services.IsDev,
		Logger:            services.Logger,
	}
}

func templateFSFor(services RouterServices) (fs.FS, error) {
	switch {
	case services.TemplateFS != nil:
		return services.TemplateFS, nil
	case services.IsDev:
		return os.DirFS(TemplatePathFromRoot), nil
	default:
		return fs.Sub(aihub.TemplateFS, TemplatePathFromRoot)
	}
}

// staticWithFallback serves /static/* assets.
// In dev mode (isDev=true), serves from disk for hot reloading.
// In production mode (isDev=false), serves from embedded FS.
func staticWithFallback(isDev bool, logger *slog.Logger) http.Handler {
	if isDev {
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}

	staticSub, err := fs.Sub(aihub.StaticFS, StaticPathFromRoot)
	if err != nil {
		logger.Error("failed to create sub-filesystem for static assets", slog.Any("error", err))
		// Fallback to disk serving if embed fails
		return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.Dir(StaticPathFromRoot))), false)
	}
	return staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))), true)
}

// staticWithCacheHeaders disables caching in dev so edits show up on reload.
func staticWithCacheHeaders(handler http.Handler, cacheable bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cacheable {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux        *http.ServeMux
	uiHandlers *UIHandlers
	auth       AuthServiceInterface
}

// ServeHTTP implements http.Handler and provides custom 404 handling.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cw := newCaptureWriter()
	// Serve the request through the mux, capturing status, headers, and body
	h.mux.ServeHTTP(cw, r)

	if cw.status != http.StatusNotFound || strings.HasPrefix(r.URL.Path, "/static/") {
		cw.flushTo(w)
		return
	}
	// Handlers that rendered their own 404 keep it; only the mux's plain-text default is replaced.
	if !strings.HasPrefix(cw.header.Get("Content-Type"), "text/plain") {
		cw.flushTo(w)
		return
	}
	if h.uiHandlers == nil {
		http.NotFound(w, r)
		return
	}
	// Unmatched routes never passed a guard, so resolve the session here
	// to pick between the signed-in and signed-out error page.
	if session := getSessionFromRequest(r, h.auth); session != nil {
		r = r.WithContext(SetSessionInContext(r.Context(), session))
	}
	h.uiHandlers.NotFound(w, r)
}

// captureWriter buffers headers, status and body so we can decide post-dispatch.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	if _, err := w.Write(c.buf.Bytes()); err != nil {
		slog.Default().Error("failed to write captured response", "error", err)
	}
}
