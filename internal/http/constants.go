package httpx

// CurrentPage constants define the page identifiers used in templates and navigation.
const (
	PageDashboard     = "dashboard"
	PageChatbot       = "chatbot"
	PageComparison    = "comparison"
	PageCredits       = "credits"
	PageActivity      = "activity"
	PageConversations = "conversations"
	PageUsers         = "users"
)

// Cookie names shared by the auth handlers and middleware.
const (
	SessionCookieName   = "session_id"
	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	postLoginCookieName = "post_login_redirect"
)

// Public auth locations.
const (
	signedOutPath = "/auth/signed-out"
	defaultLogin  = "/auth/login"
	defaultHome   = "/user"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
	StaticPathFromRoot   = "frontend/static"
)

//nolint:gochecknoglobals // static read-only lookup for templates; avoids per-call allocations
var contentTemplates = map[string]string{
	PageDashboard:     "dashboard-content",
	PageChatbot:       "chatbot-content",
	PageComparison:    "comparison-content",
	PageCredits:       "credits-content",
	PageActivity:      "activity-content",
	PageConversations: "conversations-content",
	PageUsers:         "users-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to dashboard-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "dashboard-content"
}
