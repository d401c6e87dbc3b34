package httpx

import (
	"errors"
	"net/http"

	"github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/domain/nav"
	"github.com/target/aihub-dashboard/internal/http/ui/viewmodel"
	"github.com/target/aihub-dashboard/internal/service"
)

const (
	activityLimit    = 50
	chatHistoryLimit = 40
)

// Index sends the site root to the dashboard.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, nav.PathDashboard, http.StatusSeeOther)
}

// DashboardPage renders the landing screen with the user's stats.
func (h *UIHandlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	page := &viewmodel.DashboardPage{
		Layout:    h.buildLayout(r, PageMeta{Title: "Dashboard", CurrentPage: PageDashboard}),
		Providers: h.availableProviders(),
	}
	if h.Dashboard != nil {
		user := currentUser(r.Context())
		stats, err := h.Dashboard.Stats(r.Context(), user.ID)
		if err != nil {
			h.logger().ErrorContext(r.Context(), "dashboard stats failed", "user_id", user.ID, "error", err)
			page.Error = errMsgLoadFails
		}
		page.Stats = viewmodel.Stats{
			Credits:            stats.Credits,
			MessagesSent:       stats.MessagesSent,
			ProvidersAvailable: stats.ProvidersAvailable,
		}
	}
	h.renderPage(w, r, page)
}

// availableProviders returns catalog entries that are enabled and registered.
func (h *UIHandlers) availableProviders() []chat.ProviderInfo {
	if h.Catalog == nil {
		return nil
	}
	var out []chat.ProviderInfo
	for _, p := range h.Catalog.List() {
		if p.Enabled && (h.Chat == nil || h.Chat.HasProvider(p.Name)) {
			out = append(out, p)
		}
	}
	return out
}

// Chatbot renders the provider picker.
func (h *UIHandlers) Chatbot(w http.ResponseWriter, r *http.Request) {
	page := &viewmodel.ChatPage{
		Layout:    h.buildLayout(r, PageMeta{Title: "Chatbot", CurrentPage: PageChatbot}),
		Providers: h.availableProviders(),
		MaxLength: chat.MaxMessageLength,
	}
	h.renderPage(w, r, page)
}

// ChatProvider renders the chat widget for one provider.
// GET /user/chatbot/{provider}.
func (h *UIHandlers) ChatProvider(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	var info *chat.ProviderInfo
	for _, p := range h.availableProviders() {
		if p.Name == name {
			info = &p
			break
		}
	}
	if info == nil {
		h.NotFound(w, r)
		return
	}

	user := currentUser(r.Context())
	page := &viewmodel.ChatPage{
		Layout:    h.buildLayout(r, PageMeta{Title: info.Title, CurrentPage: PageChatbot}),
		Provider:  info,
		Providers: h.availableProviders(),
		MaxLength: chat.MaxMessageLength,
	}

	var loadErr error
	if h.Chat != nil {
		recent, err := h.Chat.Recent(r.Context(), user.ID, chatHistoryLimit)
		loadErr = errors.Join(loadErr, err)
		page.History = oldestFirst(recent, name)
	}
	if h.Credits != nil {
		b, err := h.Credits.Balance(r.Context(), user.ID)
		loadErr = errors.Join(loadErr, err)
		page.Balance = b
	}
	if loadErr != nil {
		h.logger().ErrorContext(r.Context(), "chat page load failed", "user_id", user.ID, "error", loadErr)
		page.Error = errMsgLoadFails
	}
	h.renderPage(w, r, page)
}

// oldestFirst keeps provider's messages from a newest-first list and reverses them.
func oldestFirst(msgs []chat.Message, provider string) []chat.Message {
	var out []chat.Message
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Provider == provider {
			out = append(out, msgs[i])
		}
	}
	return out
}

// Comparison renders the provider cost and latency table.
func (h *UIHandlers) Comparison(w http.ResponseWriter, r *http.Request) {
	page := &viewmodel.ComparisonPage{
		Layout: h.buildLayout(r, PageMeta{Title: "Comparison", CurrentPage: PageComparison}),
	}
	if h.Catalog != nil {
		page.Providers = h.Catalog.List()
	}
	h.renderPage(w, r, page)
}

// CreditsPage renders the balance and top-up form.
func (h *UIHandlers) CreditsPage(w http.ResponseWriter, r *http.Request) {
	page := h.creditsView(r)
	h.renderPage(w, r, page)
}

func (h *UIHandlers) creditsView(r *http.Request) *viewmodel.CreditsPage {
	page := &viewmodel.CreditsPage{
		Layout:   h.buildLayout(r, PageMeta{Title: "Credits", CurrentPage: PageCredits, Path: nav.PathCredits}),
		MaxTopUp: service.MaxTopUp,
		PerChat:  h.CreditsPerMessage,
	}
	if h.Credits != nil {
		user := currentUser(r.Context())
		b, err := h.Credits.Balance(r.Context(), user.ID)
		if err != nil {
			h.logger().ErrorContext(r.Context(), "credit balance failed", "user_id", user.ID, "error", err)
			page.Error = errMsgLoadFails
		}
		page.Balance = b
	}
	return page
}

// CreditsTopUp adds credits to the signed-in user's balance.
// POST /user/credits/top-up (form field "amount").
func (h *UIHandlers) CreditsTopUp(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	amount, ok := parseFormInt64(r, "amount")
	var err error
	if !ok {
		err = service.ErrInvalidAmount
	} else {
		_, err = h.Credits.TopUp(r.Context(), user.ID, amount)
	}

	page := h.creditsView(r)
	if err != nil {
		appErr, _ := classifyError(err)
		page.Error = appErr.Message
		triggerToast(w, appErr.Message, "error")
		h.renderPageStatus(w, r, page, appErr.Status())
		return
	}

	page.Flash = "Credits added."
	triggerToast(w, page.Flash, "success")
	h.renderPage(w, r, page)
}

// Activity lists the signed-in user's recent messages.
func (h *UIHandlers) Activity(w http.ResponseWriter, r *http.Request) {
	page := &viewmodel.ActivityPage{
		Layout: h.buildLayout(r, PageMeta{Title: "Activity", CurrentPage: PageActivity}),
	}
	if h.Chat != nil {
		user := currentUser(r.Context())
		msgs, err := h.Chat.Recent(r.Context(), user.ID, activityLimit)
		if err != nil {
			h.logger().ErrorContext(r.Context(), "activity load failed", "user_id", user.ID, "error", err)
			page.Error = errMsgLoadFails
		}
		page.Messages = msgs
	}
	h.renderPage(w, r, page)
}
