package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/domain/chat"
	"github.com/target/aihub-dashboard/internal/service"
)

// ChatHandlers serves the JSON chat boundary used by the chat widget.
type ChatHandlers struct {
	Svc     *service.ChatService
	Catalog *service.CatalogService
	Credits *service.CreditService
	Logger  *slog.Logger
}

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

type chatRequest struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
}

type chatResponse struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Provider  string    `json:"provider"`
	Charged   int64     `json:"charged"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
}

type providerResponse struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Model     string `json:"model"`
	Vendor    string `json:"vendor"`
	Available bool   `json:"available"`
}

func (h *ChatHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// requireUser returns the signed-in user or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (*domainauth.User, bool) {
	st := StateFromContext(r.Context())
	if !st.Authenticated || st.User == nil {
		writeUnauthenticated(w)
		return nil, false
	}
	return st.User, true
}

// Send relays one message to a provider.
// POST /api/chat {"message": "...", "provider": "openai"}.
func (h *ChatHandlers) Send(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req chatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Provider = strings.TrimSpace(req.Provider)
	if req.Provider == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "unknown_provider",
			Err:     errors.New("provider is required"),
		})
		return
	}

	ex, err := h.Svc.Send(r.Context(), service.SendInput{User: *user, Provider: req.Provider, Message: req.Message})
	if err != nil {
		h.logger().WarnContext(r.Context(), "chat send failed",
			"user_id", user.ID, "provider", req.Provider, "error", err)
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, chatResponse{
		ID:        ex.Reply.ID,
		Message:   ex.Reply.Content,
		Provider:  ex.Reply.Provider,
		Charged:   ex.Charged,
		Balance:   ex.Balance,
		CreatedAt: ex.Reply.CreatedAt,
	})
}

// Providers lists the catalog with availability.
// GET /api/chat/providers.
func (h *ChatHandlers) Providers(w http.ResponseWriter, _ *http.Request) {
	var out []providerResponse
	if h.Catalog != nil {
		for _, p := range h.Catalog.List() {
			out = append(out, providerResponse{
				Name:      p.Name,
				Title:     p.Title,
				Model:     p.Model,
				Vendor:    p.Vendor,
				Available: p.Enabled && h.Svc.HasProvider(p.Name),
			})
		}
	} else {
		for _, name := range h.Svc.Providers() {
			out = append(out, providerResponse{Name: name, Title: name, Available: true})
		}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"providers": out})
}

// History returns the signed-in user's newest messages.
// GET /api/chat/history?limit=N.
func (h *ChatHandlers) History(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit := ParseLimit(r, defaultHistoryLimit, maxHistoryLimit)
	msgs, err := h.Svc.Recent(r.Context(), user.ID, limit)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "chat history failed", "user_id", user.ID, "error", err)
		WriteServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs, "limit": limit})
}

// Balance returns the signed-in user's credits.
// GET /api/credits.
func (h *ChatHandlers) Balance(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	b, err := h.Credits.Balance(r.Context(), user.ID)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "credit balance failed", "user_id", user.ID, "error", err)
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"balance": b})
}
