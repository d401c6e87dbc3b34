package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/target/aihub-dashboard/internal/domain/nav"
	"github.com/target/aihub-dashboard/internal/http/ui/viewmodel"
	"github.com/target/aihub-dashboard/internal/service"
	"golang.org/x/sync/errgroup"
)

const (
	conversationsLimit = 100
	usersScanLimit     = 500
	balanceFetchLimit  = 8
)

// Admin sends the admin section root to its first screen.
func (h *UIHandlers) Admin(w http.ResponseWriter, r *http.Request) {
	redirectTo(w, r, nav.PathConversations)
}

// Conversations renders the moderation list of recent messages across users.
func (h *UIHandlers) Conversations(w http.ResponseWriter, r *http.Request) {
	page := &viewmodel.ConversationsPage{
		Layout: h.buildLayout(r, PageMeta{Title: "Conversations", CurrentPage: PageConversations}),
	}
	if h.Moderation != nil {
		msgs, err := h.Moderation.Recent(r.Context(), ParseLimit(r, conversationsLimit, 500))
		if err != nil {
			h.logger().ErrorContext(r.Context(), "moderation list failed", "error", err)
			page.Error = errMsgLoadFails
		}
		for _, m := range msgs {
			page.Rows = append(page.Rows, viewmodel.ConversationRow{Message: m.Message, Body: m.Body})
		}
	}
	h.renderPage(w, r, page)
}

// Users renders the credit administration list.
func (h *UIHandlers) Users(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, h.usersPage(r))
}

func (h *UIHandlers) usersPage(r *http.Request) *viewmodel.UsersPage {
	page := &viewmodel.UsersPage{
		Layout:   h.buildLayout(r, PageMeta{Title: "Users", CurrentPage: PageUsers, Path: nav.PathUsers}),
		MaxGrant: service.MaxTopUp,
	}
	if h.Moderation == nil {
		return page
	}
	users, err := h.Moderation.Users(r.Context(), usersScanLimit)
	if err != nil {
		h.logger().ErrorContext(r.Context(), "user list failed", "error", err)
		page.Error = errMsgLoadFails
		return page
	}
	page.Users = make([]viewmodel.UserRow, len(users))
	for i, u := range users {
		page.Users[i] = viewmodel.UserRow{
			UserID:   u.UserID,
			Email:    u.Email,
			Messages: u.Messages,
			LastSeen: u.LastSeen,
		}
	}
	if err := h.fillBalances(r.Context(), page.Users); err != nil {
		h.logger().ErrorContext(r.Context(), "user balances failed", "error", err)
		page.Error = errMsgLoadFails
	}
	return page
}

// fillBalances looks up each row's balance with bounded concurrency.
func (h *UIHandlers) fillBalances(ctx context.Context, rows []viewmodel.UserRow) error {
	if h.Credits == nil {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(balanceFetchLimit)
	for i := range rows {
		g.Go(func() error {
			b, err := h.Credits.Balance(gctx, rows[i].UserID)
			if err != nil {
				return err
			}
			rows[i].Balance = b
			return nil
		})
	}
	return g.Wait()
}

// GrantCredits adds credits to another user's balance.
// POST /admin/users/{id}/credits (form field "amount").
func (h *UIHandlers) GrantCredits(w http.ResponseWriter, r *http.Request) {
	admin := currentUser(r.Context())
	userID := strings.TrimSpace(r.PathValue("id"))
	amount, ok := parseFormInt64(r, "amount")

	var err error
	switch {
	case userID == "":
		h.NotFound(w, r)
		return
	case !ok:
		err = service.ErrInvalidAmount
	default:
		_, err = h.Credits.Grant(r.Context(), admin.ID, userID, amount)
	}

	page := h.usersPage(r)
	if err != nil {
		appErr, _ := classifyError(err)
		page.Error = appErr.Message
		triggerToast(w, appErr.Message, "error")
		h.renderPageStatus(w, r, page, appErr.Status())
		return
	}
	page.Flash = "Credits granted to " + userID + "."
	triggerToast(w, page.Flash, "success")
	h.renderPage(w, r, page)
}
