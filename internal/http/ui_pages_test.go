package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/internal/adapters/llm"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	chatmocks "github.com/target/aihub-dashboard/internal/mocks/chat"
	"github.com/target/aihub-dashboard/internal/ports"
	"github.com/target/aihub-dashboard/internal/service"
)

// uiHandlersWithServices wires the screen handlers to in-memory services.
func uiHandlersWithServices(t *testing.T, starting int64) *UIHandlers {
	t.Helper()
	h := CreateUIHandlersForTest(t)
	if h == nil {
		return nil
	}

	credits := service.MustNewCreditService(service.CreditServiceOptions{
		Store:    chatmocks.NewMemoryCreditStore(),
		Starting: starting,
	})
	chatSvc := service.MustNewChatService(service.ChatServiceOptions{
		Providers: []ports.ChatProvider{llm.Echo{}},
		Stores:    service.ChatStores{Log: chatmocks.NewMemoryChatLog(), Credits: credits},
	})
	catalog := service.NewCatalogService(chatSvc.Providers())
	dashboard, err := service.NewDashboardService(service.DashboardServiceOptions{
		Chat:    chatSvc,
		Credits: credits,
		Catalog: catalog,
	})
	require.NoError(t, err)

	h.Chat = chatSvc
	h.Credits = credits
	h.Catalog = catalog
	h.Dashboard = dashboard
	h.CreditsPerMessage = 3
	return h
}

func TestUIHandlers_DashboardPage(t *testing.T) {
	h := uiHandlersWithServices(t, 42)
	if h == nil {
		return
	}

	rec := httptest.NewRecorder()
	h.DashboardPage(rec, signedIn(httptest.NewRequest(http.MethodGet, "/user", nil), domainauth.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `id="stat-credits">42<`)
	assert.Contains(t, body, "/user/chatbot/echo")
}

func TestUIHandlers_CreditsPage(t *testing.T) {
	h := uiHandlersWithServices(t, 17)
	if h == nil {
		return
	}

	rec := httptest.NewRecorder()
	h.CreditsPage(rec, signedIn(httptest.NewRequest(http.MethodGet, "/user/credits", nil), domainauth.RoleUser))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ContainsAll(rec.Body.String(), []string{"17 credits", "Each message costs 3 credits."}),
		rec.Body.String())
}
