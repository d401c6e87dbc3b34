package httpx

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/internal/http/ui/viewmodel"
)

func TestTemplateRenderer_LoadTemplates(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	if tr == nil {
		return
	}
	require.NotNil(t, tr.t)

	names := map[string]bool{}
	for _, tmpl := range tr.t.Templates() {
		names[tmpl.Name()] = true
	}
	expected := []string{"layout", "nav", "user-menu", "flash", "error-layout", "signed-out"}
	for _, name := range ContentTemplateMap() {
		expected = append(expected, name)
	}
	for _, name := range expected {
		assert.True(t, names[name], "template %s should be loaded", name)
	}
}

func TestNewTemplateRenderer_RequiresFS(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.Error(t, err)
}

func TestContentTemplateFor(t *testing.T) {
	assert.Equal(t, "chatbot-content", ContentTemplateFor(PageChatbot))
	assert.Equal(t, "users-content", ContentTemplateFor(PageUsers))
	assert.Equal(t, "dashboard-content", ContentTemplateFor("unknown"))
}

func TestTemplateRenderer_RenderSection(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	if tr == nil {
		return
	}
	cloned, err := tr.t.Clone()
	require.NoError(t, err)
	cloned, err = cloned.Parse(`{{define "probe"}}{{ renderSection .CurrentPage . }}{{end}}`)
	require.NoError(t, err)

	t.Run("credits", func(t *testing.T) {
		page := &viewmodel.CreditsPage{
			Layout:   viewmodel.Layout{CurrentPage: PageCredits, CSRFToken: "tok"},
			Balance:  1500,
			MaxTopUp: 100,
			PerChat:  1,
		}
		var buf bytes.Buffer
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", page))
		assert.True(t, ContainsAll(buf.String(), []string{"1,500 credits", `value="tok"`, "costs 1 credit."}), buf.String())
	})

	t.Run("unknown page falls back to dashboard", func(t *testing.T) {
		page := &viewmodel.DashboardPage{Layout: viewmodel.Layout{CurrentPage: "nope"}}
		var buf bytes.Buffer
		require.NoError(t, cloned.ExecuteTemplate(&buf, "probe", page))
		assert.Contains(t, buf.String(), "No chat providers are available")
	})
}

func TestTemplateRenderer_RenderError(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	if tr == nil {
		return
	}
	rec := httptest.NewRecorder()
	err := tr.RenderError(rec, httptest.NewRequest(http.MethodGet, "/missing", nil), http.StatusNotFound,
		viewmodel.ErrorPage{Title: "Not found", Message: "gone", ShowLogin: true, RedirectURI: "%2Fmissing"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/auth/login")
}

func TestTemplateRenderer_FailedRenderWritesNothing(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	if tr == nil {
		return
	}
	rec := httptest.NewRecorder()
	err := tr.renderTemplate(rec, "does-not-exist", nil)
	require.Error(t, err)
	assert.Zero(t, rec.Body.Len())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}
