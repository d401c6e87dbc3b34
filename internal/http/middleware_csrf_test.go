package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csrfOKHandler() http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("token=" + GetCSRFToken(r)))
	}))
}

func issuedCSRFToken(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/credits", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == DefaultCSRFCookieName {
			require.NotEmpty(t, c.Value)
			assert.False(t, c.HttpOnly)
			assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
			return c.Value
		}
	}
	t.Fatal("CSRF cookie not set")
	return ""
}

func TestCSRFProtection_IssuesTokenOnSafeRequests(t *testing.T) {
	h := csrfOKHandler()
	token := issuedCSRFToken(t, h)

	req := httptest.NewRequest(http.MethodGet, "/user/credits", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "token="+token, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies(), "existing token is reused")
}

func TestCSRFProtection_Validation(t *testing.T) {
	h := csrfOKHandler()
	token := issuedCSRFToken(t, h)
	form := url.Values{DefaultCSRFCookieName: {token}}.Encode()

	tests := []struct {
		name   string
		build  func() *http.Request
		status int
	}{
		{
			name: "no token",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/user/credits/top-up", nil)
			},
			status: http.StatusForbidden,
		},
		{
			name: "header token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/user/credits/top-up", nil)
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				r.Header.Set(DefaultCSRFHeaderName, token)
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "mismatched header token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/user/credits/top-up", nil)
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				r.Header.Set(DefaultCSRFHeaderName, token+"x")
				return r
			},
			status: http.StatusForbidden,
		},
		{
			name: "form token",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/user/credits/top-up", strings.NewReader(form))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				return r
			},
			status: http.StatusOK,
		},
		{
			name: "form token with json content type",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/user/credits/top-up", strings.NewReader(form))
				r.Header.Set("Content-Type", "application/json")
				r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: token})
				return r
			},
			status: http.StatusForbidden,
		},
		{
			name: "bearer requests are exempt",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{}`))
				r.Header.Set("Authorization", "Bearer session-1")
				return r
			},
			status: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, tt.build())
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCSRFProtection_SecureCookieBehindProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "http, https")
	rec := httptest.NewRecorder()
	csrfOKHandler().ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
}

func TestRequiresCSRFValidation(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace} {
		assert.False(t, requiresCSRFValidation(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.True(t, requiresCSRFValidation(m), m)
	}
}
