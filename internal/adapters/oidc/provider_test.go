package oidc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/internal/ports"
)

const testClientID = "aihub"

// fakeIdP serves discovery, token and userinfo endpoints. ID tokens carry a
// dummy signature; tests swap in a verifier that skips the signature check.
type fakeIdP struct {
	srv      *httptest.Server
	idClaims map[string]any
	userInfo map[string]any
	omitID   bool
}

func newFakeIdP(t *testing.T) *fakeIdP {
	t.Helper()
	f := &fakeIdP{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{
			"issuer":                 f.srv.URL,
			"authorization_endpoint": f.srv.URL + "/authorize",
			"token_endpoint":         f.srv.URL + "/token",
			"userinfo_endpoint":      f.srv.URL + "/userinfo",
			"jwks_uri":               f.srv.URL + "/jwks",
		})
	})
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]any{"error": "invalid_grant"})
			return
		}
		resp := map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 600}
		if !f.omitID {
			resp["id_token"] = fakeJWT(f.idClaims)
		}
		writeJSON(w, resp)
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, f.userInfo)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeIdP) baseClaims(nonce string) map[string]any {
	return map[string]any{
		"iss":   f.srv.URL,
		"aud":   testClientID,
		"sub":   "sub-123",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"nonce": nonce,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func fakeJWT(claims map[string]any) string {
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`))
	body, _ := json.Marshal(claims)
	return header + "." + enc.EncodeToString(body) + "." + enc.EncodeToString([]byte("sig"))
}

func newTestProvider(t *testing.T, idp *fakeIdP, scope string) *Provider {
	t.Helper()
	p, err := NewProvider(ProviderConfig{
		ClientID:     testClientID,
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		Scope:        scope,
		DiscoveryURL: idp.srv.URL + "/.well-known/openid-configuration",
	})
	require.NoError(t, err)
	p.verifier = p.op.Verifier(&gooidc.Config{ClientID: testClientID, InsecureSkipSignatureCheck: true})
	return p
}

func TestNewProvider_Validation(t *testing.T) {
	full := ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb", DiscoveryURL: "http://x"}
	tests := []struct {
		name   string
		mutate func(*ProviderConfig)
		errMsg string
	}{
		{"client id", func(c *ProviderConfig) { c.ClientID = "" }, "client ID is required"},
		{"client secret", func(c *ProviderConfig) { c.ClientSecret = "" }, "client secret is required"},
		{"redirect", func(c *ProviderConfig) { c.RedirectURL = "" }, "redirect URL is required"},
		{"discovery", func(c *ProviderConfig) { c.DiscoveryURL = "" }, "discovery URL is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := full
			tt.mutate(&cfg)
			_, err := NewProvider(cfg)
			require.EqualError(t, err, tt.errMsg)
		})
	}
}

func TestNewProvider_DiscoveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	_, err := NewProvider(ProviderConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb", DiscoveryURL: srv.URL})
	require.ErrorContains(t, err, "oidc discovery")
}

func TestIssuerOf(t *testing.T) {
	assert.Equal(t, "https://idp.example", issuerOf("https://idp.example/.well-known/openid-configuration"))
	assert.Equal(t, "https://idp.example", issuerOf("https://idp.example/"))
	assert.Equal(t, "https://idp.example/tenant", issuerOf("https://idp.example/tenant"))
}

func TestProvider_Begin(t *testing.T) {
	idp := newFakeIdP(t)
	p := newTestProvider(t, idp, "openid email")

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/user"})
	require.NoError(t, err)
	assert.Len(t, state, 32)
	assert.Len(t, nonce, 32)
	assert.NotEqual(t, state, nonce)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, idp.srv.URL+"/authorize", u.Scheme+"://"+u.Host+u.Path)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, nonce, q.Get("nonce"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:8080/auth/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email", q.Get("scope"))

	_, _, _, err = p.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_ExchangeFromIDToken(t *testing.T) {
	idp := newFakeIdP(t)
	p := newTestProvider(t, idp, "openid profile email")
	idp.idClaims = idp.baseClaims("n-1")
	idp.idClaims["samaccountname"] = "jdoe"
	idp.idClaims["mail"] = "jdoe@example.com"
	idp.idClaims["email"] = "ignored@example.com"
	idp.idClaims["given_name"] = "Jane"
	idp.idClaims["memberof"] = []string{"cn=aihub-users"}

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n-1"})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", id.UserID)
	assert.Equal(t, "jdoe@example.com", id.Email)
	assert.Equal(t, "Jane", id.FirstName)
	assert.Equal(t, []string{"cn=aihub-users"}, id.Groups)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), id.ExpiresAt, time.Minute)
}

func TestProvider_ExchangeFillsFromUserInfo(t *testing.T) {
	idp := newFakeIdP(t)
	p := newTestProvider(t, idp, "openid")
	idp.idClaims = idp.baseClaims("n-1")
	idp.userInfo = map[string]any{
		"sub":         "sub-123",
		"email":       "jane@example.com",
		"family_name": "Doe",
		"groups":      []string{"aihub-admins"},
	}

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n-1"})
	require.NoError(t, err)
	assert.Equal(t, "sub-123", id.UserID)
	assert.Equal(t, "jane@example.com", id.Email)
	assert.Equal(t, "Doe", id.LastName)
	assert.Equal(t, []string{"aihub-admins"}, id.Groups)
}

func TestProvider_ExchangeWithoutOpenIDScopeUsesUserInfo(t *testing.T) {
	idp := newFakeIdP(t)
	p := newTestProvider(t, idp, "profile")
	idp.omitID = true
	idp.userInfo = map[string]any{"sub": "s-9", "preferred_username": "pat", "email": "pat@example.com"}

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n"})
	require.NoError(t, err)
	assert.Equal(t, "pat", id.UserID)
}

func TestProvider_ExchangeFailures(t *testing.T) {
	tests := []struct {
		name    string
		in      ports.ExchangeInput
		prepare func(*fakeIdP)
		errMsg  string
	}{
		{name: "missing code", in: ports.ExchangeInput{State: "s", Nonce: "n"}, errMsg: "authorization code is required"},
		{name: "missing state", in: ports.ExchangeInput{Code: "c", Nonce: "n"}, errMsg: "state is required"},
		{name: "missing nonce", in: ports.ExchangeInput{Code: "c", State: "s"}, errMsg: "nonce is required"},
		{name: "bad code", in: ports.ExchangeInput{Code: "bad", State: "s", Nonce: "n-1"}, errMsg: "exchange code for token"},
		{
			name:    "nonce mismatch",
			in:      ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "other"},
			prepare: func(f *fakeIdP) { f.idClaims = f.baseClaims("n-1") },
			errMsg:  "nonce mismatch",
		},
		{
			name:    "wrong audience",
			in:      ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n-1"},
			prepare: func(f *fakeIdP) { f.idClaims = f.baseClaims("n-1"); f.idClaims["aud"] = "someone-else" },
			errMsg:  "verify id_token",
		},
		{
			name:    "missing id token",
			in:      ports.ExchangeInput{Code: "good-code", State: "s", Nonce: "n-1"},
			prepare: func(f *fakeIdP) { f.omitID = true },
			errMsg:  "missing id_token",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idp := newFakeIdP(t)
			p := newTestProvider(t, idp, "openid")
			idp.idClaims = idp.baseClaims("n-1")
			idp.userInfo = map[string]any{"sub": "sub-123", "email": "x@example.com"}
			if tt.prepare != nil {
				tt.prepare(idp)
			}
			_, err := p.Exchange(context.Background(), tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestClaimsMergeKeepsExistingValues(t *testing.T) {
	have := claims{SamAccountName: "jdoe", FirstName: "Jane"}
	more := claims{Sub: "s-1", Email: "j@example.com", GivenName: "Other", Groups: []string{"g"}}

	id := have.merge(more).identity()
	assert.Equal(t, "jdoe", id.UserID)
	assert.Equal(t, "Jane", id.FirstName)
	assert.Equal(t, "j@example.com", id.Email)
	assert.Equal(t, []string{"g"}, id.Groups)
	assert.True(t, have.merge(more).complete())
	assert.False(t, have.complete())
}

func TestRandomToken(t *testing.T) {
	a, err := randomToken(24)
	require.NoError(t, err)
	b, err := randomToken(24)
	require.NoError(t, err)
	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
	assert.False(t, strings.ContainsAny(a, "+/="))
}
