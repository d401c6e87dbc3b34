// Package oidc signs dashboard users in against an OpenID Connect identity provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/ports"
	"golang.org/x/oauth2"
)

// fallbackLifetime applies when the token response carries no expiry.
const fallbackLifetime = time.Hour

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scope        string
	// DiscoveryURL is the issuer, with or without /.well-known/openid-configuration.
	DiscoveryURL string
	HTTPClient   *http.Client // Optional
}

func (c ProviderConfig) validate() error {
	switch {
	case c.ClientID == "":
		return errors.New("client ID is required")
	case c.ClientSecret == "":
		return errors.New("client secret is required")
	case c.RedirectURL == "":
		return errors.New("redirect URL is required")
	case c.DiscoveryURL == "":
		return errors.New("discovery URL is required")
	}
	return nil
}

// Provider implements ports.AuthProvider with the authorization code flow.
type Provider struct {
	oauth    *oauth2.Config
	op       *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	client   *http.Client
	openID   bool
	now      func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider fetches the discovery document once and builds the OAuth2 client from it.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	ctx := gooidc.ClientContext(context.Background(), client)
	op, err := gooidc.NewProvider(ctx, issuerOf(cfg.DiscoveryURL))
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		op:       op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		client:   client,
		openID:   slices.Contains(scopes, gooidc.ScopeOpenID),
		now:      time.Now,
	}, nil
}

// issuerOf strips the well-known suffix go-oidc appends itself.
func issuerOf(discoveryURL string) string {
	u := strings.TrimSuffix(discoveryURL, "/")
	u = strings.TrimSuffix(u, "/.well-known/openid-configuration")
	return strings.TrimSuffix(u, "/")
}

// Begin returns the IdP authorization URL with a fresh state and nonce.
// redirect_uri always comes from the config; in.RedirectURL is where the
// dashboard returns after the callback and is tracked by the caller.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}
	state, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomToken(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.oauth.AuthCodeURL(state,
		gooidc.Nonce(nonce),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nonce, nil
}

// Exchange trades the code for tokens and builds the identity from the verified
// ID token, topping up missing fields from the userinfo endpoint.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}

	ctx = gooidc.ClientContext(ctx, p.client)
	tok, err := p.oauth.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}

	var c claims
	if p.openID {
		if c, err = p.idTokenClaims(ctx, tok, in.Nonce); err != nil {
			return domainauth.Identity{}, err
		}
	}
	if !c.complete() {
		info, err := p.userInfoClaims(ctx, tok)
		if err != nil {
			return domainauth.Identity{}, err
		}
		c = c.merge(info)
	}

	id := c.identity()
	if id.UserID == "" {
		return domainauth.Identity{}, errors.New("identity has no subject")
	}
	id.ExpiresAt = tok.Expiry
	if id.ExpiresAt.IsZero() {
		id.ExpiresAt = p.now().Add(fallbackLifetime)
	}
	return id, nil
}

func (p *Provider) idTokenClaims(ctx context.Context, tok *oauth2.Token, nonce string) (claims, error) {
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return claims{}, errors.New("missing id_token in token response")
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return claims{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != nonce {
		return claims{}, errors.New("id_token nonce mismatch")
	}
	var c claims
	if err := idTok.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	return c, nil
}

func (p *Provider) userInfoClaims(ctx context.Context, tok *oauth2.Token) (claims, error) {
	info, err := p.op.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return claims{}, fmt.Errorf("fetch user info: %w", err)
	}
	var c claims
	if err := info.Claims(&c); err != nil {
		return claims{}, fmt.Errorf("decode user info: %w", err)
	}
	return c, nil
}

// claims accepts both the standard OIDC names and the AD/ADFS names.
// AD names win when both are present.
type claims struct {
	Sub               string   `json:"sub"`
	PreferredUsername string   `json:"preferred_username"`
	SamAccountName    string   `json:"samaccountname"`
	Email             string   `json:"email"`
	Mail              string   `json:"mail"`
	GivenName         string   `json:"given_name"`
	FirstName         string   `json:"firstname"`
	FamilyName        string   `json:"family_name"`
	LastName          string   `json:"lastname"`
	Groups            []string `json:"groups"`
	MemberOf          []string `json:"memberof"`
}

func (c claims) identity() domainauth.Identity {
	return domainauth.Identity{
		UserID:    firstSet(c.SamAccountName, c.PreferredUsername, c.Sub),
		Email:     firstSet(c.Mail, c.Email),
		FirstName: firstSet(c.FirstName, c.GivenName),
		LastName:  firstSet(c.LastName, c.FamilyName),
		Groups:    firstNonEmpty(c.MemberOf, c.Groups),
	}
}

func (c claims) complete() bool {
	id := c.identity()
	return id.UserID != "" && id.Email != ""
}

// merge fills c's empty identity fields from other without overriding.
func (c claims) merge(other claims) claims {
	have, more := c.identity(), other.identity()
	return claims{
		Sub:        firstSet(have.UserID, more.UserID),
		Email:      firstSet(have.Email, more.Email),
		GivenName:  firstSet(have.FirstName, more.FirstName),
		FamilyName: firstSet(have.LastName, more.LastName),
		Groups:     firstNonEmpty(have.Groups, more.Groups),
	}
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(vals ...[]string) []string {
	for _, v := range vals {
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

// randomToken returns n URL-safe characters from crypto/rand.
func randomToken(n int) (string, error) {
	b := make([]byte, base64.RawURLEncoding.DecodedLen(n)+1)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
