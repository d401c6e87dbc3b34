package devauth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/internal/adapters/authroles"
	domainauth "github.com/target/aihub-dashboard/internal/domain/auth"
	"github.com/target/aihub-dashboard/internal/ports"
)

func TestProvider_BeginAndExchange(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com", Groups: []string{"users"}})
	require.NoError(t, err)

	url, state, nonce, err := prov.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/auth/callback?"), "unexpected authURL: %s", url)
	assert.Contains(t, url, "state="+state)
	assert.Len(t, state, 24)
	assert.NotEmpty(t, nonce)

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{Code: "dev", State: state, Nonce: nonce})
	require.NoError(t, err)
	assert.Equal(t, "dev-user", id.UserID)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.Equal(t, "Dev", id.FirstName)
	assert.Equal(t, []string{"users"}, id.Groups)
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com"})
	require.ErrorContains(t, err, "UserID is required")

	_, err = NewProvider(Config{UserID: "dev"})
	require.ErrorContains(t, err, "Email is required")
}

func TestProvider_ExchangeRefreshesExpiry(t *testing.T) {
	prov, err := NewProvider(Config{UserID: "dev", Email: "dev@example.com", SessionDuration: time.Hour})
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	prov.now = func() time.Time { return base }
	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour), id.ExpiresAt)

	prov.now = func() time.Time { return base.Add(3 * time.Hour) }
	id, err = prov.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, base.Add(4*time.Hour), id.ExpiresAt)
}

func TestProvider_GroupsMapToRole(t *testing.T) {
	prov, err := NewProvider(Config{
		UserID:    "admin",
		Email:     "admin@example.com",
		FirstName: "Ada",
		LastName:  "Admin",
		Groups:    []string{"aihub-admins"},
	})
	require.NoError(t, err)

	id, err := prov.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)

	mapper := authroles.StaticRoleMapper{AdminGroup: "aihub-admins", UserGroup: "aihub-users"}
	assert.Equal(t, domainauth.RoleAdmin, mapper.Map(id.Groups))
	assert.Equal(t, "Ada", id.FirstName)

	id.Groups[0] = "mutated"
	again, err := prov.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"aihub-admins"}, again.Groups)
}
