package ports_test

import (
	"testing"

	"github.com/target/aihub-dashboard/internal/adapters/authroles"
	"github.com/target/aihub-dashboard/internal/adapters/devauth"
	"github.com/target/aihub-dashboard/internal/adapters/oidc"
	redisadapter "github.com/target/aihub-dashboard/internal/adapters/redis"
	"github.com/target/aihub-dashboard/internal/mocks"
	mocksauth "github.com/target/aihub-dashboard/internal/mocks/auth"
	mockschat "github.com/target/aihub-dashboard/internal/mocks/chat"
	"github.com/target/aihub-dashboard/internal/ports"
)

// This test only verifies at compile time that mocks and adapters conform to the ports.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mocksauth.MockAuthProvider)(nil)
	var _ ports.SessionStore = (*mocksauth.MemorySessionStore)(nil)
	var _ ports.RoleMapper = (*mocksauth.StaticRoleMapper)(nil)
	var _ ports.ChatLog = (*mockschat.MemoryChatLog)(nil)
	var _ ports.CreditStore = (*mockschat.MemoryCreditStore)(nil)
	var _ ports.ChatProvider = (*mocks.MockChatProvider)(nil)
}

func TestAdaptersImplementAuthPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*oidc.Provider)(nil)
	var _ ports.AuthProvider = (*devauth.Provider)(nil)
	var _ ports.SessionStore = (*redisadapter.SessionStore)(nil)
	var _ ports.RoleMapper = (*authroles.StaticRoleMapper)(nil)
}
