package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/aihub-dashboard/config"
	"github.com/target/aihub-dashboard/internal/domain/nav"
)

func providerNames(t *testing.T, cfg config.ChatConfig) []string {
	t.Helper()
	providers, err := BuildChatProviders(cfg, nil)
	require.NoError(t, err)
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names
}

func TestBuildChatProviders(t *testing.T) {
	assert.Equal(t, []string{"echo"}, providerNames(t, config.ChatConfig{EchoEnabled: true}))

	all := config.ChatConfig{
		OpenAI:      config.ChatProviderConfig{APIKey: "sk-test", BaseURL: "http://127.0.0.1:1/v1"},
		Anthropic:   config.ChatProviderConfig{APIKey: "ak-test", Model: "claude-test"},
		EchoEnabled: true,
	}
	assert.Equal(t, []string{"openai", "anthropic", "echo"}, providerNames(t, all))
}

func TestBuildChatProvidersRequiresOne(t *testing.T) {
	_, err := BuildChatProviders(config.ChatConfig{}, nil)
	require.ErrorContains(t, err, "no chat providers configured")
}

func TestLoadNavTree(t *testing.T) {
	tree, err := LoadNavTree("", nil)
	require.NoError(t, err)
	assert.Equal(t, nav.DefaultTree().Routes(), tree.Routes())

	dir := t.TempDir()
	good := filepath.Join(dir, "nav.yaml")
	require.NoError(t, os.WriteFile(good, []byte("routes:\n  - title: Home\n    path: /user\n"), 0o600))
	tree, err = LoadNavTree(good, nil)
	require.NoError(t, err)
	require.Len(t, tree.Routes(), 1)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("routes:\n  - title: Home\n    path: user\n"), 0o600))
	_, err = LoadNavTree(bad, nil)
	require.Error(t, err)

	_, err = LoadNavTree(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
}
