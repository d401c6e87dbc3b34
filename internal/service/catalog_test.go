package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogService(t *testing.T) {
	c := NewCatalogService([]string{ProviderOpenAI, "unknown"})

	list := c.List()
	require.Len(t, list, 3)
	assert.Equal(t, ProviderEcho, list[0].Name)
	assert.Equal(t, ProviderOpenAI, list[1].Name)
	assert.Equal(t, ProviderAnthropic, list[2].Name)
	assert.Equal(t, 1, c.EnabledCount())

	info, ok := c.Lookup(ProviderOpenAI)
	require.True(t, ok)
	assert.True(t, info.Enabled)

	info, ok = c.Lookup(ProviderAnthropic)
	require.True(t, ok)
	assert.False(t, info.Enabled)

	_, ok = c.Lookup("unknown")
	assert.False(t, ok)

	list[0].Name = "mutated"
	assert.Equal(t, ProviderEcho, c.List()[0].Name)
}
