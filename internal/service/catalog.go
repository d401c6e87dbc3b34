package service

import (
	"sort"
	"time"

	"github.com/target/aihub-dashboard/internal/domain/chat"
)

// CatalogService serves the static provider comparison table.
type CatalogService struct {
	entries []chat.ProviderInfo
}

// NewCatalogService builds the catalog; providers listed in enabled are marked available.
func NewCatalogService(enabled []string) *CatalogService {
	on := make(map[string]bool, len(enabled))
	for _, name := range enabled {
		on[name] = true
	}
	entries := defaultCatalog()
	for i := range entries {
		entries[i].Enabled = on[entries[i].Name]
	}
	return &CatalogService{entries: entries}
}

// List returns the catalog ordered by input cost, cheapest first.
func (s *CatalogService) List() []chat.ProviderInfo {
	out := append([]chat.ProviderInfo(nil), s.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].InputCostPerMTok < out[j].InputCostPerMTok
	})
	return out
}

// Lookup returns the catalog entry for provider name.
func (s *CatalogService) Lookup(name string) (chat.ProviderInfo, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e, true
		}
	}
	return chat.ProviderInfo{}, false
}

// EnabledCount returns how many catalog providers are available.
func (s *CatalogService) EnabledCount() int {
	n := 0
	for _, e := range s.entries {
		if e.Enabled {
			n++
		}
	}
	return n
}

func defaultCatalog() []chat.ProviderInfo {
	return []chat.ProviderInfo{
		{
			Name:              ProviderOpenAI,
			Title:             "OpenAI",
			Model:             "gpt-4o-mini",
			Vendor:            "OpenAI",
			ContextTokens:     128_000,
			InputCostPerMTok:  0.15,
			OutputCostPerMTok: 0.60,
			TypicalLatency:    900 * time.Millisecond,
		},
		{
			Name:              ProviderAnthropic,
			Title:             "Anthropic",
			Model:             "claude-3-5-haiku-latest",
			Vendor:            "Anthropic",
			ContextTokens:     200_000,
			InputCostPerMTok:  0.80,
			OutputCostPerMTok: 4.00,
			TypicalLatency:    1100 * time.Millisecond,
		},
		{
			Name:           ProviderEcho,
			Title:          "Echo",
			Model:          "echo",
			Vendor:         "Local",
			ContextTokens:  chat.MaxMessageLength,
			TypicalLatency: time.Millisecond,
		},
	}
}
