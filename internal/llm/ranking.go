package llm

import "sort"

// Provider names accepted by the factory and the credential store.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderPerplexity = "perplexity"
)

// Rank is one entry in the injected provider ordering. Priority decides try
// order (lower first); UnitCost is the nominal per-call cost recorded on the
// attempt and is informational only, never used for selection.
type Rank struct {
	Provider string
	Priority int
	UnitCost float64
}

// DefaultRanking is the standard provider ordering. It is injected into the
// gateway so deployments can reorder providers without a code change.
func DefaultRanking() []Rank {
	return []Rank{
		{Provider: ProviderOpenAI, Priority: 1, UnitCost: 0.03},
		{Provider: ProviderAnthropic, Priority: 2, UnitCost: 0.025},
		{Provider: ProviderGemini, Priority: 3, UnitCost: 0.02},
		{Provider: ProviderPerplexity, Priority: 4, UnitCost: 0.015},
	}
}

// KnownProvider reports whether name is one of the supported vendors.
func KnownProvider(name string) bool {
	switch name {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderPerplexity:
		return true
	}
	return false
}

// sortByPriority returns a copy of ranking ordered by ascending priority.
func sortByPriority(ranking []Rank) []Rank {
	sorted := make([]Rank, len(ranking))
	copy(sorted, ranking)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}
