package llm

import (
	"fmt"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/llm/anthropic"
	"github.com/rivalscope/rivalscope/internal/llm/gemini"
	"github.com/rivalscope/rivalscope/internal/llm/openai"
	"github.com/rivalscope/rivalscope/internal/llm/perplexity"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// Factory builds a vendor adapter bound to one API key. Credentials are
// per-tenant rows, so adapters are constructed per call rather than once at
// startup.
type Factory func(provider, apiKey string) (models.Provider, error)

// NewFactory returns a Factory over the supported vendors.
func NewFactory(cfg config.ProvidersConfig) Factory {
	return func(provider, apiKey string) (models.Provider, error) {
		switch provider {
		case ProviderOpenAI:
			return openai.NewProvider(apiKey, cfg.OpenAI), nil
		case ProviderAnthropic:
			return anthropic.NewProvider(apiKey, cfg.Anthropic), nil
		case ProviderGemini:
			return gemini.NewProvider(apiKey, cfg.Gemini), nil
		case ProviderPerplexity:
			return perplexity.NewProvider(apiKey, cfg.Perplexity), nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
		}
	}
}
