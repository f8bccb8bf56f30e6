package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/llm/openai"
	"github.com/rivalscope/rivalscope/pkg/models"
	"github.com/rivalscope/rivalscope/pkg/prompt"
)

// insightFailure is returned whenever insight generation cannot run or the
// model call fails. Insights are best-effort and never fail the job.
var insightFailure = json.RawMessage(`{"error":"Failed to generate insights"}`)

// OpenAIInsights generates the insight block with a direct OpenAI call,
// skipping the failover chain.
type OpenAIInsights struct {
	resolver    *prompt.Resolver
	maxBytes    int
	callTimeout time.Duration

	// newProvider is swappable in tests.
	newProvider func(apiKey string) models.Provider
}

// NewOpenAIInsights creates an OpenAIInsights generator.
func NewOpenAIInsights(resolver *prompt.Resolver, openaiCfg config.OpenAIConfig, analysisCfg config.AnalysisConfig, callTimeout time.Duration) *OpenAIInsights {
	maxBytes := analysisCfg.InsightMaxBytes
	if maxBytes <= 0 {
		maxBytes = 2000
	}
	if callTimeout <= 0 {
		callTimeout = 60 * time.Second
	}
	return &OpenAIInsights{
		resolver:    resolver,
		maxBytes:    maxBytes,
		callTimeout: callTimeout,
		newProvider: func(apiKey string) models.Provider {
			return openai.NewProvider(apiKey, openaiCfg)
		},
	}
}

// Generate asks OpenAI for cross-competitor insights. The consolidated result
// is serialized and truncated to maxBytes before it goes into the prompt so
// huge analyses cannot blow the context window.
func (g *OpenAIInsights) Generate(ctx context.Context, apiKey string, consolidated *models.ConsolidatedResult) json.RawMessage {
	if apiKey == "" {
		slog.Warn("skipping insight generation, no active openai credential")
		return insightFailure
	}

	serialized, err := json.Marshal(consolidated)
	if err != nil {
		slog.Warn("failed to serialize consolidated result for insights", "error", err)
		return insightFailure
	}

	template := g.resolver.Resolve(ctx, prompt.KeyInsights, prompt.DefaultInsightsTemplate)
	promptText := template + "\n\n" + truncate(string(serialized), g.maxBytes)

	callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	resp, err := g.newProvider(apiKey).Complete(callCtx, models.CompletionRequest{
		Prompt: promptText,
	})
	if err != nil {
		slog.Warn("insight generation failed", "error", err)
		return insightFailure
	}

	payload, err := json.Marshal(models.ParsePayload(resp.Content))
	if err != nil {
		return insightFailure
	}
	return payload
}

// truncate cuts s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	b := []byte(s)[:max]
	for len(b) > 0 && b[len(b)-1]&0xC0 == 0x80 {
		b = b[:len(b)-1]
	}
	return string(b)
}
