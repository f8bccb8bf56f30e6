// Package prompt resolves operator-editable prompt templates and expands
// their placeholders into a final LLM prompt.
package prompt

import "strings"

// Placeholders recognized in templates.
const (
	PlaceholderCompetitor = "{competitor}"
	PlaceholderFinancial  = "{financial_analysis}"
	PlaceholderSentiment  = "{sentiment_analysis}"
)

// KeyCompetitorAnalysis is the template key for the per-competitor prompt.
const KeyCompetitorAnalysis = "competitor_analysis"

// KeyInsights is the template key for the consolidation insight prompt.
const KeyInsights = "analysis_insights"

// DefaultCompetitorTemplate is used when no active template is stored under
// KeyCompetitorAnalysis.
const DefaultCompetitorTemplate = `Analyze the competitor {competitor}. ` +
	`Provide a JSON object with fields: overview, strengths, weaknesses, market_position, recent_moves.` +
	`{financial_analysis}{sentiment_analysis} Respond with JSON only.`

// DefaultInsightsTemplate is used when no active template is stored under
// KeyInsights.
const DefaultInsightsTemplate = `Given this consolidated competitor analysis, ` +
	`produce a JSON object with fields: key_findings (array), opportunities (array), threats (array), recommended_actions (array). ` +
	`Respond with JSON only. Analysis: `

// Vars are the inputs to template expansion for one competitor.
type Vars struct {
	Competitor        string
	IncludeFinancials bool
	IncludeSentiment  bool
	DeepDive          bool
}

// Build expands template placeholders. Feature placeholders are replaced
// before the competitor name so a competitor whose name happens to contain a
// placeholder token cannot be re-expanded.
func Build(template string, vars Vars) string {
	financial := ""
	if vars.IncludeFinancials {
		financial = " Include a financial_analysis field covering revenue, funding, and profitability signals."
	}
	sentiment := ""
	if vars.IncludeSentiment {
		sentiment = " Include a sentiment_analysis field covering public and customer sentiment."
	}

	out := strings.ReplaceAll(template, PlaceholderFinancial, financial)
	out = strings.ReplaceAll(out, PlaceholderSentiment, sentiment)
	out = strings.ReplaceAll(out, PlaceholderCompetitor, vars.Competitor)

	if vars.DeepDive {
		out += " Go deep: cover product lines, pricing, go-to-market strategy, and leadership."
	}
	return out
}
