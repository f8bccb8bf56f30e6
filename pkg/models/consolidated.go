package models

import "encoding/json"

// CompetitorAnalysis is the per-competitor record inside a consolidated
// result: which provider answered, what it nominally cost, and its output.
type CompetitorAnalysis struct {
	Competitor string          `json:"competitor"`
	Provider   string          `json:"provider"`
	Cost       float64         `json:"cost"`
	Data       AnalysisPayload `json:"data"`
}

// ConsolidatedSummary aggregates counts and cost bookkeeping across one run.
type ConsolidatedSummary struct {
	TotalCompetitors int      `json:"total_competitors"`
	Analyzed         int      `json:"analyzed"`
	TotalCost        float64  `json:"total_cost"`
	ProvidersUsed    []string `json:"providers_used"`
}

// ConsolidatedResult is the final payload written to the job row: the
// competitor list, per-competitor analyses, summary bookkeeping, and the
// insight block produced by the one follow-up AI call.
type ConsolidatedResult struct {
	Competitors []string             `json:"competitors"`
	Analyses    []CompetitorAnalysis `json:"analyses"`
	Summary     ConsolidatedSummary  `json:"summary"`
	Insights    json.RawMessage      `json:"insights,omitempty"`
}
