package analysis

import (
	"math"

	"github.com/rivalscope/rivalscope/pkg/models"
)

// Consolidate folds per-competitor attempts into the final result document.
// Nil attempts are skipped, so the summary's Analyzed count can be lower
// than TotalCompetitors.
func Consolidate(competitors []string, attempts []*models.ProviderAttempt) *models.ConsolidatedResult {
	analyses := make([]models.CompetitorAnalysis, 0, len(attempts))
	var totalCost float64
	seen := make(map[string]bool)
	var providers []string

	for _, a := range attempts {
		if a == nil {
			continue
		}
		analyses = append(analyses, models.CompetitorAnalysis{
			Competitor: a.Competitor,
			Provider:   a.Provider,
			Cost:       a.Cost,
			Data:       a.Result,
		})
		totalCost += a.Cost
		if !seen[a.Provider] {
			seen[a.Provider] = true
			providers = append(providers, a.Provider)
		}
	}

	return &models.ConsolidatedResult{
		Competitors: competitors,
		Analyses:    analyses,
		Summary: models.ConsolidatedSummary{
			TotalCompetitors: len(competitors),
			Analyzed:         len(analyses),
			TotalCost:        math.Round(totalCost*10000) / 10000,
			ProvidersUsed:    providers,
		},
	}
}
