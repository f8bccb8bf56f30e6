package analysis

import (
	"testing"

	"github.com/rivalscope/rivalscope/pkg/models"
)

func TestConsolidate_BuildsSummary(t *testing.T) {
	competitors := []string{"Acme Corp", "Globex", "Initech"}
	attempts := []*models.ProviderAttempt{
		{Competitor: "Acme Corp", Provider: "openai", Cost: 0.03, Success: true, Result: models.ParsePayload(`{"a":1}`)},
		{Competitor: "Globex", Provider: "anthropic", Cost: 0.025, Success: true, Result: models.ParsePayload("not json")},
		{Competitor: "Initech", Provider: "openai", Cost: 0.03, Success: true, Result: models.ParsePayload(`{"b":2}`)},
	}

	result := Consolidate(competitors, attempts)

	if result.Summary.TotalCompetitors != 3 {
		t.Errorf("expected 3 total, got %d", result.Summary.TotalCompetitors)
	}
	if result.Summary.Analyzed != 3 {
		t.Errorf("expected 3 analyzed, got %d", result.Summary.Analyzed)
	}
	if result.Summary.TotalCost != 0.085 {
		t.Errorf("expected total cost 0.085, got %f", result.Summary.TotalCost)
	}
	if len(result.Summary.ProvidersUsed) != 2 {
		t.Errorf("expected 2 distinct providers, got %v", result.Summary.ProvidersUsed)
	}
	if len(result.Analyses) != 3 {
		t.Fatalf("expected 3 analyses, got %d", len(result.Analyses))
	}
	if result.Analyses[1].Data.Raw != "not json" {
		t.Errorf("expected raw fallback preserved, got %+v", result.Analyses[1].Data)
	}
}

func TestConsolidate_SkipsNilAttempts(t *testing.T) {
	competitors := []string{"Acme Corp", "Globex"}
	attempts := []*models.ProviderAttempt{
		{Competitor: "Acme Corp", Provider: "gemini", Cost: 0.02, Success: true},
		nil,
	}

	result := Consolidate(competitors, attempts)

	if result.Summary.TotalCompetitors != 2 {
		t.Errorf("expected 2 total, got %d", result.Summary.TotalCompetitors)
	}
	if result.Summary.Analyzed != 1 {
		t.Errorf("expected 1 analyzed, got %d", result.Summary.Analyzed)
	}
}

func TestConsolidate_Empty(t *testing.T) {
	result := Consolidate(nil, nil)
	if result.Summary.TotalCompetitors != 0 || result.Summary.Analyzed != 0 || result.Summary.TotalCost != 0 {
		t.Errorf("unexpected summary for empty input: %+v", result.Summary)
	}
}

func TestConsolidate_RoundsCost(t *testing.T) {
	attempts := []*models.ProviderAttempt{
		{Competitor: "A", Provider: "openai", Cost: 0.1},
		{Competitor: "B", Provider: "openai", Cost: 0.2},
		{Competitor: "C", Provider: "openai", Cost: 0.3},
	}
	result := Consolidate([]string{"A", "B", "C"}, attempts)
	// 0.1+0.2+0.3 accumulates float noise without rounding
	if result.Summary.TotalCost != 0.6 {
		t.Errorf("expected 0.6, got %v", result.Summary.TotalCost)
	}
}
