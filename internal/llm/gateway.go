package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rivalscope/rivalscope/pkg/models"
)

// Gateway tries ranked providers in priority order for one competitor until
// one succeeds. Cost on the winning attempt comes from the rank entry; it
// never influences which provider is tried first.
type Gateway struct {
	ranking     []Rank
	factory     Factory
	callTimeout time.Duration
}

// NewGateway creates a Gateway. An empty ranking falls back to
// DefaultRanking.
func NewGateway(ranking []Rank, factory Factory, callTimeout time.Duration) *Gateway {
	if len(ranking) == 0 {
		ranking = DefaultRanking()
	}
	return &Gateway{
		ranking:     sortByPriority(ranking),
		factory:     factory,
		callTimeout: callTimeout,
	}
}

// AnalyzeCompetitor sends promptText to the first credentialed provider in
// priority order, falling through to the next on any failure. Providers
// without a credential are skipped, not treated as failures. When every
// credentialed provider fails, the aggregate error wraps
// ErrAllProvidersFailed and aborts the caller's run.
func (g *Gateway) AnalyzeCompetitor(ctx context.Context, competitor, promptText string, creds []*models.ProviderCredential) (*models.ProviderAttempt, error) {
	byProvider := make(map[string]*models.ProviderCredential, len(creds))
	for _, c := range creds {
		if c.Active {
			byProvider[c.Provider] = c
		}
	}

	var errs []error
	for _, rank := range g.ranking {
		cred, ok := byProvider[rank.Provider]
		if !ok {
			continue
		}

		provider, err := g.factory(rank.Provider, cred.APIKey)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
		resp, err := provider.Complete(callCtx, models.CompletionRequest{Prompt: promptText})
		cancel()
		if err != nil {
			slog.Warn("provider call failed, trying next",
				"competitor", competitor,
				"provider", rank.Provider,
				"error", err,
			)
			errs = append(errs, err)
			continue
		}

		return &models.ProviderAttempt{
			Competitor: competitor,
			Provider:   rank.Provider,
			Cost:       rank.UnitCost,
			Success:    true,
			Result:     models.ParsePayload(resp.Content),
		}, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w for %s: no credentialed providers in ranking", ErrAllProvidersFailed, competitor)
	}
	return nil, fmt.Errorf("%w for %s: %w", ErrAllProvidersFailed, competitor, errors.Join(errs...))
}
