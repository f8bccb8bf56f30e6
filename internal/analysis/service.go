// Package analysis orchestrates competitor-analysis jobs: fan the competitor
// list across the provider gateway, track progress on the job row, and
// consolidate the results.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rivalscope/rivalscope/internal/cache"
	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/store"
	"github.com/rivalscope/rivalscope/pkg/models"
	"github.com/rivalscope/rivalscope/pkg/prompt"
)

// ErrNoCompetitors rejects an analyze request with an empty competitor list.
var ErrNoCompetitors = errors.New("at least one competitor is required")

// noCredentialsMessage is persisted on the job row when the tenant has no
// usable provider credential. Clients surface it verbatim.
const noCredentialsMessage = "No active API keys found. Configure at least one provider credential before running an analysis."

// Gateway is the provider-selection dependency of the orchestrator.
type Gateway interface {
	AnalyzeCompetitor(ctx context.Context, competitor, promptText string, creds []*models.ProviderCredential) (*models.ProviderAttempt, error)
}

// InsightGenerator produces the insight block from a consolidated result.
// Implementations must never fail the job: errors come back as an error
// payload, not an error value.
type InsightGenerator interface {
	Generate(ctx context.Context, apiKey string, consolidated *models.ConsolidatedResult) json.RawMessage
}

// Service orchestrates analysis jobs.
type Service struct {
	store       store.Store
	cache       cache.Cache
	gateway     Gateway
	resolver    *prompt.Resolver
	insights    InsightGenerator
	maxParallel int
	progressTTL time.Duration
}

// NewService creates a new Service.
func NewService(st store.Store, ca cache.Cache, gw Gateway, resolver *prompt.Resolver, insights InsightGenerator, cfg config.AnalysisConfig) *Service {
	maxParallel := cfg.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	progressTTL := cfg.ProgressTTL
	if progressTTL <= 0 {
		progressTTL = 30 * time.Minute
	}
	return &Service{
		store:       st,
		cache:       ca,
		gateway:     gw,
		resolver:    resolver,
		insights:    insights,
		maxParallel: maxParallel,
		progressTTL: progressTTL,
	}
}

// StartParams holds validated parameters for one analysis run.
type StartParams struct {
	TenantID     uuid.UUID
	Competitors  []string
	AnalysisType string
	Options      models.AnalysisOptions
}

// Start creates a running job and dispatches the analysis in a background
// goroutine. Returns the job immediately without waiting for completion.
func (s *Service) Start(ctx context.Context, p StartParams) (*models.AnalysisJob, error) {
	if len(p.Competitors) == 0 {
		return nil, ErrNoCompetitors
	}

	analysisType := p.AnalysisType
	if analysisType == "" {
		analysisType = "competitive"
	}

	now := time.Now().UTC()
	job := &models.AnalysisJob{
		ID:                 uuid.New(),
		TenantID:           p.TenantID,
		Competitors:        p.Competitors,
		AnalysisType:       analysisType,
		Options:            p.Options,
		Status:             models.JobStatusRunning,
		ProgressPercentage: 0,
		CurrentStep:        "Starting analysis",
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.CreateAnalysisJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	_ = s.cache.SetJobProgress(ctx, job.TenantID, models.JobProgress{
		ID:                 job.ID,
		Status:             models.JobStatusRunning,
		ProgressPercentage: 0,
		CurrentStep:        job.CurrentStep,
	}, s.progressTTL)

	go s.run(job)

	return job, nil
}

// run performs the actual analysis in a goroutine. It recovers from panics
// and always leaves the job completed or failed.
func (s *Service) run(job *models.AnalysisJob) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in analysis run", "error", r, "job_id", job.ID)
			s.failJob(ctx, job, fmt.Sprintf("panic: %v", r))
		}
	}()

	s.setProgress(ctx, job, 10, "Initializing AI providers")

	creds, err := s.store.ListActiveCredentials(ctx, job.TenantID)
	if err != nil {
		s.failJob(ctx, job, fmt.Sprintf("loading provider credentials: %v", err))
		return
	}
	if len(creds) == 0 {
		s.failJob(ctx, job, noCredentialsMessage)
		return
	}

	template := s.resolver.Resolve(ctx, prompt.KeyCompetitorAnalysis, prompt.DefaultCompetitorTemplate)

	attempts, err := s.analyzeAll(ctx, job, template, creds)
	if err != nil {
		s.failJob(ctx, job, err.Error())
		return
	}

	s.setProgress(ctx, job, 90, "Consolidating results")
	consolidated := Consolidate(job.Competitors, attempts)

	s.setProgress(ctx, job, 95, "Generating insights")
	consolidated.Insights = s.insights.Generate(ctx, openAIKey(creds), consolidated)

	payload, err := json.Marshal(consolidated)
	if err != nil {
		s.failJob(ctx, job, fmt.Sprintf("encoding result: %v", err))
		return
	}

	err = s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted,
		store.WithResult(payload),
		store.WithProgress(100),
		store.WithCurrentStep("Analysis complete"))
	if err != nil {
		slog.Error("failed to mark job completed", "job_id", job.ID, "error", err)
		return
	}

	_ = s.cache.SetJobProgress(ctx, job.TenantID, models.JobProgress{
		ID:                 job.ID,
		Status:             models.JobStatusCompleted,
		ProgressPercentage: 100,
		CurrentStep:        "Analysis complete",
	}, s.progressTTL)
}

// analyzeAll runs the gateway for every competitor. The default is strictly
// sequential so the reported percentage walks the list deterministically;
// with maxParallel > 1 a bounded group runs and progress derives from the
// completed count instead of list position, which keeps it monotonic.
func (s *Service) analyzeAll(ctx context.Context, job *models.AnalysisJob, template string, creds []*models.ProviderCredential) ([]*models.ProviderAttempt, error) {
	total := len(job.Competitors)
	attempts := make([]*models.ProviderAttempt, total)

	if s.maxParallel <= 1 {
		for i, name := range job.Competitors {
			s.setProgress(ctx, job, 20+(i*60)/total, "Analyzing "+name)

			attempt, err := s.gateway.AnalyzeCompetitor(ctx, name, s.buildPrompt(template, name, job.Options), creds)
			if err != nil {
				return nil, err
			}
			attempts[i] = attempt
		}
		return attempts, nil
	}

	var completed atomic.Int64
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, name := range job.Competitors {
		g.Go(func() error {
			attempt, err := s.gateway.AnalyzeCompetitor(gctx, name, s.buildPrompt(template, name, job.Options), creds)
			if err != nil {
				return err
			}
			attempts[i] = attempt

			done := int(completed.Add(1))
			mu.Lock()
			s.setProgress(ctx, job, 20+(done*60)/total, fmt.Sprintf("Analyzed %d of %d competitors", done, total))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s *Service) buildPrompt(template, competitor string, opts models.AnalysisOptions) string {
	return prompt.Build(template, prompt.Vars{
		Competitor:        competitor,
		IncludeFinancials: opts.IncludeFinancials,
		IncludeSentiment:  opts.IncludeSentiment,
		DeepDive:          opts.DeepDive,
	})
}

func (s *Service) setProgress(ctx context.Context, job *models.AnalysisJob, pct int, step string) {
	if err := s.store.UpdateJobProgress(ctx, job.ID, pct, step); err != nil {
		slog.Warn("failed to update job progress", "job_id", job.ID, "error", err)
	}
	_ = s.cache.SetJobProgress(ctx, job.TenantID, models.JobProgress{
		ID:                 job.ID,
		Status:             models.JobStatusRunning,
		ProgressPercentage: pct,
		CurrentStep:        step,
	}, s.progressTTL)
}

func (s *Service) failJob(ctx context.Context, job *models.AnalysisJob, msg string) {
	err := s.store.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed,
		store.WithErrorMessage(msg),
		store.WithCurrentStep("Analysis failed"))
	if err != nil {
		slog.Error("failed to mark job failed", "job_id", job.ID, "error", err)
	}
	_ = s.cache.SetJobProgress(ctx, job.TenantID, models.JobProgress{
		ID:           job.ID,
		Status:       models.JobStatusFailed,
		CurrentStep:  "Analysis failed",
		ErrorMessage: &msg,
	}, s.progressTTL)
}

// openAIKey returns the tenant's active OpenAI key, or "" when none exists.
// Insight generation goes straight to OpenAI rather than through the
// fallback chain.
func openAIKey(creds []*models.ProviderCredential) string {
	for _, c := range creds {
		if c.Provider == "openai" && c.Active {
			return c.APIKey
		}
	}
	return ""
}
