// Package handler implements the competitor-analysis HTTP surface: one
// multiplexed endpoint dispatching on the action query parameter, plus the
// admin endpoints for keys, credentials, and prompt templates.
package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/analysis"
	"github.com/rivalscope/rivalscope/internal/api/response"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// Starter launches analysis jobs.
type Starter interface {
	Start(ctx context.Context, p analysis.StartParams) (*models.AnalysisJob, error)
}

// JobReader loads jobs scoped to a tenant.
type JobReader interface {
	GetAnalysisJob(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.AnalysisJob, error)
}

// ProgressReader reads cached progress snapshots scoped to a tenant.
type ProgressReader interface {
	GetJobProgress(ctx context.Context, tenantID, jobID uuid.UUID) (*models.JobProgress, bool, error)
}

// CompetitorAnalysis serves the multiplexed /api/v1/competitor-analysis
// endpoint.
type CompetitorAnalysis struct {
	starter  Starter
	jobs     JobReader
	progress ProgressReader
}

// NewCompetitorAnalysis creates the multiplexed handler.
func NewCompetitorAnalysis(starter Starter, jobs JobReader, progress ProgressReader) *CompetitorAnalysis {
	return &CompetitorAnalysis{starter: starter, jobs: jobs, progress: progress}
}

// Handle dispatches on the action query parameter. Every action already sits
// behind the auth middleware, so 401 is handled before we get here.
func (h *CompetitorAnalysis) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "analyze":
			if !requireMethod(w, r, http.MethodPost) {
				return
			}
			h.analyze(w, r)
		case "export":
			if !requireMethod(w, r, http.MethodPost) {
				return
			}
			h.export(w, r)
		case "progress":
			if !requireMethod(w, r, http.MethodGet) {
				return
			}
			h.progressSnapshot(w, r)
		case "permissions":
			if !requireMethod(w, r, http.MethodGet) {
				return
			}
			h.permissions(w, r)
		case "debug":
			if !requireMethod(w, r, http.MethodPost) {
				return
			}
			h.debug(w, r)
		default:
			response.Error(w, http.StatusBadRequest,
				"INVALID_ACTION", "Unknown or missing action parameter", nil)
		}
	}
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		response.Error(w, http.StatusMethodNotAllowed,
			"METHOD_NOT_ALLOWED", method+" required for this action", nil)
		return false
	}
	return true
}
