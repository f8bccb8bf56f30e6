package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	mw "github.com/rivalscope/rivalscope/internal/api/middleware"
	"github.com/rivalscope/rivalscope/internal/api/response"
	"github.com/rivalscope/rivalscope/internal/store"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// progressSnapshot returns the polling fields for a job. Redis is consulted
// first; a miss or cache error falls through to Postgres. Both paths are
// tenant scoped, so a foreign tenant gets 404 whether or not a snapshot is
// cached.
func (h *CompetitorAnalysis) progressSnapshot(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := mw.GetTenantID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
		return
	}

	idStr := r.URL.Query().Get("analysisId")
	if idStr == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "analysisId is required", nil)
		return
	}
	jobID, err := uuid.Parse(idStr)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "analysisId must be a valid UUID", nil)
		return
	}

	snap, found, err := h.progress.GetJobProgress(r.Context(), tenantID, jobID)
	if err != nil {
		slog.Warn("progress cache read failed", "job_id", jobID, "error", err)
	}
	if found {
		response.JSON(w, snap)
		return
	}

	job, err := h.jobs.GetAnalysisJob(r.Context(), jobID, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load analysis", nil)
		return
	}

	response.JSON(w, models.JobProgress{
		ID:                 job.ID,
		Status:             job.Status,
		ProgressPercentage: job.ProgressPercentage,
		CurrentStep:        job.CurrentStep,
		ErrorMessage:       job.ErrorMessage,
	})
}
