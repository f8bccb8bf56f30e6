package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	mw "github.com/rivalscope/rivalscope/internal/api/middleware"
	"github.com/rivalscope/rivalscope/internal/api/response"
	"github.com/rivalscope/rivalscope/internal/store"
)

type exportRequest struct {
	AnalysisID string `json:"analysisId"`
	Format     string `json:"format"`
}

// export returns the stored job row as JSON, or a minimal CSV projection with
// one row per competitor. Lookup is tenant scoped so jobs owned by other
// tenants come back 404, not 403.
func (h *CompetitorAnalysis) export(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := mw.GetTenantID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}
	if req.AnalysisID == "" {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "analysisId is required", nil)
		return
	}
	jobID, err := uuid.Parse(req.AnalysisID)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "analysisId must be a valid UUID", nil)
		return
	}

	format := req.Format
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "csv" {
		response.Error(w, http.StatusBadRequest, "UNSUPPORTED_FORMAT", "format must be json or csv", nil)
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

	if format == "json" {
		response.JSON(w, job)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="analysis-`+job.ID.String()+`.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"competitor", "status", "created_at"})
	createdAt := job.CreatedAt.UTC().Format(time.RFC3339)
	for _, name := range job.Competitors {
		_ = cw.Write([]string{name, job.Status, createdAt})
	}
	cw.Flush()
}
