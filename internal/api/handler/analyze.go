package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/analysis"
	mw "github.com/rivalscope/rivalscope/internal/api/middleware"
	"github.com/rivalscope/rivalscope/internal/api/response"
	"github.com/rivalscope/rivalscope/pkg/models"
)

type analyzeRequest struct {
	Competitors  []string               `json:"competitors"`
	AnalysisType string                 `json:"analysisType"`
	SessionID    string                 `json:"sessionId"`
	Options      models.AnalysisOptions `json:"options"`
}

type analyzeResponse struct {
	Success    bool      `json:"success"`
	AnalysisID uuid.UUID `json:"analysisId"`
	SessionID  string    `json:"sessionId"`
	Status     string    `json:"status"`
}

// analyze creates a job and returns immediately; the analysis itself runs in
// a detached goroutine and is observed via action=progress.
func (h *CompetitorAnalysis) analyze(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := mw.GetTenantID(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return
	}

	competitors := make([]string, 0, len(req.Competitors))
	for _, name := range req.Competitors {
		if name = strings.TrimSpace(name); name != "" {
			competitors = append(competitors, name)
		}
	}
	if len(competitors) == 0 {
		response.Error(w, http.StatusBadRequest,
			"INVALID_REQUEST", "competitors must be a non-empty list", nil)
		return
	}

	job, err := h.starter.Start(r.Context(), analysis.StartParams{
		TenantID:     tenantID,
		Competitors:  competitors,
		AnalysisType: req.AnalysisType,
		Options:      req.Options,
	})
	if err != nil {
		if errors.Is(err, analysis.ErrNoCompetitors) {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "competitors must be a non-empty list", nil)
			return
		}
		response.Error(w, http.StatusInternalServerError,
			"INTERNAL_ERROR", "Failed to start analysis", nil)
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	response.JSON(w, analyzeResponse{
		Success:    true,
		AnalysisID: job.ID,
		SessionID:  sessionID,
		Status:     "started",
	})
}
