package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rivalscope/rivalscope/internal/api/response"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// PromptStore is the subset of the store the prompt admin handler uses.
type PromptStore interface {
	UpsertPromptTemplate(ctx context.Context, tmpl *models.PromptTemplate) error
}

// NewUpsertPromptHandler creates or replaces the active template for a key.
func NewUpsertPromptHandler(st PromptStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Key     string `json:"key"`
			Content string `json:"content"`
			Active  *bool  `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Key == "" || req.Content == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "key and content are required", nil)
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		now := time.Now().UTC()
		tmpl := &models.PromptTemplate{
			ID:        uuid.New(),
			Key:       req.Key,
			Content:   req.Content,
			Active:    active,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := st.UpsertPromptTemplate(r.Context(), tmpl); err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store template", nil)
			return
		}
		response.JSON(w, tmpl)
	}
}
