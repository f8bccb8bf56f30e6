package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/rivalscope/rivalscope/internal/api/middleware"
	"github.com/rivalscope/rivalscope/internal/api/response"
	"github.com/rivalscope/rivalscope/internal/llm"
	"github.com/rivalscope/rivalscope/internal/store"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// CredentialStore is the subset of the store the credential admin handlers
// use.
type CredentialStore interface {
	CreateProviderCredential(ctx context.Context, cred *models.ProviderCredential) error
	ListProviderCredentials(ctx context.Context, tenantID uuid.UUID) ([]*models.ProviderCredential, error)
	DeleteProviderCredential(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error
}

// NewCreateCredentialHandler stores a provider API secret for the tenant.
func NewCreateCredentialHandler(st CredentialStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		var req struct {
			Provider string `json:"provider"`
			APIKey   string `json:"api_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if !llm.KnownProvider(req.Provider) {
			response.Error(w, http.StatusBadRequest,
				"INVALID_REQUEST", "provider must be one of openai, anthropic, gemini, perplexity", nil)
			return
		}
		if req.APIKey == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "api_key is required", nil)
			return
		}

		now := time.Now().UTC()
		cred := &models.ProviderCredential{
			ID:               uuid.New(),
			TenantID:         tenantID,
			Provider:         req.Provider,
			APIKey:           req.APIKey,
			Active:           true,
			ValidationStatus: "unvalidated",
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := st.CreateProviderCredential(r.Context(), cred); err != nil {
			if errors.Is(err, store.ErrDuplicateKey) {
				response.Error(w, http.StatusConflict,
					"DUPLICATE", "An active credential for this provider already exists", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store credential", nil)
			return
		}
		response.Created(w, cred)
	}
}

// NewListCredentialsHandler lists the tenant's credentials, secrets excluded.
func NewListCredentialsHandler(st CredentialStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		creds, err := st.ListProviderCredentials(r.Context(), tenantID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list credentials", nil)
			return
		}
		response.JSON(w, map[string]any{"credentials": creds})
	}
}

// NewDeleteCredentialHandler removes a stored credential.
func NewDeleteCredentialHandler(st CredentialStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenantID, ok := mw.GetTenantID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing tenant", nil)
			return
		}

		credID, err := uuid.Parse(chi.URLParam(r, "credentialID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "credentialID must be a valid UUID", nil)
			return
		}

		if err := st.DeleteProviderCredential(r.Context(), credID, tenantID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Credential not found", nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete credential", nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
