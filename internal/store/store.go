package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rivalscope/rivalscope/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid job status transition")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultTenant(ctx context.Context) (*models.Tenant, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	CreateAnalysisJob(ctx context.Context, job *models.AnalysisJob) error
	GetAnalysisJob(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.AnalysisJob, error)
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, step string) error
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	FailStaleJobs(ctx context.Context, olderThan time.Time, message string) (int, error)

	ListActiveCredentials(ctx context.Context, tenantID uuid.UUID) ([]*models.ProviderCredential, error)
	CreateProviderCredential(ctx context.Context, cred *models.ProviderCredential) error
	ListProviderCredentials(ctx context.Context, tenantID uuid.UUID) ([]*models.ProviderCredential, error)
	DeleteProviderCredential(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error

	GetActivePromptTemplate(ctx context.Context, key string) (*models.PromptTemplate, error)
	UpsertPromptTemplate(ctx context.Context, tmpl *models.PromptTemplate) error
}

// JobUpdate collects the optional fields of a status transition.
type JobUpdate struct {
	ErrorMessage *string
	Result       json.RawMessage
	Progress     *int
	CurrentStep  *string
}

type JobUpdateOption func(*JobUpdate)

// NewJobUpdate applies opts and returns the resulting update.
func NewJobUpdate(opts ...JobUpdateOption) *JobUpdate {
	u := &JobUpdate{}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func WithErrorMessage(msg string) JobUpdateOption {
	return func(u *JobUpdate) {
		u.ErrorMessage = &msg
	}
}

func WithResult(result json.RawMessage) JobUpdateOption {
	return func(u *JobUpdate) {
		u.Result = result
	}
}

func WithProgress(progress int) JobUpdateOption {
	return func(u *JobUpdate) {
		u.Progress = &progress
	}
}

func WithCurrentStep(step string) JobUpdateOption {
	return func(u *JobUpdate) {
		u.CurrentStep = &step
	}
}
