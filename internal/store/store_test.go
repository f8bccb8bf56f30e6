package store_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rivalscope/rivalscope/internal/store"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool + cleanup.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("rivalscope_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// Run migrations
	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

// defaultTenantID returns the UUID of the seeded default tenant.
func defaultTenantID(t *testing.T, s store.Store) uuid.UUID {
	t.Helper()
	tenant, err := s.GetDefaultTenant(context.Background())
	require.NoError(t, err)
	return tenant.ID
}

func newJob(tenantID uuid.UUID) *models.AnalysisJob {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.AnalysisJob{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Competitors:  []string{"Acme Corp", "Globex"},
		AnalysisType: "competitive",
		Options:      models.AnalysisOptions{DeepDive: true},
		Status:       models.JobStatusRunning,
		CurrentStep:  "Starting analysis",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Tenant Tests ---

func TestGetDefaultTenant(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	tenant, err := s.GetDefaultTenant(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "default", tenant.Name)
	assert.Equal(t, "free", tenant.Plan)
	assert.NotEqual(t, uuid.Nil, tenant.ID)
}

// --- API Key Tests ---

func TestAPIKey_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	now := time.Now().UTC().Truncate(time.Microsecond)
	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "test-key",
		KeyHash:   "bcrypt-hash-here",
		KeyPrefix: "rs_abcd1",
		Scopes:    []string{"analyze", "admin"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.CreateAPIKey(ctx, key)
	require.NoError(t, err)

	keys, err := s.GetAPIKeyByPrefix(ctx, "rs_abcd1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, key.ID, keys[0].ID)
	assert.Equal(t, "test-key", keys[0].Name)
	assert.Equal(t, []string{"analyze", "admin"}, keys[0].Scopes)
}

func TestAPIKey_Revoke(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "revoke-me",
		KeyHash:   "hash",
		KeyPrefix: "rs_revk1",
		Scopes:    []string{"analyze"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	err := s.RevokeAPIKey(ctx, key.ID, tenantID)
	require.NoError(t, err)

	// Should not appear in list or prefix lookup
	keys, err := s.ListAPIKeys(ctx, tenantID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = s.GetAPIKeyByPrefix(ctx, "rs_revk1")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestAPIKey_RevokeNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.RevokeAPIKey(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAPIKey_UpdateLastUsed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      "usage-key",
		KeyHash:   "hash",
		KeyPrefix: "rs_used1",
		Scopes:    []string{"analyze"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	err := s.UpdateAPIKeyLastUsed(ctx, key.ID)
	require.NoError(t, err)

	keys, err := s.GetAPIKeyByPrefix(ctx, "rs_used1")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.NotNil(t, keys[0].LastUsedAt)
}

// --- Analysis Job Tests ---

func TestAnalysisJob_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	job := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, job))

	got, err := s.GetAnalysisJob(ctx, job.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, []string{"Acme Corp", "Globex"}, got.Competitors)
	assert.Equal(t, "competitive", got.AnalysisType)
	assert.True(t, got.Options.DeepDive)
	assert.Equal(t, models.JobStatusRunning, got.Status)
	assert.Equal(t, 0, got.ProgressPercentage)
}

func TestAnalysisJob_TenantScoped(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	job := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, job))

	_, err := s.GetAnalysisJob(ctx, job.ID, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalysisJob_ProgressMonotonic(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	job := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, job))

	require.NoError(t, s.UpdateJobProgress(ctx, job.ID, 50, "Analyzing Globex"))
	// A lagging writer with a lower value must not roll progress back
	require.NoError(t, s.UpdateJobProgress(ctx, job.ID, 20, "Analyzing Acme Corp"))

	got, err := s.GetAnalysisJob(ctx, job.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.ProgressPercentage)
	assert.Equal(t, "Analyzing Acme Corp", got.CurrentStep)
}

func TestAnalysisJob_CompleteWithResult(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	job := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, job))

	result := json.RawMessage(`{"summary":{"analyzed":2,"total_cost":0.05}}`)
	err := s.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted,
		store.WithResult(result),
		store.WithProgress(100),
		store.WithCurrentStep("Analysis complete"))
	require.NoError(t, err)

	got, err := s.GetAnalysisJob(ctx, job.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, 100, got.ProgressPercentage)
	assert.Equal(t, "Analysis complete", got.CurrentStep)
	assert.JSONEq(t, string(result), string(got.Result))
	assert.NotNil(t, got.CompletedAt)
}

func TestAnalysisJob_FailWithMessage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	job := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, job))

	err := s.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed,
		store.WithErrorMessage("all providers failed"))
	require.NoError(t, err)

	got, err := s.GetAnalysisJob(ctx, job.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "all providers failed", *got.ErrorMessage)
}

func TestAnalysisJob_TerminalStatusIsFinal(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	job := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, job))
	require.NoError(t, s.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted))

	err := s.UpdateJobStatus(ctx, job.ID, models.JobStatusFailed)
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	// Progress writes are also frozen once the job leaves running
	err = s.UpdateJobProgress(ctx, job.ID, 99, "late write")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalysisJob_WatchdogFailureBeatsCompletion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	job := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, job))

	// Watchdog fails the job first, as it would when the stale cutoff fires
	// mid-run.
	count, err := s.FailStaleJobs(ctx, time.Now().UTC().Add(time.Hour), "analysis timed out")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	// The orchestrator's late completion write must lose, not flip the row
	// back from its terminal state.
	err = s.UpdateJobStatus(ctx, job.ID, models.JobStatusCompleted,
		store.WithResult(json.RawMessage(`{"summary":{"analyzed":2}}`)),
		store.WithProgress(100))
	assert.ErrorIs(t, err, store.ErrInvalidTransition)

	got, err := s.GetAnalysisJob(ctx, job.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "analysis timed out", *got.ErrorMessage)
	assert.Nil(t, got.Result)
}

func TestAnalysisJob_UpdateStatusNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)

	err := s.UpdateJobStatus(context.Background(), uuid.New(), models.JobStatusCompleted)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFailStaleJobs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)

	stale := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, stale))
	// Push updated_at into the past so the sweep sees it as abandoned
	_, err := pool.Exec(ctx,
		`UPDATE analysis_jobs SET updated_at = NOW() - INTERVAL '2 hours' WHERE id = $1`, stale.ID)
	require.NoError(t, err)

	fresh := newJob(tenantID)
	require.NoError(t, s.CreateAnalysisJob(ctx, fresh))
	require.NoError(t, s.UpdateJobProgress(ctx, fresh.ID, 10, "Initializing AI providers"))

	count, err := s.FailStaleJobs(ctx, time.Now().UTC().Add(-time.Hour), "analysis timed out")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := s.GetAnalysisJob(ctx, stale.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "analysis timed out", *got.ErrorMessage)

	got, err = s.GetAnalysisJob(ctx, fresh.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, got.Status)
}

// --- Provider Credential Tests ---

func TestProviderCredential_CreateAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	for _, provider := range []string{"openai", "anthropic"} {
		err := s.CreateProviderCredential(ctx, &models.ProviderCredential{
			ID:               uuid.New(),
			TenantID:         tenantID,
			Provider:         provider,
			APIKey:           "sk-" + provider,
			Active:           true,
			ValidationStatus: "unvalidated",
			CreatedAt:        now,
			UpdatedAt:        now,
		})
		require.NoError(t, err)
	}

	creds, err := s.ListProviderCredentials(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, creds, 2)
	// Ordered by provider
	assert.Equal(t, "anthropic", creds[0].Provider)
	assert.Equal(t, "openai", creds[1].Provider)
}

func TestProviderCredential_DuplicateActiveProvider(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	cred := &models.ProviderCredential{
		ID: uuid.New(), TenantID: tenantID, Provider: "gemini", APIKey: "k1",
		Active: true, ValidationStatus: "unvalidated", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateProviderCredential(ctx, cred))

	dup := &models.ProviderCredential{
		ID: uuid.New(), TenantID: tenantID, Provider: "gemini", APIKey: "k2",
		Active: true, ValidationStatus: "unvalidated", CreatedAt: now, UpdatedAt: now,
	}
	err := s.CreateProviderCredential(ctx, dup)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)
}

func TestProviderCredential_ListActiveOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	active := &models.ProviderCredential{
		ID: uuid.New(), TenantID: tenantID, Provider: "openai", APIKey: "k1",
		Active: true, ValidationStatus: "valid", CreatedAt: now, UpdatedAt: now,
	}
	inactive := &models.ProviderCredential{
		ID: uuid.New(), TenantID: tenantID, Provider: "perplexity", APIKey: "k2",
		Active: false, ValidationStatus: "invalid", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateProviderCredential(ctx, active))
	require.NoError(t, s.CreateProviderCredential(ctx, inactive))

	creds, err := s.ListActiveCredentials(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "openai", creds[0].Provider)
}

func TestProviderCredential_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	tenantID := defaultTenantID(t, s)
	now := time.Now().UTC().Truncate(time.Microsecond)

	cred := &models.ProviderCredential{
		ID: uuid.New(), TenantID: tenantID, Provider: "anthropic", APIKey: "k",
		Active: true, ValidationStatus: "unvalidated", CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateProviderCredential(ctx, cred))

	require.NoError(t, s.DeleteProviderCredential(ctx, cred.ID, tenantID))
	err := s.DeleteProviderCredential(ctx, cred.ID, tenantID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// --- Prompt Template Tests ---

func TestPromptTemplate_UpsertAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tmpl := &models.PromptTemplate{
		ID:        uuid.New(),
		Key:       "competitor_analysis",
		Content:   "Analyze {competitor}.",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.UpsertPromptTemplate(ctx, tmpl))

	got, err := s.GetActivePromptTemplate(ctx, "competitor_analysis")
	require.NoError(t, err)
	assert.Equal(t, "Analyze {competitor}.", got.Content)

	// Upsert replaces content under the same key
	tmpl2 := &models.PromptTemplate{
		ID:        uuid.New(),
		Key:       "competitor_analysis",
		Content:   "Analyze {competitor} in depth.",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.UpsertPromptTemplate(ctx, tmpl2))

	got, err = s.GetActivePromptTemplate(ctx, "competitor_analysis")
	require.NoError(t, err)
	assert.Equal(t, "Analyze {competitor} in depth.", got.Content)
	assert.Equal(t, tmpl.ID, got.ID) // original row kept
}

func TestPromptTemplate_InactiveNotReturned(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	tmpl := &models.PromptTemplate{
		ID:        uuid.New(),
		Key:       "analysis_insights",
		Content:   "disabled",
		Active:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.UpsertPromptTemplate(ctx, tmpl))

	_, err := s.GetActivePromptTemplate(ctx, "analysis_insights")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
