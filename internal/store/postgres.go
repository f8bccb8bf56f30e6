package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rivalscope/rivalscope/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Tenants ---

func (s *PostgresStore) GetDefaultTenant(ctx context.Context) (*models.Tenant, error) {
	var t models.Tenant
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, plan, created_at, updated_at FROM tenants WHERE name = 'default' LIMIT 1`,
	).Scan(&t.ID, &t.Name, &t.Plan, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default tenant: %w", err)
	}
	return &t, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, tenant_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.TenantID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, tenantID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`, id, tenantID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Analysis Jobs ---

func (s *PostgresStore) CreateAnalysisJob(ctx context.Context, job *models.AnalysisJob) error {
	options, err := json.Marshal(job.Options)
	if err != nil {
		return fmt.Errorf("marshal job options: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO analysis_jobs (id, tenant_id, competitors, analysis_type, options, status, progress_percentage, current_step, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.TenantID, job.Competitors, job.AnalysisType, options,
		job.Status, job.ProgressPercentage, job.CurrentStep, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create analysis job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAnalysisJob(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) (*models.AnalysisJob, error) {
	var j models.AnalysisJob
	var options []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, tenant_id, competitors, analysis_type, options, status, progress_percentage, current_step, result, error_message, completed_at, created_at, updated_at
		 FROM analysis_jobs WHERE id = $1 AND tenant_id = $2`, id, tenantID,
	).Scan(&j.ID, &j.TenantID, &j.Competitors, &j.AnalysisType, &options, &j.Status,
		&j.ProgressPercentage, &j.CurrentStep, &j.Result, &j.ErrorMessage,
		&j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis job: %w", err)
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &j.Options); err != nil {
			return nil, fmt.Errorf("unmarshal job options: %w", err)
		}
	}
	return &j, nil
}

// UpdateJobProgress bumps the progress and step of a running job. GREATEST
// keeps progress monotonically non-decreasing even if callers race.
func (s *PostgresStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, step string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs
		 SET progress_percentage = GREATEST(progress_percentage, $2), current_step = $3, updated_at = NOW()
		 WHERE id = $1 AND status = 'running'`, id, progress, step)
	if err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var validTransitions = map[string][]string{
	models.JobStatusRunning: {models.JobStatusCompleted, models.JobStatusFailed},
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := NewJobUpdate(opts...)

	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM analysis_jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	valid := false
	for _, a := range validTransitions[currentStatus] {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE analysis_jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}
	argIdx := 4

	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.Result != nil {
		query += fmt.Sprintf(", result = $%d", argIdx)
		args = append(args, params.Result)
		argIdx++
	}
	if params.Progress != nil {
		query += fmt.Sprintf(", progress_percentage = GREATEST(progress_percentage, $%d)", argIdx)
		args = append(args, *params.Progress)
		argIdx++
	}
	if params.CurrentStep != nil {
		query += fmt.Sprintf(", current_step = $%d", argIdx)
		args = append(args, *params.CurrentStep)
		argIdx++
	}

	// Guard on the observed status so a concurrent writer (the watchdog
	// failing a stale job) cannot have its terminal state overwritten between
	// the SELECT above and this UPDATE.
	query += fmt.Sprintf(" WHERE id = $1 AND status = $%d", argIdx)
	args = append(args, currentStatus)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job left %s concurrently", ErrInvalidTransition, currentStatus)
	}
	return nil
}

// FailStaleJobs marks running jobs untouched since olderThan as failed.
// A crash mid-run leaves a job permanently running otherwise.
func (s *PostgresStore) FailStaleJobs(ctx context.Context, olderThan time.Time, message string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs
		 SET status = 'failed', error_message = $2, completed_at = NOW(), updated_at = NOW()
		 WHERE status = 'running' AND updated_at < $1`, olderThan, message)
	if err != nil {
		return 0, fmt.Errorf("fail stale jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// --- Provider Credentials ---

func (s *PostgresStore) ListActiveCredentials(ctx context.Context, tenantID uuid.UUID) ([]*models.ProviderCredential, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, provider, api_key, active, validation_status, created_at, updated_at
		 FROM provider_credentials WHERE tenant_id = $1 AND active ORDER BY provider`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list active credentials: %w", err)
	}
	defer rows.Close()
	return scanCredentials(rows)
}

func (s *PostgresStore) CreateProviderCredential(ctx context.Context, cred *models.ProviderCredential) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO provider_credentials (id, tenant_id, provider, api_key, active, validation_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cred.ID, cred.TenantID, cred.Provider, cred.APIKey, cred.Active,
		cred.ValidationStatus, cred.CreatedAt, cred.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create provider credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListProviderCredentials(ctx context.Context, tenantID uuid.UUID) ([]*models.ProviderCredential, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, tenant_id, provider, api_key, active, validation_status, created_at, updated_at
		 FROM provider_credentials WHERE tenant_id = $1 ORDER BY provider`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list provider credentials: %w", err)
	}
	defer rows.Close()
	return scanCredentials(rows)
}

func (s *PostgresStore) DeleteProviderCredential(ctx context.Context, id uuid.UUID, tenantID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM provider_credentials WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return fmt.Errorf("delete provider credential: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanCredentials(rows pgx.Rows) ([]*models.ProviderCredential, error) {
	var creds []*models.ProviderCredential
	for rows.Next() {
		var c models.ProviderCredential
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Provider, &c.APIKey, &c.Active,
			&c.ValidationStatus, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan provider credential: %w", err)
		}
		creds = append(creds, &c)
	}
	return creds, rows.Err()
}

// --- Prompt Templates ---

func (s *PostgresStore) GetActivePromptTemplate(ctx context.Context, key string) (*models.PromptTemplate, error) {
	var t models.PromptTemplate
	err := s.pool.QueryRow(ctx,
		`SELECT id, key, content, active, created_at, updated_at
		 FROM prompt_templates WHERE key = $1 AND active LIMIT 1`, key,
	).Scan(&t.ID, &t.Key, &t.Content, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active prompt template: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) UpsertPromptTemplate(ctx context.Context, tmpl *models.PromptTemplate) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO prompt_templates (id, key, content, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (key) DO UPDATE SET
		   content = EXCLUDED.content,
		   active = EXCLUDED.active,
		   updated_at = NOW()`,
		tmpl.ID, tmpl.Key, tmpl.Content, tmpl.Active, tmpl.CreatedAt, tmpl.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert prompt template: %w", err)
	}
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
