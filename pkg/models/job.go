package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// AnalysisOptions is the options bag accepted by the analyze action.
type AnalysisOptions struct {
	IncludeFinancials bool `json:"includeFinancials"`
	IncludeSentiment  bool `json:"includeSentiment"`
	DeepDive          bool `json:"deepDive"`
}

// AnalysisJob tracks one competitor-analysis run. The API returns the job id
// immediately on action=analyze; the client polls action=progress until the
// status is completed or failed. Progress is monotonically non-decreasing and
// status only ever moves running -> completed or running -> failed.
type AnalysisJob struct {
	ID                 uuid.UUID       `db:"id"                  json:"id"`
	TenantID           uuid.UUID       `db:"tenant_id"           json:"tenant_id"`
	Competitors        []string        `db:"competitors"         json:"competitors"`
	AnalysisType       string          `db:"analysis_type"       json:"analysis_type"`
	Options            AnalysisOptions `db:"options"             json:"options"`
	Status             string          `db:"status"              json:"status"`
	ProgressPercentage int             `db:"progress_percentage" json:"progress_percentage"`
	CurrentStep        string          `db:"current_step"        json:"current_step"`
	Result             json.RawMessage `db:"result"              json:"result,omitempty"`
	ErrorMessage       *string         `db:"error_message"       json:"error_message,omitempty"`
	CompletedAt        *time.Time      `db:"completed_at"        json:"completed_at,omitempty"`
	CreatedAt          time.Time       `db:"created_at"          json:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"          json:"updated_at"`
}

// JobProgress is the polling snapshot returned by action=progress and cached
// in Redis between database writes.
type JobProgress struct {
	ID                 uuid.UUID `json:"id"`
	Status             string    `json:"status"`
	ProgressPercentage int       `json:"progress_percentage"`
	CurrentStep        string    `json:"current_step"`
	ErrorMessage       *string   `json:"error_message,omitempty"`
}
