package models

import (
	"time"

	"github.com/google/uuid"
)

// ProviderCredential is a stored API secret for one LLM vendor. Credentials
// are owned by the key-management surface; the analysis pipeline only ever
// reads active ones.
type ProviderCredential struct {
	ID               uuid.UUID `db:"id"                json:"id"`
	TenantID         uuid.UUID `db:"tenant_id"         json:"tenant_id"`
	Provider         string    `db:"provider"          json:"provider"`
	APIKey           string    `db:"api_key"           json:"-"`
	Active           bool      `db:"active"            json:"active"`
	ValidationStatus string    `db:"validation_status" json:"validation_status"`
	CreatedAt        time.Time `db:"created_at"        json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"        json:"updated_at"`
}

// PromptTemplate is an operator-editable template string used to build the
// LLM request for a given task, keyed by a stable identifier.
type PromptTemplate struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Key       string    `db:"key"        json:"key"`
	Content   string    `db:"content"    json:"content"`
	Active    bool      `db:"active"     json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
