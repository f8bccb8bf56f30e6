package prompt

import (
	"context"
	"log/slog"

	"github.com/rivalscope/rivalscope/pkg/models"
)

// TemplateSource looks up an active template by key. The store-backed
// implementation lives in internal/store.
type TemplateSource interface {
	GetActivePromptTemplate(ctx context.Context, key string) (*models.PromptTemplate, error)
}

// Resolver fetches stored templates, falling back to a caller-supplied
// default when no active template exists.
type Resolver struct {
	source TemplateSource
}

// NewResolver creates a Resolver backed by source. A nil source always
// resolves to the fallback.
func NewResolver(source TemplateSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the stored template content for key, or fallback when the
// lookup fails or finds nothing. Lookup failures are logged, not returned:
// analysis should proceed on the built-in prompt rather than abort.
func (r *Resolver) Resolve(ctx context.Context, key, fallback string) string {
	if r.source == nil {
		return fallback
	}
	tmpl, err := r.source.GetActivePromptTemplate(ctx, key)
	if err != nil {
		slog.Warn("prompt template lookup failed, using fallback", "key", key, "error", err)
		return fallback
	}
	return tmpl.Content
}
