// Package mock provides a models.Provider stand-in for tests.
package mock

import (
	"context"

	"github.com/rivalscope/rivalscope/pkg/models"
)

// Provider satisfies models.Provider for testing.
type Provider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error)
}

func (p *Provider) Name() string { return p.Name_ }

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	if p.CompleteFunc != nil {
		return p.CompleteFunc(ctx, req)
	}
	return &models.CompletionResponse{Content: "{}", Model: "mock-v1"}, nil
}

// NewJSONProvider returns a Provider that always answers with the given JSON.
func NewJSONProvider(name, content string) *Provider {
	return &Provider{
		Name_: name,
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (*models.CompletionResponse, error) {
			return &models.CompletionResponse{Content: content, Model: name + "-v1"}, nil
		},
	}
}

// NewFailingProvider returns a Provider that always returns the given error.
func NewFailingProvider(name string, err error) *Provider {
	return &Provider{
		Name_: name,
		CompleteFunc: func(_ context.Context, _ models.CompletionRequest) (*models.CompletionResponse, error) {
			return nil, err
		},
	}
}

// NewBlockingProvider returns a Provider that blocks until its context is
// cancelled, for exercising per-call timeouts.
func NewBlockingProvider(name string) *Provider {
	return &Provider{
		Name_: name,
		CompleteFunc: func(ctx context.Context, _ models.CompletionRequest) (*models.CompletionResponse, error) {
			<-ctx.Done()
			return nil, &models.ProviderError{Provider: name, Kind: models.ErrKindTimeout, Message: ctx.Err().Error()}
		},
	}
}

var _ models.Provider = (*Provider)(nil)
