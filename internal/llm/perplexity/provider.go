// Package perplexity implements models.Provider against the Perplexity API,
// which speaks the OpenAI chat completions wire format.
package perplexity

import (
	"context"
	"net/http"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/llm/transport"
	"github.com/rivalscope/rivalscope/pkg/models"
)

const providerName = "perplexity"

// Provider implements models.Provider using Perplexity.
type Provider struct {
	apiKey string
	cfg    config.PerplexityConfig
	client *http.Client
}

func NewProvider(apiKey string, cfg config.PerplexityConfig) *Provider {
	return &Provider{apiKey: apiKey, cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return providerName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage models.Usage `json:"usage"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body := chatRequest{
		Model:     p.cfg.Model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	}

	var resp chatResponse
	err := transport.PostJSON(ctx, p.client, providerName,
		p.cfg.BaseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + p.apiKey},
		body, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, &models.ProviderError{
			Provider: providerName,
			Kind:     models.ErrKindInvalidResponse,
			Message:  "response contained no choices",
		}
	}

	return &models.CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage:   resp.Usage,
	}, nil
}

var _ models.Provider = (*Provider)(nil)
