// Package openai implements models.Provider against the OpenAI chat
// completions API.
package openai

import (
	"context"
	"net/http"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/llm/transport"
	"github.com/rivalscope/rivalscope/pkg/models"
)

const providerName = "openai"

// Provider implements models.Provider using OpenAI.
type Provider struct {
	apiKey string
	cfg    config.OpenAIConfig
	client *http.Client
}

// NewProvider creates an OpenAI adapter bound to one API key. Call deadlines
// come from the caller's context.
func NewProvider(apiKey string, cfg config.OpenAIConfig) *Provider {
	return &Provider{apiKey: apiKey, cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return providerName }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
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
	if req.Temperature > 0 {
		body.Temperature = &req.Temperature
	}

	var resp chatResponse
	err := transport.PostJSON(ctx, p.client, providerName,
		p.cfg.BaseURL+"/v1/chat/completions",
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
