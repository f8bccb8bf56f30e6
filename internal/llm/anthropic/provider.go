// Package anthropic implements models.Provider against the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"net/http"
	"strings"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/llm/transport"
	"github.com/rivalscope/rivalscope/pkg/models"
)

const providerName = "anthropic"

const defaultMaxTokens = 4096

// Provider implements models.Provider using Anthropic.
type Provider struct {
	apiKey string
	cfg    config.AnthropicConfig
	client *http.Client
}

func NewProvider(apiKey string, cfg config.AnthropicConfig) *Provider {
	return &Provider{apiKey: apiKey, cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return providerName }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
	System    string    `json:"system,omitempty"`
}

type messagesResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	body := messagesRequest{
		Model:     p.cfg.Model,
		MaxTokens: maxTokens,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
		System:    req.SystemPrompt,
	}

	var resp messagesResponse
	err := transport.PostJSON(ctx, p.client, providerName,
		p.cfg.BaseURL+"/v1/messages",
		map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": p.cfg.APIVersion,
		},
		body, &resp)
	if err != nil {
		return nil, err
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, &models.ProviderError{
			Provider: providerName,
			Kind:     models.ErrKindInvalidResponse,
			Message:  "response contained no text blocks",
		}
	}

	return &models.CompletionResponse{
		Content: content.String(),
		Model:   resp.Model,
		Usage: models.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
	}, nil
}

var _ models.Provider = (*Provider)(nil)
