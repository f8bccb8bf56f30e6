// Package gemini implements models.Provider against the Google Gemini
// generateContent API.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/internal/llm/transport"
	"github.com/rivalscope/rivalscope/pkg/models"
)

const providerName = "gemini"

const apiVersion = "v1beta"

// Provider implements models.Provider using Gemini.
type Provider struct {
	apiKey string
	cfg    config.GeminiConfig
	client *http.Client
}

func NewProvider(apiKey string, cfg config.GeminiConfig) *Provider {
	return &Provider{apiKey: apiKey, cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return providerName }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	GenerationConfig  *struct {
		MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
	} `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

func (p *Provider) Complete(ctx context.Context, req models.CompletionRequest) (*models.CompletionResponse, error) {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.Prompt}}}},
	}
	if req.SystemPrompt != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}

	// The key rides as a query parameter; Gemini does not use an auth header.
	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s",
		p.cfg.BaseURL, apiVersion, p.cfg.Model, p.apiKey)

	var resp generateResponse
	if err := transport.PostJSON(ctx, p.client, providerName, url, nil, body, &resp); err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 {
		return nil, &models.ProviderError{
			Provider: providerName,
			Kind:     models.ErrKindInvalidResponse,
			Message:  "response contained no candidates",
		}
	}

	var text strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		text.WriteString(pt.Text)
	}

	return &models.CompletionResponse{
		Content: text.String(),
		Model:   p.cfg.Model,
		Usage: models.Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

var _ models.Provider = (*Provider)(nil)
