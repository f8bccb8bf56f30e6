package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rivalscope/rivalscope/internal/config"
	"github.com/rivalscope/rivalscope/pkg/models"
)

func TestComplete_Success(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"model": "claude-sonnet",
			"content": []map[string]any{
				{"type": "text", "text": "part one "},
				{"type": "text", "text": "part two"},
			},
			"usage": map[string]int{"input_tokens": 12, "output_tokens": 7},
		})
	}))
	defer srv.Close()

	p := NewProvider("sk-ant", config.AnthropicConfig{
		BaseURL: srv.URL, APIVersion: "2023-06-01", Model: "claude-sonnet",
	})
	resp, err := p.Complete(context.Background(), models.CompletionRequest{Prompt: "analyze"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "part one part two" {
		t.Errorf("text blocks not concatenated: %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 19 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
	if gotKey != "sk-ant" || gotVersion != "2023-06-01" {
		t.Errorf("unexpected headers: key=%q version=%q", gotKey, gotVersion)
	}
	// max_tokens must always be set; Anthropic rejects requests without it
	if gotBody["max_tokens"] == nil || gotBody["max_tokens"].(float64) <= 0 {
		t.Errorf("expected max_tokens in request, got %v", gotBody["max_tokens"])
	}
}

func TestComplete_RateLimitClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"type":"rate_limit_error"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewProvider("sk-ant", config.AnthropicConfig{BaseURL: srv.URL, APIVersion: "2023-06-01"})
	_, err := p.Complete(context.Background(), models.CompletionRequest{Prompt: "analyze"})

	var perr *models.ProviderError
	if !errors.As(err, &perr) || perr.Kind != models.ErrKindRateLimited {
		t.Fatalf("expected rate_limited error, got %v", err)
	}
}

func TestComplete_NoTextBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	}))
	defer srv.Close()

	p := NewProvider("sk-ant", config.AnthropicConfig{BaseURL: srv.URL, APIVersion: "2023-06-01"})
	_, err := p.Complete(context.Background(), models.CompletionRequest{Prompt: "analyze"})

	var perr *models.ProviderError
	if !errors.As(err, &perr) || perr.Kind != models.ErrKindInvalidResponse {
		t.Fatalf("expected invalid_response error, got %v", err)
	}
}
