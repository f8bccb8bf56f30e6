// Package models contains shared data models used across the RivalScope codebase.
package models

import (
	"context"
	"fmt"
)

// Provider is the core interface that all LLM vendor integrations implement.
// Never call specific vendors directly — always inject this interface.
type Provider interface {
	// Complete sends one prompt to the vendor and returns the raw text response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the provider identifier (e.g., "openai", "anthropic").
	Name() string
}

// CompletionRequest is the vendor-agnostic input to a completion call.
type CompletionRequest struct {
	Prompt       string
	SystemPrompt string
	MaxTokens    int
	Temperature  float64
}

// CompletionResponse is the normalized output of a completion call.
type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage holds token counts reported by the vendor, when available.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ErrorKind classifies provider failures so callers can branch on structure
// instead of sniffing message substrings.
type ErrorKind string

const (
	ErrKindAuth            ErrorKind = "auth"
	ErrKindRateLimited     ErrorKind = "rate_limited"
	ErrKindBadRequest      ErrorKind = "bad_request"
	ErrKindUnavailable     ErrorKind = "unavailable"
	ErrKindTimeout         ErrorKind = "timeout"
	ErrKindInvalidResponse ErrorKind = "invalid_response"
)

// ProviderError is the structured error returned by vendor adapters on any
// non-2xx response or transport failure.
type ProviderError struct {
	Provider string
	Status   int
	Kind     ErrorKind
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}
