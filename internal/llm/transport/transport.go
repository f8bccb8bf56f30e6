// Package transport holds HTTP plumbing shared by the vendor adapters:
// posting JSON and classifying failures into structured provider errors.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"unicode/utf8"

	"github.com/rivalscope/rivalscope/pkg/models"
)

const maxErrorBody = 512

// PostJSON marshals body, posts it to url with the given headers, and decodes
// a 2xx response into out. Non-2xx statuses and transport failures come back
// as *models.ProviderError.
func PostJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Classify(provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ClassifyStatus(provider, resp.StatusCode, raw)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.ProviderError{
			Provider: provider,
			Kind:     models.ErrKindInvalidResponse,
			Message:  fmt.Sprintf("decode response: %v", err),
		}
	}
	return nil
}

// ClassifyStatus maps a non-2xx vendor status to a structured error so
// callers can branch on kind instead of sniffing message substrings.
func ClassifyStatus(provider string, status int, body []byte) *models.ProviderError {
	kind := models.ErrKindUnavailable
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = models.ErrKindAuth
	case status == http.StatusTooManyRequests:
		kind = models.ErrKindRateLimited
	case status >= 400 && status < 500:
		kind = models.ErrKindBadRequest
	}
	return &models.ProviderError{
		Provider: provider,
		Status:   status,
		Kind:     kind,
		Message:  truncate(string(body), maxErrorBody),
	}
}

// Classify maps transport-level errors to structured provider errors.
func Classify(provider string, err error) *models.ProviderError {
	kind := models.ErrKindUnavailable
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = models.ErrKindTimeout
	} else {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = models.ErrKindTimeout
		}
	}
	return &models.ProviderError{
		Provider: provider,
		Kind:     kind,
		Message:  err.Error(),
	}
}

func truncate(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
