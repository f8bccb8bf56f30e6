package llm

import "errors"

var (
	// ErrAllProvidersFailed is returned when every credentialed provider in
	// the ranking failed for one competitor. It aborts the whole run.
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrUnknownProvider is returned by the factory for a provider name
	// outside the supported set.
	ErrUnknownProvider = errors.New("unknown provider")
)
