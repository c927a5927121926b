package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested collection, document or chunk does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a collection with the same id already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyContent indicates the supplied content produced no chunks.
	ErrEmptyContent = errors.New("unable to chunk empty content")

	// ErrNoContentExtracted indicates every chunk normalised to empty text.
	ErrNoContentExtracted = errors.New("no textual content was extracted from the provided data")

	// ErrNotReady indicates the collection index has not been built yet.
	// Ingest at least one document to trigger a build.
	ErrNotReady = errors.New("collection index is not ready yet")

	// ErrIndexMissing indicates the ready flag is set but the artifact is absent.
	// This is a corruption signal; the index must be rebuilt.
	ErrIndexMissing = errors.New("collection index missing; rebuild required")

	// ErrInvalidTemplate indicates the context template references an unsupported key.
	ErrInvalidTemplate = errors.New("invalid context template")

	// ErrNoUserMessage indicates the conversation contains no user turn to answer.
	ErrNoUserMessage = errors.New("at least one user message is required")

	// ErrMissingAPIKey indicates no API key was supplied for the selected provider.
	ErrMissingAPIKey = errors.New("missing API key for selected provider")

	// ErrUnsupportedProvider indicates an unknown provider name.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrExtractionFailed indicates a file's content could not be parsed into text.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrProviderUnreachable indicates a transport-level failure before any
	// provider response was received.
	ErrProviderUnreachable = errors.New("provider unreachable")
)

// ProviderError carries a non-2xx response from an upstream model provider.
// Status and body are surfaced to the caller unchanged so clients can see
// exactly what the provider reported.
type ProviderError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}
