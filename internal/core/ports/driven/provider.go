package driven

import (
	"context"

	"github.com/flowport/flowport/internal/core/domain"
)

// ProviderRequest is the provider-neutral description of one inference
// call. Each client encodes it into its provider's wire format.
type ProviderRequest struct {
	// Model is the provider-side model identifier.
	Model string

	// Messages is the composed conversation in order.
	Messages []domain.Message

	// Parameters are provider-specific tuning knobs passed through from
	// the caller. They may not override the model or the messages.
	Parameters map[string]any

	// APIKey authenticates the call.
	APIKey string
}

// ProviderResponse is the outcome of a successful provider call.
type ProviderResponse struct {
	// Payload is the provider's decoded JSON response, passed through
	// to the caller untouched.
	Payload any

	// Text is the plain-text answer extracted from the payload. Empty
	// when no known response shape matched.
	Text string
}

// ProviderClient dispatches composed requests to one hosted model provider.
type ProviderClient interface {
	// Provider identifies which provider this client talks to.
	Provider() domain.Provider

	// Infer sends the request and extracts the answer text.
	// Upstream non-2xx responses surface as *domain.ProviderError;
	// transport failures wrap domain.ErrProviderUnreachable.
	Infer(ctx context.Context, req ProviderRequest) (*ProviderResponse, error)
}

// ProviderRegistry resolves the client for a provider.
type ProviderRegistry interface {
	// ClientFor returns the client for the given provider.
	// Returns domain.ErrUnsupportedProvider for unknown values.
	ClientFor(provider domain.Provider) (ProviderClient, error)
}
