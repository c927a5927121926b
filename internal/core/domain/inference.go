package domain

import "strings"

// DefaultContextTemplate is used when a request does not override the
// template for injecting retrieved context into the final user turn.
// It recognises exactly the {context} and {prompt} keys.
const DefaultContextTemplate = "You are assisting a user. Use the provided context to answer the question. Context:\n{context}\n\nUser: {prompt}\nAssistant:"

// Bounds for the number of chunks returned by a retrieval query.
const (
	DefaultTopK = 4
	MinTopK     = 1
	MaxTopK     = 20
)

// ClampTopK forces k into the permitted retrieval range.
// Zero or negative values fall back to the default.
func ClampTopK(k int) int {
	if k <= 0 {
		return DefaultTopK
	}
	if k < MinTopK {
		return MinTopK
	}
	if k > MaxTopK {
		return MaxTopK
	}
	return k
}

// InferenceInput is a provider-agnostic inference request.
type InferenceInput struct {
	// Provider selects the upstream model provider.
	Provider Provider

	// Model is the provider-specific model identifier.
	Model string

	// Prompt is an optional standalone question. It becomes the user turn
	// when Messages contains no user entry.
	Prompt string

	// Messages is the caller-supplied conversation history.
	Messages []Message

	// SystemPrompt is prepended as a system turn unless the history already
	// starts with an identical one.
	SystemPrompt string

	// CollectionID enables retrieval when non-empty.
	CollectionID string

	// TopK bounds the number of retrieved chunks. Zero means the default.
	TopK int

	// Parameters are passed through to the provider's wire format.
	Parameters map[string]any

	// ContextTemplate formats retrieved context into the final user turn.
	// Empty means DefaultContextTemplate was explicitly cleared; the bare
	// prompt is used instead.
	ContextTemplate string

	// APIKey is the explicit key for the selected provider.
	APIKey string

	// APIKeys maps providers to keys when the caller manages several.
	APIKeys map[Provider]string

	// HFAPIKey is the legacy Hugging Face key field kept for compatibility.
	HFAPIKey string
}

// ResolveAPIKey returns the key for the selected provider, trying the
// explicit key first, then the per-provider map, then the legacy field.
func (in *InferenceInput) ResolveAPIKey() string {
	if key := strings.TrimSpace(in.APIKey); key != "" {
		return key
	}
	if key := strings.TrimSpace(in.APIKeys[in.Provider]); key != "" {
		return key
	}
	if in.Provider == ProviderHuggingFace {
		if key := strings.TrimSpace(in.HFAPIKey); key != "" {
			return key
		}
	}
	return ""
}

// InferenceResult is the outcome of a dispatched inference call.
type InferenceResult struct {
	// Provider and Model echo the request.
	Provider Provider `json:"provider"`
	Model    string   `json:"model"`

	// Prompt is the final user turn content after context injection.
	Prompt string `json:"prompt"`

	// Payload is the raw provider response body, decoded from JSON.
	Payload any `json:"payload"`

	// OutputText is the extracted plain text, empty when no known response
	// shape matched. Callers may still use the raw payload.
	OutputText string `json:"output_text,omitempty"`

	// Context is the rendered retrieval context, empty without matches.
	Context string `json:"context,omitempty"`

	// Matches are the retrieved chunks injected into the prompt.
	Matches []ChunkMatch `json:"knowledge_hits"`

	// Messages is the composed conversation that was dispatched.
	Messages []Message `json:"messages"`
}
