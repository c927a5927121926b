// Package providers wires the hosted model clients together behind the
// ProviderRegistry port.
package providers

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowport/flowport/internal/adapters/driven/providers/gemini"
	"github.com/flowport/flowport/internal/adapters/driven/providers/huggingface"
	"github.com/flowport/flowport/internal/adapters/driven/providers/llama"
	"github.com/flowport/flowport/internal/adapters/driven/providers/openai"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ProviderRegistry = (*Registry)(nil)

// Config holds shared configuration for all provider clients.
type Config struct {
	// Timeout bounds each inference call.
	Timeout time.Duration

	// CaptionTimeout bounds image caption calls.
	CaptionTimeout time.Duration

	// RateLimit is the per-provider request rate (requests per second).
	// Zero disables throttling.
	RateLimit float64

	// Per-provider base URL overrides. Empty keeps each client's default.
	HuggingFaceBaseURL string
	OpenAIBaseURL      string
	GeminiBaseURL      string
	LlamaBaseURL       string
}

// Registry resolves provider clients. All four hosted providers are
// constructed up front; keys arrive per request, so construction never
// needs credentials.
type Registry struct {
	clients   map[domain.Provider]driven.ProviderClient
	captioner driven.Captioner
}

// NewRegistry creates a registry with one client per supported provider.
func NewRegistry(cfg Config) *Registry {
	hf := huggingface.NewClient(huggingface.Config{
		BaseURL:        cfg.HuggingFaceBaseURL,
		Timeout:        cfg.Timeout,
		CaptionTimeout: cfg.CaptionTimeout,
		Limiter:        newLimiter(cfg.RateLimit),
	})

	return &Registry{
		clients: map[domain.Provider]driven.ProviderClient{
			domain.ProviderHuggingFace: hf,
			domain.ProviderOpenAI: openai.NewClient(openai.Config{
				BaseURL: cfg.OpenAIBaseURL,
				Timeout: cfg.Timeout,
				Limiter: newLimiter(cfg.RateLimit),
			}),
			domain.ProviderGemini: gemini.NewClient(gemini.Config{
				BaseURL: cfg.GeminiBaseURL,
				Timeout: cfg.Timeout,
				Limiter: newLimiter(cfg.RateLimit),
			}),
			domain.ProviderLlama: llama.NewClient(llama.Config{
				BaseURL: cfg.LlamaBaseURL,
				Timeout: cfg.Timeout,
				Limiter: newLimiter(cfg.RateLimit),
			}),
		},
		captioner: hf,
	}
}

// ClientFor returns the client for the given provider.
func (r *Registry) ClientFor(provider domain.Provider) (driven.ProviderClient, error) {
	client, ok := r.clients[provider]
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", provider, domain.ErrUnsupportedProvider)
	}
	return client, nil
}

// Captioner returns the image captioner, backed by the Hugging Face
// client.
func (r *Registry) Captioner() driven.Captioner {
	return r.captioner
}

// newLimiter builds a per-client limiter, or nil when throttling is off.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}
