// Package llama provides a provider client for llama.cpp and other
// OpenAI-compatible chat completion servers.
package llama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowport/flowport/internal/adapters/driven/providers/openai"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ProviderClient = (*Client)(nil)

// Default configuration values.
const (
	// DefaultBaseURL points at a local llama.cpp server.
	DefaultBaseURL = "http://localhost:8080/v1"

	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the llama client.
type Config struct {
	// BaseURL is the OpenAI-compatible API base URL
	// (default: http://localhost:8080/v1).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Limiter throttles outgoing calls when set.
	Limiter *rate.Limiter
}

// Client dispatches inference requests to an OpenAI-compatible llama
// server.
type Client struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// chatMessage is the chat completions message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewClient creates a new llama client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		limiter: cfg.Limiter,
	}
}

// Provider identifies which provider this client talks to.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderLlama
}

// Infer posts a chat completion request in the OpenAI wire format.
func (c *Client) Infer(ctx context.Context, req driven.ProviderRequest) (*driven.ProviderResponse, error) {
	messages := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}

	payload := map[string]any{
		"model":    req.Model,
		"messages": messages,
	}
	for key, value := range req.Parameters {
		if key == "model" || key == "messages" {
			continue
		}
		payload[key] = value
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &domain.ProviderError{
			Provider:   domain.ProviderLlama,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &driven.ProviderResponse{
		Payload: decoded,
		Text:    openai.ExtractText(decoded),
	}, nil
}
