// Package gemini provides a provider client for Google's Generative
// Language (Gemini) API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.ProviderClient = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout = 60 * time.Second
)

// recognisedKeys are parameters the generateContent endpoint accepts at
// the payload top level. Anything else folds into generationConfig.
var recognisedKeys = map[string]struct{}{
	"generationConfig": {},
	"safetySettings":   {},
	"tools":            {},
	"toolConfig":       {},
	"candidateCount":   {},
}

// Config holds configuration for the Gemini client.
type Config struct {
	// BaseURL is the API base URL
	// (default: https://generativelanguage.googleapis.com/v1beta).
	BaseURL string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration

	// Limiter throttles outgoing calls when set.
	Limiter *rate.Limiter
}

// Client dispatches inference requests to Gemini.
type Client struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient creates a new Gemini client.
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
	return domain.ProviderGemini
}

// Infer posts a generateContent request. System entries collect into
// systemInstruction; assistant entries take the "model" role.
func (c *Client) Infer(ctx context.Context, req driven.ProviderRequest) (*driven.ProviderResponse, error) {
	contents, systemInstruction := renderContents(req.Messages)

	payload := map[string]any{"contents": contents}
	if systemInstruction != nil {
		payload["systemInstruction"] = systemInstruction
	}
	applyParameters(payload, req.Parameters)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, req.Model, url.QueryEscape(req.APIKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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
			Provider:   domain.ProviderGemini,
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
		Text:    ExtractText(decoded),
	}, nil
}

// renderContents converts the conversation to Gemini's contents array and
// an optional systemInstruction. Blank entries are dropped.
func renderContents(messages []domain.Message) ([]map[string]any, map[string]any) {
	contents := []map[string]any{}
	var system []string

	for _, m := range messages {
		text := strings.TrimSpace(m.Content)
		if text == "" {
			continue
		}
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, text)
		case domain.RoleAssistant:
			contents = append(contents, map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}})
		default:
			contents = append(contents, map[string]any{"role": "user", "parts": []map[string]any{{"text": text}}})
		}
	}

	var systemInstruction map[string]any
	if len(system) > 0 {
		systemInstruction = map[string]any{"parts": []map[string]any{{"text": strings.Join(system, "\n\n")}}}
	}
	return contents, systemInstruction
}

// applyParameters merges caller parameters into the payload. When any
// recognised key is present, recognised keys go to the top level first
// and the rest folds into generationConfig; otherwise the whole map is
// the generationConfig.
func applyParameters(payload map[string]any, params map[string]any) {
	if len(params) == 0 {
		return
	}

	lift := false
	for key := range params {
		if _, ok := recognisedKeys[key]; ok {
			lift = true
			break
		}
	}
	if !lift {
		config := make(map[string]any, len(params))
		for key, value := range params {
			config[key] = value
		}
		payload["generationConfig"] = config
		return
	}

	for key, value := range params {
		if _, ok := recognisedKeys[key]; ok {
			payload[key] = value
		}
	}
	for key, value := range params {
		if _, ok := recognisedKeys[key]; ok {
			continue
		}
		config, ok := payload["generationConfig"].(map[string]any)
		if !ok {
			config = map[string]any{}
			payload["generationConfig"] = config
		}
		config[key] = value
	}
}

// ExtractText pulls the answer out of a generateContent payload: the
// first string under candidates[].content.parts[].text, else a bare
// candidates[].text.
func ExtractText(payload any) string {
	root, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	candidates, ok := root["candidates"].([]any)
	if !ok {
		return ""
	}

	for _, candidate := range candidates {
		entry, ok := candidate.(map[string]any)
		if !ok {
			continue
		}
		if content, ok := entry["content"].(map[string]any); ok {
			if parts, ok := content["parts"].([]any); ok {
				for _, part := range parts {
					if p, ok := part.(map[string]any); ok {
						if text, ok := p["text"].(string); ok {
							return text
						}
					}
				}
			}
		}
		if text, ok := entry["text"].(string); ok {
			return text
		}
	}
	return ""
}
