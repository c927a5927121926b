// Package huggingface provides a provider client for the Hugging Face
// Inference API, including the image captioning model used during
// ingestion.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/flowport/flowport/internal/adapters/driven/providers/openai"
	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
)

// Ensure Client implements the interfaces.
var (
	_ driven.ProviderClient = (*Client)(nil)
	_ driven.Captioner      = (*Client)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL        = "https://api-inference.huggingface.co/models"
	DefaultTimeout        = 60 * time.Second
	DefaultCaptionTimeout = 90 * time.Second
	DefaultCaptionModel   = "Salesforce/blip-image-captioning-large"
)

// Config holds configuration for the Hugging Face client.
type Config struct {
	// BaseURL is the inference API base URL
	// (default: https://api-inference.huggingface.co/models).
	BaseURL string

	// Timeout is the text inference timeout (default: 60s).
	Timeout time.Duration

	// CaptionTimeout is the image caption timeout (default: 90s; caption
	// models cold-start slowly).
	CaptionTimeout time.Duration

	// CaptionModel is the hosted captioning model
	// (default: Salesforce/blip-image-captioning-large).
	CaptionModel string

	// Limiter throttles outgoing calls when set.
	Limiter *rate.Limiter
}

// Client dispatches inference and captioning requests to Hugging Face.
type Client struct {
	client        *http.Client
	captionClient *http.Client
	baseURL       string
	captionModel  string
	limiter       *rate.Limiter
}

// NewClient creates a new Hugging Face client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CaptionTimeout == 0 {
		cfg.CaptionTimeout = DefaultCaptionTimeout
	}
	if cfg.CaptionModel == "" {
		cfg.CaptionModel = DefaultCaptionModel
	}
	return &Client{
		client:        &http.Client{Timeout: cfg.Timeout},
		captionClient: &http.Client{Timeout: cfg.CaptionTimeout},
		baseURL:       cfg.BaseURL,
		captionModel:  cfg.CaptionModel,
		limiter:       cfg.Limiter,
	}
}

// Provider identifies which provider this client talks to.
func (c *Client) Provider() domain.Provider {
	return domain.ProviderHuggingFace
}

// Infer posts a text inference request. Hosted text models take one flat
// input string, so the conversation is rendered with role labels.
func (c *Client) Infer(ctx context.Context, req driven.ProviderRequest) (*driven.ProviderResponse, error) {
	payload := map[string]any{"inputs": RenderPrompt(req.Messages)}
	if len(req.Parameters) > 0 {
		payload["parameters"] = req.Parameters
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+req.Model, bytes.NewReader(body))
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
			Provider:   domain.ProviderHuggingFace,
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

// Caption posts image bytes to the captioning model and returns the
// trimmed caption, or empty when the response carries none.
func (c *Client) Caption(ctx context.Context, data []byte, apiKey string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+c.captionModel, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	resp, err := c.captionClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &domain.ProviderError{
			Provider:   domain.ProviderHuggingFace,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return extractCaption(decoded), nil
}

// RenderPrompt flattens the conversation into a labelled text prompt.
// Blank entries are dropped.
func RenderPrompt(messages []domain.Message) string {
	labels := map[domain.Role]string{
		domain.RoleSystem:    "System",
		domain.RoleUser:      "User",
		domain.RoleAssistant: "Assistant",
	}

	var parts []string
	for _, m := range messages {
		label, ok := labels[m.Role]
		if !ok {
			label = "Message"
		}
		if content := strings.TrimSpace(m.Content); content != "" {
			parts = append(parts, label+": "+content)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// ExtractText pulls the answer out of a hosted-model response. Model
// cards differ, so the shapes tried are: a bare string; an object with
// one of the known text keys, or an OpenAI-compatible choices array; a
// list of either, recursing into the first element as a last resort.
func ExtractText(payload any) string {
	switch value := payload.(type) {
	case string:
		return value
	case map[string]any:
		for _, key := range []string{"generated_text", "summary_text", "text", "answer", "result"} {
			if text, ok := value[key].(string); ok {
				return text
			}
		}
		if _, ok := value["choices"].([]any); ok {
			return openai.ExtractText(payload)
		}
	case []any:
		for _, item := range value {
			switch item := item.(type) {
			case string:
				return item
			case map[string]any:
				for _, key := range []string{"generated_text", "summary_text", "text"} {
					if text, ok := item[key].(string); ok {
						return text
					}
				}
			}
		}
		if len(value) > 0 {
			return ExtractText(value[0])
		}
	}
	return ""
}

// extractCaption reads the caption from a captioning model response:
// either a generated_text/caption object or a list of them.
func extractCaption(payload any) string {
	if list, ok := payload.([]any); ok {
		if len(list) == 0 {
			return ""
		}
		payload = list[0]
	}

	entry, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"generated_text", "caption"} {
		if caption, ok := entry[key].(string); ok {
			if caption = strings.TrimSpace(caption); caption != "" {
				return caption
			}
		}
	}
	return ""
}
