package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/flowport/flowport/internal/chunker"
	"github.com/flowport/flowport/internal/core/domain"
)

type createCollectionRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type knowledgeItemRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=160"`
	Content string `json:"content" validate:"required,min=1"`
}

type autoBuildRequest struct {
	Name           string                 `json:"name" validate:"required,min=2,max=120"`
	Description    string                 `json:"description" validate:"omitempty,max=500"`
	KnowledgeItems []knowledgeItemRequest `json:"knowledge_items" validate:"omitempty,dive"`
	ChunkSize      *int                   `json:"chunk_size" validate:"omitempty,gte=100,lte=4000"`
	ChunkOverlap   *int                   `json:"chunk_overlap" validate:"omitempty,gte=0,lte=500"`
}

type textIngestRequest struct {
	Title        string `json:"title" validate:"required,min=1,max=160"`
	Content      string `json:"content" validate:"required,min=1"`
	ChunkSize    *int   `json:"chunk_size" validate:"omitempty,gte=100,lte=4000"`
	ChunkOverlap *int   `json:"chunk_overlap" validate:"omitempty,gte=0,lte=500"`
}

type queryRequest struct {
	Query string `json:"query" validate:"required,min=1"`
	TopK  *int   `json:"top_k" validate:"omitempty,gte=1,lte=20"`
}

type chatMessageRequest struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required,min=1"`
}

type inferenceRequest struct {
	Provider        string               `json:"provider" validate:"omitempty,oneof=huggingface openai gemini llama"`
	Model           string               `json:"model" validate:"required,min=2"`
	Prompt          string               `json:"prompt"`
	Messages        []chatMessageRequest `json:"messages" validate:"omitempty,dive"`
	SystemPrompt    string               `json:"system_prompt"`
	KnowledgeBaseID string               `json:"knowledge_base_id"`
	TopK            *int                 `json:"top_k" validate:"omitempty,gte=1,lte=20"`
	Parameters      map[string]any       `json:"parameters"`

	// ContextTemplate stays raw so an absent field (use the default
	// template) is distinguishable from an explicit null or empty string
	// (no template; the bare prompt is dispatched).
	ContextTemplate json.RawMessage `json:"context_template"`

	APIKey   string            `json:"api_key"`
	APIKeys  map[string]string `json:"api_keys"`
	HFAPIKey string            `json:"hf_api_key"`
}

// resolveTemplate applies the three-way context_template semantics.
func (r *inferenceRequest) resolveTemplate() (string, error) {
	if len(r.ContextTemplate) == 0 {
		return domain.DefaultContextTemplate, nil
	}
	if string(r.ContextTemplate) == "null" {
		return "", nil
	}

	var template string
	if err := json.Unmarshal(r.ContextTemplate, &template); err != nil {
		return "", fmt.Errorf("context_template must be a string")
	}
	return template, nil
}

// hasPromptOrUserMessage reports whether the request carries a question
// the model can answer.
func (r *inferenceRequest) hasPromptOrUserMessage() bool {
	if strings.TrimSpace(r.Prompt) != "" {
		return true
	}
	for _, m := range r.Messages {
		if m.Role == "user" && strings.TrimSpace(m.Content) != "" {
			return true
		}
	}
	return false
}

// collectionSummary is the list-view projection of a collection, without
// its document inventory.
type collectionSummary struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Source        domain.Origin `json:"source"`
	DocumentCount int           `json:"document_count"`
	ChunkCount    int           `json:"chunk_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	Ready         bool          `json:"ready"`
}

func summarize(col domain.Collection) collectionSummary {
	return collectionSummary{
		ID:            col.ID,
		Name:          col.Name,
		Description:   col.Description,
		Source:        col.Origin,
		DocumentCount: col.DocumentCount,
		ChunkCount:    col.ChunkCount,
		CreatedAt:     col.CreatedAt,
		UpdatedAt:     col.UpdatedAt,
		Ready:         col.Ready,
	}
}

func intOrDefault(v *int, def int) int {
	if v != nil {
		return *v
	}
	return def
}

func chunkParams(size, overlap *int) (int, int) {
	return intOrDefault(size, chunker.DefaultChunkSize),
		intOrDefault(overlap, chunker.DefaultChunkOverlap)
}
