package httpapi

import (
	"net/http"

	"github.com/flowport/flowport/internal/core/domain"
)

// Inference handles POST /api/inference.
func (h *Handler) Inference(w http.ResponseWriter, r *http.Request) {
	var req inferenceRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateStruct(&req); err != nil {
		HandleValidationError(w, err)
		return
	}
	if !req.hasPromptOrUserMessage() {
		_ = WriteBadRequest(w, "Provide a prompt or at least one user message", nil)
		return
	}

	provider := domain.Provider(req.Provider)
	if req.Provider == "" {
		provider = domain.ProviderHuggingFace
	}

	template, err := req.resolveTemplate()
	if err != nil {
		_ = WriteBadRequest(w, err.Error(), nil)
		return
	}

	messages := make([]domain.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, domain.Message{
			Role:    domain.Role(m.Role),
			Content: m.Content,
		})
	}

	apiKeys := make(map[domain.Provider]string, len(req.APIKeys))
	for p, key := range req.APIKeys {
		apiKeys[domain.Provider(p)] = key
	}

	result, err := h.inference.Run(r.Context(), domain.InferenceInput{
		Provider:        provider,
		Model:           req.Model,
		Prompt:          req.Prompt,
		Messages:        messages,
		SystemPrompt:    req.SystemPrompt,
		CollectionID:    req.KnowledgeBaseID,
		TopK:            intOrDefault(req.TopK, 0),
		Parameters:      req.Parameters,
		ContextTemplate: template,
		APIKey:          req.APIKey,
		APIKeys:         apiKeys,
		HFAPIKey:        req.HFAPIKey,
	})
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}
