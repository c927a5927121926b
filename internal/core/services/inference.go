package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/core/domain"
	"github.com/flowport/flowport/internal/core/ports/driven"
	"github.com/flowport/flowport/internal/core/ports/driving"
)

// Ensure InferenceService implements the interface.
var _ driving.InferenceService = (*InferenceService)(nil)

// templateKeyPattern matches the substitution keys of a context template.
var templateKeyPattern = regexp.MustCompile(`\{([^{}]*)\}`)

// InferenceService composes conversations, enriches them with retrieved
// context and dispatches them to hosted model providers.
type InferenceService struct {
	providers   driven.ProviderRegistry
	knowledge   driving.KnowledgeService
	audit       driven.AuditStore
	defaultTopK int
	logger      *zap.Logger
}

// NewInferenceService creates an inference service.
// The audit store is optional (can be nil).
func NewInferenceService(
	providers driven.ProviderRegistry,
	knowledge driving.KnowledgeService,
	audit driven.AuditStore,
	defaultTopK int,
	logger *zap.Logger,
) *InferenceService {
	if defaultTopK <= 0 {
		defaultTopK = domain.DefaultTopK
	}
	return &InferenceService{
		providers:   providers,
		knowledge:   knowledge,
		audit:       audit,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Run executes one inference call. When the input names a collection, the
// final user question retrieves context first and the configured template
// injects it into that question before dispatch.
func (s *InferenceService) Run(ctx context.Context, in domain.InferenceInput) (*domain.InferenceResult, error) {
	if !in.Provider.Valid() {
		return nil, fmt.Errorf("provider %q: %w", in.Provider, domain.ErrUnsupportedProvider)
	}
	apiKey := in.ResolveAPIKey()
	if apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	messages := composeMessages(in)
	lastUser := lastUserIndex(messages)
	if lastUser < 0 {
		return nil, domain.ErrNoUserMessage
	}
	question := messages[lastUser].Content

	matches := []domain.ChunkMatch{}
	var contextText string
	if in.CollectionID != "" {
		topK := in.TopK
		if topK <= 0 {
			topK = s.defaultTopK
		}
		// Retrieval always uses the original question, never the
		// template-enriched one.
		result, err := s.knowledge.Query(ctx, in.CollectionID, question, topK)
		if err != nil {
			return nil, err
		}
		matches = result.Matches
		if len(matches) > 0 {
			contextText = RenderContext(matches)
			template := in.ContextTemplate
			if template == "" {
				template = "{prompt}"
			}
			enriched, err := expandTemplate(template, contextText, question)
			if err != nil {
				return nil, err
			}
			messages[lastUser].Content = enriched
		}
	}

	client, err := s.providers.ClientFor(in.Provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.Infer(ctx, driven.ProviderRequest{
		Model:      in.Model,
		Messages:   messages,
		Parameters: in.Parameters,
		APIKey:     apiKey,
	})
	s.recordAudit(ctx, in, resp, err, time.Since(start))
	if err != nil {
		return nil, err
	}

	return &domain.InferenceResult{
		Provider:   in.Provider,
		Model:      in.Model,
		Prompt:     messages[lastUser].Content,
		Payload:    resp.Payload,
		OutputText: resp.Text,
		Context:    contextText,
		Matches:    matches,
		Messages:   messages,
	}, nil
}

// composeMessages builds the conversation from history, system prompt and
// standalone prompt. Every entry is trimmed; the system prompt is prepended
// unless an identical system entry already leads; the standalone prompt is
// appended only when no user entry exists anywhere in the history.
func composeMessages(in domain.InferenceInput) []domain.Message {
	messages := make([]domain.Message, 0, len(in.Messages)+2)
	for _, m := range in.Messages {
		messages = append(messages, domain.Message{
			Role:    m.Role,
			Content: strings.TrimSpace(m.Content),
		})
	}

	if system := strings.TrimSpace(in.SystemPrompt); system != "" {
		if len(messages) == 0 || messages[0].Role != domain.RoleSystem || messages[0].Content != system {
			messages = append([]domain.Message{{Role: domain.RoleSystem, Content: system}}, messages...)
		}
	}

	if prompt := strings.TrimSpace(in.Prompt); prompt != "" {
		hasUser := false
		for _, m := range messages {
			if m.Role == domain.RoleUser {
				hasUser = true
				break
			}
		}
		if !hasUser {
			messages = append(messages, domain.Message{Role: domain.RoleUser, Content: prompt})
		}
	}

	return messages
}

// lastUserIndex returns the index of the last user entry, or -1.
func lastUserIndex(messages []domain.Message) int {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return i
		}
	}
	return -1
}

// RenderContext renders retrieval matches into the context block injected
// into prompts. Each match shows its document title (or id when untitled),
// score and content.
func RenderContext(matches []domain.ChunkMatch) string {
	lines := make([]string, 0, len(matches))
	for _, match := range matches {
		title := match.DocumentTitle
		if title == "" {
			title = match.DocumentID
		}
		lines = append(lines, fmt.Sprintf("[%s] (score=%.3f)\n%s", title, match.Score, match.Content))
	}
	return strings.Join(lines, "\n\n")
}

// expandTemplate substitutes {context} and {prompt} in the template. Any
// other substitution key is a caller configuration error.
func expandTemplate(template, contextText, prompt string) (string, error) {
	for _, group := range templateKeyPattern.FindAllStringSubmatch(template, -1) {
		if key := group[1]; key != "context" && key != "prompt" {
			return "", fmt.Errorf("%w: unknown key %q", domain.ErrInvalidTemplate, key)
		}
	}
	expanded := strings.ReplaceAll(template, "{context}", contextText)
	expanded = strings.ReplaceAll(expanded, "{prompt}", prompt)
	return expanded, nil
}

// recordAudit appends one run to the audit log. Failures are logged and
// never fail the run itself.
func (s *InferenceService) recordAudit(ctx context.Context, in domain.InferenceInput, resp *driven.ProviderResponse, runErr error, elapsed time.Duration) {
	if s.audit == nil {
		return
	}

	entry := &domain.AuditEntry{
		Provider:     in.Provider,
		Model:        in.Model,
		CollectionID: in.CollectionID,
		Status:       domain.AuditStatusOK,
		DurationMS:   elapsed.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}
	if runErr != nil {
		entry.Status = domain.AuditStatusError
		entry.Detail = runErr.Error()
	} else if resp != nil {
		entry.OutputChars = len(resp.Text)
	}

	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit write failed", zap.Error(err))
	}
}
