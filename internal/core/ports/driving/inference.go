package driving

import (
	"context"

	"github.com/flowport/flowport/internal/core/domain"
)

// InferenceService composes conversations, enriches them with retrieved
// context and dispatches them to hosted model providers.
type InferenceService interface {
	// Run executes one inference call. When the input names a collection,
	// the final user question retrieves context first and the configured
	// template injects it into that question before dispatch.
	Run(ctx context.Context, in domain.InferenceInput) (*domain.InferenceResult, error)
}
