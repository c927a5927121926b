package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/flowport/flowport/internal/core/domain"
)

// HandleServiceError maps domain errors to HTTP responses.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var providerErr *domain.ProviderError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		_ = WriteNotFound(w, err.Error())

	case errors.Is(err, domain.ErrAlreadyExists):
		_ = WriteConflict(w, err.Error())

	case errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrNoContentExtracted),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrInvalidTemplate),
		errors.Is(err, domain.ErrNoUserMessage),
		errors.Is(err, domain.ErrMissingAPIKey),
		errors.Is(err, domain.ErrUnsupportedProvider),
		errors.Is(err, domain.ErrExtractionFailed),
		errors.Is(err, domain.ErrInvalidInput):
		_ = WriteBadRequest(w, err.Error(), nil)

	case errors.Is(err, domain.ErrIndexMissing):
		logger.Error("index artifact missing for ready collection", zap.Error(err))
		_ = WriteInternalServerError(w, err.Error())

	case errors.As(err, &providerErr):
		_ = WriteUpstreamError(w, providerErr.StatusCode,
			"provider "+string(providerErr.Provider)+" rejected the request",
			providerErr.Body)

	case errors.Is(err, domain.ErrProviderUnreachable):
		_ = WriteBadGateway(w, err.Error())

	default:
		logger.Error("unhandled service error", zap.Error(err))
		_ = WriteInternalServerError(w, "An unexpected error occurred")
	}
}

// HandleValidationError writes a 400 with per-field details when err is a
// ValidationError, or a plain 400 otherwise.
func HandleValidationError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		details := make(map[string]any, len(validationErr.Fields))
		for field, message := range validationErr.Fields {
			details[field] = message
		}
		_ = WriteBadRequest(w, validationErr.Message, details)
		return
	}

	_ = WriteBadRequest(w, err.Error(), nil)
}
