package tui

import "errors"

// ErrMissingKnowledgeService is returned when the app is constructed without a
// knowledge service.
var ErrMissingKnowledgeService = errors.New("tui: knowledge service is required")
