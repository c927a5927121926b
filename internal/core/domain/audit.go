package domain

import "time"

// Audit entry statuses.
const (
	AuditStatusOK    = "ok"
	AuditStatusError = "error"
)

// AuditEntry records one inference run for later inspection.
type AuditEntry struct {
	ID           int64     `json:"id"`
	Provider     Provider  `json:"provider"`
	Model        string    `json:"model"`
	CollectionID string    `json:"collection_id,omitempty"`
	Status       string    `json:"status"`
	DurationMS   int64     `json:"duration_ms"`
	OutputChars  int       `json:"output_chars"`
	Detail       string    `json:"detail,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
