package driven

import (
	"context"

	"github.com/flowport/flowport/internal/core/domain"
)

// AuditStore records inference runs. Backed by SQLite.
type AuditStore interface {
	// Record appends one entry to the audit log.
	Record(ctx context.Context, entry *domain.AuditEntry) error

	// Recent returns the newest entries, most recent first.
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)

	// Close releases the underlying database handle.
	Close() error
}
