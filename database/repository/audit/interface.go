package auditRepo

import (
	"context"

	"kymaclub/models"
)

// AuditRepository is the append-only audit-log store. Entries are never
// updated or deleted.
type AuditRepository interface {
	// Insert appends one audit entry.
	Insert(ctx context.Context, entry *models.AuditLogEntry) error
	// ListByEntity returns the most recent entries for one entity.
	ListByEntity(ctx context.Context, entityType, entityID string, limit int64) ([]models.AuditLogEntry, error)
	// ListByAction returns the most recent entries for one action type.
	ListByAction(ctx context.Context, action models.AuditAction, limit int64) ([]models.AuditLogEntry, error)
	// ListRecent returns the most recent entries across all entities.
	ListRecent(ctx context.Context, limit int64) ([]models.AuditLogEntry, error)
}
