package audit

import "context"

// Repository defines persistence for the append-only audit log.
type Repository interface {
	Append(ctx context.Context, e *Entry) error
	GetByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*Entry, error)
}
