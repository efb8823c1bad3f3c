package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estate-hub/estate-hub/internal/domain/audit"
)

// AuditRepository implements audit.Repository. The audit_log table is
// append-only; there is no update path.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Append(ctx context.Context, e *audit.Entry) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO audit_log
		(audit_id, entity_type, entity_id, action_type, changes, actor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, e.AuditID, e.EntityType, e.EntityID, e.ActionType, e.Changes, e.Actor, e.CreatedAt)
	return err
}

func (r *AuditRepository) GetByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*audit.Entry, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT id, audit_id, entity_type, entity_id, action_type, changes, actor, created_at
		FROM audit_log
		WHERE entity_type=$1 AND entity_id=$2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.ID, &e.AuditID, &e.EntityType, &e.EntityID, &e.ActionType, &e.Changes, &e.Actor, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
