package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/rule"
)

// RuleRepository implements rule.Repository.
type RuleRepository struct {
	pool *pgxpool.Pool
}

func NewRuleRepository(pool *pgxpool.Pool) *RuleRepository {
	return &RuleRepository{pool: pool}
}

func (r *RuleRepository) Create(ctx context.Context, er *rule.EscalationRule) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO escalation_rules (rule_id, name, event_kind, condition, enabled, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, er.RuleID, er.Name, er.EventKind, er.Condition, er.Enabled, er.CreatedAt)
	return err
}

func (r *RuleRepository) ListEnabledByKind(ctx context.Context, kind event.Kind) ([]*rule.EscalationRule, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT rule_id, name, event_kind, condition, enabled, created_at
		FROM escalation_rules
		WHERE event_kind=$1 AND enabled
		ORDER BY created_at
	`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*rule.EscalationRule
	for rows.Next() {
		var er rule.EscalationRule
		if err := rows.Scan(&er.RuleID, &er.Name, &er.EventKind, &er.Condition, &er.Enabled, &er.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &er)
	}
	return out, rows.Err()
}
