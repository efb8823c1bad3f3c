package rule

import (
	"context"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

// Repository defines persistence for escalation rules.
type Repository interface {
	Create(ctx context.Context, r *EscalationRule) error
	ListEnabledByKind(ctx context.Context, kind event.Kind) ([]*EscalationRule, error)
}
