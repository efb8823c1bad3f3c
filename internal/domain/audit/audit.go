package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is an append-only audit record of one state transition. Entries are
// written in the same transaction as the entity mutation they describe and
// are never updated in place.
type Entry struct {
	ID         int64           `json:"id"`
	AuditID    uuid.UUID       `json:"auditId"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	ActionType string          `json:"actionType"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	Actor      string          `json:"actor"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewEntry builds an audit entry; changes may be any JSON-marshalable value.
func NewEntry(entityType, entityID, actionType, actor string, changes interface{}, at time.Time) (*Entry, error) {
	var raw json.RawMessage
	if changes != nil {
		b, err := json.Marshal(changes)
		if err != nil {
			return nil, fmt.Errorf("marshal audit changes: %w", err)
		}
		raw = b
	}
	return &Entry{
		AuditID:    uuid.New(),
		EntityType: entityType,
		EntityID:   entityID,
		ActionType: actionType,
		Changes:    raw,
		Actor:      actor,
		CreatedAt:  at,
	}, nil
}
