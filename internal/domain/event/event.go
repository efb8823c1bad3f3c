package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind identifies a domain event type.
type Kind string

const (
	KindAssetSubmitted     Kind = "ASSET_SUBMITTED"
	KindAssetApproved      Kind = "ASSET_APPROVED"
	KindAssetRejected      Kind = "ASSET_REJECTED"
	KindIsnadAdvanced      Kind = "ISNAD_ADVANCED"
	KindIsnadReturned      Kind = "ISNAD_RETURNED"
	KindIsnadApproved      Kind = "ISNAD_APPROVED"
	KindIsnadRejected      Kind = "ISNAD_REJECTED"
	KindIsnadCancelled     Kind = "ISNAD_CANCELLED"
	KindIsnadSLABreached   Kind = "ISNAD_SLA_BREACHED"
	KindContractActivated  Kind = "CONTRACT_ACTIVATED"
	KindContractExpiring   Kind = "CONTRACT_EXPIRING"
	KindContractExpired    Kind = "CONTRACT_EXPIRED"
	KindContractCancelled  Kind = "CONTRACT_CANCELLED"
	KindContractArchived   Kind = "CONTRACT_ARCHIVED"
	KindContractUpdated    Kind = "CONTRACT_UPDATED"
	KindInstallmentOverdue Kind = "INSTALLMENT_OVERDUE"
	KindInstallmentPaid    Kind = "INSTALLMENT_PAID"
)

// Event is an immutable record of something that happened to an entity.
// Events are appended by state-machine transitions and handed to the
// notification dispatcher after the owning transaction commits.
type Event struct {
	EventID    uuid.UUID       `json:"eventId"`
	Kind       Kind            `json:"kind"`
	EntityType string          `json:"entityType"`
	EntityID   uuid.UUID       `json:"entityId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Actor      string          `json:"actor,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// New creates an event. Payload marshal failures degrade to an empty payload;
// an event must never block a transition.
func New(kind Kind, entityType string, entityID uuid.UUID, actor string, payload interface{}) Event {
	var raw json.RawMessage
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			raw = b
		}
	}
	return Event{
		EventID:    uuid.New(),
		Kind:       kind,
		EntityType: entityType,
		EntityID:   entityID,
		Payload:    raw,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}

// Recorder collects pending events on an entity. Embed by value; the zero
// value is ready to use.
type Recorder struct {
	pending []Event
}

// Record appends an event to the pending list.
func (r *Recorder) Record(e Event) {
	r.pending = append(r.pending, e)
}

// PendingEvents returns pending events in append order.
func (r *Recorder) PendingEvents() []Event {
	return r.pending
}

// ClearEvents drains the pending list and returns what was pending.
func (r *Recorder) ClearEvents() []Event {
	out := r.pending
	r.pending = nil
	return out
}
