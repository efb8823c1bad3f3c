package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

// Filter represents filters for querying notifications.
type Filter struct {
	TargetUserID *string
	TargetRole   *string
	Status       *Status
}

// Repository defines the interface for notification persistence.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, notificationID uuid.UUID) (*Notification, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Notification, error)
}

// Dispatcher is the fire-and-forget contract state machines depend on. It is
// invoked strictly after the state-mutating transaction commits.
// Implementations must swallow delivery failures: they are logged, never
// returned, and never roll back the transition that produced them.
type Dispatcher interface {
	NotifyUser(ctx context.Context, userID string, typ Type, title, message string, actionURL, relatedEntity *string)
	NotifyRole(ctx context.Context, role string, typ Type, title, message string)
	// EmailInvestor sends a templated notice to an external investor address.
	EmailInvestor(ctx context.Context, toAddress, templateKey string, model map[string]interface{})
	// ProcessEvents runs committed domain events through the escalation rules.
	ProcessEvents(ctx context.Context, events []event.Event)
}

// Mailer sends templated email to external recipients (investors have no
// internal account; email is their only channel). Errors must not fail the
// caller.
type Mailer interface {
	SendTemplated(ctx context.Context, toAddress, templateKey string, model map[string]interface{}) error
}
