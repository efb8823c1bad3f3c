package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the delivery status of a notification.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Type classifies the notification for the client.
type Type string

const (
	TypeInfo    Type = "INFO"
	TypeAction  Type = "ACTION"
	TypeWarning Type = "WARNING"
)

// Priority represents the notification priority.
type Priority string

const (
	PriorityNormal Priority = "NORMAL"
	PriorityHigh   Priority = "HIGH"
)

var ErrInvalidTransition = errors.New("invalid notification status transition")

// Notification represents an internal notification addressed to a user or to
// every holder of a role. Exactly one of TargetUserID/TargetRole is set.
type Notification struct {
	ID             int64      `json:"id"`
	NotificationID uuid.UUID  `json:"notificationId"`
	TargetUserID   *string    `json:"targetUserId,omitempty"`
	TargetRole     *string    `json:"targetRole,omitempty"`
	Type           Type       `json:"type"`
	Priority       Priority   `json:"priority"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	ActionURL      *string    `json:"actionUrl,omitempty"`
	RelatedEntity  *string    `json:"relatedEntity,omitempty"`
	Status         Status     `json:"status"`
	LastError      *string    `json:"lastError,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	FailedAt       *time.Time `json:"failedAt,omitempty"`
}

// NewForUser creates a pending notification addressed to a single user.
func NewForUser(userID string, typ Type, title, message string) *Notification {
	return &Notification{
		NotificationID: uuid.New(),
		TargetUserID:   &userID,
		Type:           typ,
		Priority:       PriorityNormal,
		Title:          title,
		Message:        message,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
}

// NewForRole creates a pending notification addressed to a role queue.
func NewForRole(role string, typ Type, title, message string) *Notification {
	return &Notification{
		NotificationID: uuid.New(),
		TargetRole:     &role,
		Type:           typ,
		Priority:       PriorityNormal,
		Title:          title,
		Message:        message,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
}

// CanTransitionTo checks whether a delivery status transition is valid.
func (n *Notification) CanTransitionTo(target Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {StatusSent, StatusFailed},
		StatusSent:    {},
		StatusFailed:  {StatusSent}, // Retry
	}
	for _, s := range transitions[n.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// MarkSent marks the notification as delivered to its channel.
func (n *Notification) MarkSent() error {
	if !n.CanTransitionTo(StatusSent) {
		return ErrInvalidTransition
	}
	n.Status = StatusSent
	now := time.Now().UTC()
	n.SentAt = &now
	return nil
}

// MarkFailed records a delivery failure.
func (n *Notification) MarkFailed(errMsg string) error {
	if !n.CanTransitionTo(StatusFailed) {
		return ErrInvalidTransition
	}
	n.Status = StatusFailed
	now := time.Now().UTC()
	n.FailedAt = &now
	n.LastError = &errMsg
	return nil
}
