package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/notification"
	"github.com/estate-hub/estate-hub/internal/domain/rule"
)

// Service is the notification dispatcher: it persists user/role notifications,
// sends investor email, and runs committed domain events through the
// escalation rules. Every method is fire-and-forget — failures are logged at
// warning level and never surface to the transition that triggered them.
type Service struct {
	repo     notification.Repository
	ruleRepo rule.Repository
	mailer   notification.Mailer
	logger   zerolog.Logger
}

var _ notification.Dispatcher = (*Service)(nil)

// NewService creates a notification dispatcher. ruleRepo and mailer may be nil
// when escalation rules or email are not configured.
func NewService(repo notification.Repository, ruleRepo rule.Repository, mailer notification.Mailer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		ruleRepo: ruleRepo,
		mailer:   mailer,
		logger:   logger.With().Str("service", "notify").Logger(),
	}
}

// NotifyUser enqueues a notification for a single user.
func (s *Service) NotifyUser(ctx context.Context, userID string, typ notification.Type, title, message string, actionURL, relatedEntity *string) {
	n := notification.NewForUser(userID, typ, title, message)
	n.ActionURL = actionURL
	n.RelatedEntity = relatedEntity
	s.deliver(ctx, n)
}

// NotifyRole enqueues a notification for every holder of a role.
func (s *Service) NotifyRole(ctx context.Context, role string, typ notification.Type, title, message string) {
	s.deliver(ctx, notification.NewForRole(role, typ, title, message))
}

// EmailInvestor sends a templated notice to an external investor address.
func (s *Service) EmailInvestor(ctx context.Context, toAddress, templateKey string, model map[string]interface{}) {
	if s.mailer == nil || toAddress == "" {
		return
	}
	if err := s.mailer.SendTemplated(ctx, toAddress, templateKey, model); err != nil {
		s.logger.Warn().Err(err).
			Str("to", toAddress).
			Str("template", templateKey).
			Msg("investor email delivery failed")
	}
}

// ProcessEvents evaluates escalation rules against committed domain events.
// A matching rule raises a high-priority Admin notification. Broken rules are
// logged and treated as no-match.
func (s *Service) ProcessEvents(ctx context.Context, events []event.Event) {
	if s.ruleRepo == nil {
		return
	}
	for _, e := range events {
		rules, err := s.ruleRepo.ListEnabledByKind(ctx, e.Kind)
		if err != nil {
			s.logger.Warn().Err(err).Str("kind", string(e.Kind)).Msg("failed to load escalation rules")
			continue
		}
		for _, r := range rules {
			matched, err := r.Matches(e.Payload)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("rule", r.Name).
					Str("kind", string(e.Kind)).
					Msg("escalation rule evaluation failed")
				continue
			}
			if !matched {
				continue
			}
			n := notification.NewForRole("Admin", notification.TypeWarning,
				fmt.Sprintf("Escalation: %s", r.Name),
				fmt.Sprintf("Event %s on %s %s matched escalation rule %q", e.Kind, e.EntityType, e.EntityID, r.Name))
			n.Priority = notification.PriorityHigh
			s.deliver(ctx, n)
		}
	}
}

// List returns persisted notifications matching the filter.
func (s *Service) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.Notification, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// Get returns a single notification, or nil when none exists.
func (s *Service) Get(ctx context.Context, notificationID uuid.UUID) (*notification.Notification, error) {
	return s.repo.GetByID(ctx, notificationID)
}

func (s *Service) deliver(ctx context.Context, n *notification.Notification) {
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Warn().Err(err).
			Str("title", n.Title).
			Msg("failed to persist notification")
		return
	}
	// Persisted rows are the internal channel; marking sent records that the
	// row reached it.
	if err := n.MarkSent(); err == nil {
		if err := s.repo.Update(ctx, n); err != nil {
			s.logger.Warn().Err(err).
				Str("notificationId", n.NotificationID.String()).
				Msg("failed to update notification status")
		}
	}
}
