package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/estate-hub/estate-hub/internal/domain/audit"
)

// Service handles audit log operations.
type Service struct {
	repo   audit.Repository
	logger zerolog.Logger
}

// NewService creates a new audit service.
func NewService(repo audit.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "audit").Logger(),
	}
}

// Append writes an audit entry with the caller's context. When the context
// carries an open transaction the entry commits atomically with the entity
// mutation; the returned error rolls that transaction back.
func (s *Service) Append(ctx context.Context, entityType, entityID, actionType, actor string, changes interface{}, at time.Time) error {
	entry, err := audit.NewEntry(entityType, entityID, actionType, actor, changes, at)
	if err != nil {
		return fmt.Errorf("build audit entry: %w", err)
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	s.logger.Debug().
		Str("auditId", entry.AuditID.String()).
		Str("entityType", entry.EntityType).
		Str("entityId", entry.EntityID).
		Str("actionType", entry.ActionType).
		Str("actor", entry.Actor).
		Msg("audit entry appended")
	return nil
}

// EntityHistory retrieves the complete transition history for an entity.
func (s *Service) EntityHistory(ctx context.Context, entityType, entityID string, limit int) ([]*audit.Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	entries, err := s.repo.GetByEntity(ctx, entityType, entityID, limit)
	if err != nil {
		s.logger.Error().Err(err).
			Str("entityType", entityType).
			Str("entityId", entityID).
			Msg("failed to load entity history")
		return nil, fmt.Errorf("load entity history: %w", err)
	}
	return entries, nil
}
