package asset

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/domain/asset"
	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/notification"
	"github.com/estate-hub/estate-hub/internal/domain/storage"
)

// Service owns the asset state machine. All status mutation routes through
// Transition; other subsystems read assets but never write status directly.
type Service struct {
	repo       asset.Repository
	tx         storage.TxRunner
	auditSvc   *appAudit.Service
	dispatcher notification.Dispatcher
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewService creates an asset service.
func NewService(
	repo asset.Repository,
	tx storage.TxRunner,
	auditSvc *appAudit.Service,
	dispatcher notification.Dispatcher,
	clk clock.Clock,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		tx:         tx,
		auditSvc:   auditSvc,
		dispatcher: dispatcher,
		clock:      clk,
		logger:     logger.With().Str("service", "asset").Logger(),
	}
}

// Create registers an asset in Draft.
func (s *Service) Create(ctx context.Context, code, name, createdBy string) (*asset.Asset, error) {
	now := s.clock.Now()
	a := asset.New(code, name, createdBy, now)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, a); err != nil {
			return err
		}
		return s.auditSvc.Append(ctx, asset.EntityType, a.AssetID.String(), "CREATE", createdBy, map[string]string{
			"code": code,
			"name": name,
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return a, nil
}

// Transition moves an asset to the target status and applies the
// status-specific side effects. The mutation and its audit row commit in one
// transaction; notifications are dispatched afterwards and cannot fail the
// transition.
func (s *Service) Transition(ctx context.Context, assetID uuid.UUID, target asset.Status, reason, actor string) (*asset.Asset, error) {
	now := s.clock.Now()

	var a *asset.Asset
	var previous asset.Status
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		a, err = s.repo.GetByID(ctx, assetID)
		if err != nil {
			return err
		}
		if a == nil {
			return asset.ErrNotFound
		}
		previous = a.Status
		if err := a.ApplyStatus(target, reason, actor, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		return s.auditSvc.Append(ctx, asset.EntityType, a.AssetID.String(), string(target), actor, map[string]string{
			"from":   string(previous),
			"to":     string(target),
			"reason": reason,
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("transition asset %s: %w", assetID, err)
	}

	s.logger.Info().
		Str("assetId", assetID.String()).
		Str("from", string(previous)).
		Str("to", string(target)).
		Str("actor", actor).
		Msg("asset transitioned")

	s.dispatch(ctx, a, a.ClearEvents())
	return a, nil
}

// Get retrieves an asset by ID.
func (s *Service) Get(ctx context.Context, assetID uuid.UUID) (*asset.Asset, error) {
	return s.repo.GetByID(ctx, assetID)
}

// List returns assets matching a filter.
func (s *Service) List(ctx context.Context, filter asset.Filter, limit, offset int) ([]*asset.Asset, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// dispatch notifies the asset creator about review outcomes.
func (s *Service) dispatch(ctx context.Context, a *asset.Asset, events []event.Event) {
	related := asset.EntityType + ":" + a.AssetID.String()
	for _, e := range events {
		switch e.Kind {
		case event.KindAssetSubmitted:
			s.dispatcher.NotifyUser(ctx, a.CreatedBy, notification.TypeInfo,
				"Asset submitted for review",
				fmt.Sprintf("Asset %s (%s) was submitted for review.", a.Name, a.Code),
				nil, &related)
		case event.KindAssetApproved:
			s.dispatcher.NotifyUser(ctx, a.CreatedBy, notification.TypeInfo,
				"Asset approved",
				fmt.Sprintf("Asset %s (%s) was approved and is now visible to investors.", a.Name, a.Code),
				nil, &related)
		case event.KindAssetRejected:
			s.dispatcher.NotifyUser(ctx, a.CreatedBy, notification.TypeWarning,
				"Asset rejected",
				fmt.Sprintf("Asset %s (%s) was rejected: %s", a.Name, a.Code, a.RejectionReason),
				nil, &related)
		}
	}
	s.dispatcher.ProcessEvents(ctx, events)
}
