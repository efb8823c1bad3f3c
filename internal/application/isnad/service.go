package isnad

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/isnad"
	"github.com/estate-hub/estate-hub/internal/domain/notification"
	"github.com/estate-hub/estate-hub/internal/domain/storage"
)

// Service owns the ISNAD approval state machine. Two advancement paths
// coexist: Advance moves to a named status with table-derived stage and SLA,
// AdvanceStage is the generic manual path that sets a free-text stage label.
type Service struct {
	repo       isnad.Repository
	tx         storage.TxRunner
	auditSvc   *appAudit.Service
	dispatcher notification.Dispatcher
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewService creates an ISNAD service.
func NewService(
	repo isnad.Repository,
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
		logger:     logger.With().Str("service", "isnad").Logger(),
	}
}

// Create opens a form in Draft linked to an asset.
func (s *Service) Create(ctx context.Context, referenceNumber string, assetID uuid.UUID, submittedBy string) (*isnad.Form, error) {
	now := s.clock.Now()
	f := isnad.New(referenceNumber, assetID, submittedBy, now)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, f); err != nil {
			return err
		}
		return s.auditSvc.Append(ctx, isnad.EntityType, f.FormID.String(), "CREATE", submittedBy, map[string]string{
			"referenceNumber": referenceNumber,
			"assetId":         assetID.String(),
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("create isnad form: %w", err)
	}
	return f, nil
}

// Advance moves a form to the target status along the status-keyed path.
func (s *Service) Advance(ctx context.Context, formID uuid.UUID, target isnad.Status, reason, performedBy string) (*isnad.Form, error) {
	now := s.clock.Now()

	var f *isnad.Form
	var previous isnad.Status
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		f, err = s.repo.GetByID(ctx, formID)
		if err != nil {
			return err
		}
		if f == nil {
			return isnad.ErrNotFound
		}
		previous = f.Status
		if err := f.Advance(target, reason, performedBy, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}
		return s.auditSvc.Append(ctx, isnad.EntityType, f.FormID.String(), string(target), performedBy, map[string]string{
			"from":   string(previous),
			"to":     string(target),
			"stage":  f.CurrentStage,
			"reason": reason,
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("advance isnad form %s: %w", formID, err)
	}

	s.logger.Info().
		Str("formId", formID.String()).
		Str("from", string(previous)).
		Str("to", string(target)).
		Str("stage", f.CurrentStage).
		Str("actor", performedBy).
		Msg("isnad form advanced")

	s.dispatch(ctx, f, target, reason, f.ClearEvents())
	return f, nil
}

// AdvanceStage is the generic manual path: free-text stage label, optional
// assignee, step counter bump, fixed SLA reset.
func (s *Service) AdvanceStage(ctx context.Context, formID uuid.UUID, stage string, assigneeID *string, performedBy string) (*isnad.Form, error) {
	now := s.clock.Now()

	var f *isnad.Form
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		f, err = s.repo.GetByID(ctx, formID)
		if err != nil {
			return err
		}
		if f == nil {
			return isnad.ErrNotFound
		}
		if err := f.AdvanceStage(stage, assigneeID, now); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}
		return s.auditSvc.Append(ctx, isnad.EntityType, f.FormID.String(), "ADVANCE_STAGE", performedBy, map[string]string{
			"stage": stage,
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("advance isnad stage %s: %w", formID, err)
	}

	if assigneeID != nil {
		related := isnad.EntityType + ":" + f.FormID.String()
		s.dispatcher.NotifyUser(ctx, *assigneeID, notification.TypeAction,
			"ISNAD form assigned",
			fmt.Sprintf("Form %s moved to stage %s and was assigned to you.", f.ReferenceNumber, stage),
			nil, &related)
	}
	s.dispatcher.ProcessEvents(ctx, f.ClearEvents())
	return f, nil
}

// Get retrieves a form by ID.
func (s *Service) Get(ctx context.Context, formID uuid.UUID) (*isnad.Form, error) {
	return s.repo.GetByID(ctx, formID)
}

// List returns forms matching a filter.
func (s *Service) List(ctx context.Context, filter isnad.Filter, limit, offset int) ([]*isnad.Form, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// dispatch routes the stage notification to the role that owns the new status,
// and additionally to the original submitter on return/terminal outcomes.
func (s *Service) dispatch(ctx context.Context, f *isnad.Form, target isnad.Status, reason string, events []event.Event) {
	related := isnad.EntityType + ":" + f.FormID.String()

	s.dispatcher.NotifyRole(ctx, isnad.NotifyRoleFor(target), notification.TypeAction,
		"ISNAD form awaiting action",
		fmt.Sprintf("Form %s entered %s (stage %s).", f.ReferenceNumber, target, f.CurrentStage))

	switch target {
	case isnad.StatusChangesRequested:
		s.dispatcher.NotifyUser(ctx, f.SubmittedBy, notification.TypeAction,
			"ISNAD form returned",
			fmt.Sprintf("Form %s was returned from %s: %s", f.ReferenceNumber, f.ReturnedByStage, reason),
			nil, &related)
	case isnad.StatusApproved:
		s.dispatcher.NotifyUser(ctx, f.SubmittedBy, notification.TypeInfo,
			"ISNAD form approved",
			fmt.Sprintf("Form %s completed the approval pipeline.", f.ReferenceNumber),
			nil, &related)
	case isnad.StatusRejected:
		s.dispatcher.NotifyUser(ctx, f.SubmittedBy, notification.TypeWarning,
			"ISNAD form rejected",
			fmt.Sprintf("Form %s was rejected: %s", f.ReferenceNumber, reason),
			nil, &related)
	}

	s.dispatcher.ProcessEvents(ctx, events)
}
