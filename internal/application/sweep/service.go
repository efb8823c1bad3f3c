package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	appContract "github.com/estate-hub/estate-hub/internal/application/contract"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/isnad"
	"github.com/estate-hub/estate-hub/internal/domain/notification"
	"github.com/estate-hub/estate-hub/internal/domain/storage"
)

// DefaultInterval is the tick period when none is configured.
const DefaultInterval = 24 * time.Hour

// expiryHorizon is how far ahead of the end date a contract counts as
// expiring.
const expiryHorizon = 30 * 24 * time.Hour

// Locker is an optional advisory lock so only one sweeper instance runs a
// tick at a time. The sweep is idempotent without it; the lock only avoids
// duplicate work.
type Locker interface {
	// TryLock returns an unlock function when the lock was acquired, or
	// ok=false when another holder owns it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), ok bool, err error)
}

// Result reports what one sweep tick changed.
type Result struct {
	ContractsExpiring   int
	ContractsExpired    int
	InstallmentsOverdue int
	SLABreaches         int
	SubtaskErrors       []error
}

// Service is the scheduled reconciliation sweep: a single periodic pass that
// applies time-driven transitions across all three state machines. Each
// sub-task is independently retryable; a failure in one is logged and must
// not stop the others.
type Service struct {
	contractSvc *appContract.Service
	isnadRepo   isnad.Repository
	tx          storage.TxRunner
	auditSvc    *appAudit.Service
	dispatcher  notification.Dispatcher
	locker      Locker
	clock       clock.Clock
	logger      zerolog.Logger
}

// NewService creates a sweep service. locker may be nil.
func NewService(
	contractSvc *appContract.Service,
	isnadRepo isnad.Repository,
	tx storage.TxRunner,
	auditSvc *appAudit.Service,
	dispatcher notification.Dispatcher,
	locker Locker,
	clk clock.Clock,
	logger zerolog.Logger,
) *Service {
	return &Service{
		contractSvc: contractSvc,
		isnadRepo:   isnadRepo,
		tx:          tx,
		auditSvc:    auditSvc,
		dispatcher:  dispatcher,
		locker:      locker,
		clock:       clk,
		logger:      logger.With().Str("service", "sweep").Logger(),
	}
}

// Run executes one sweep tick. Re-running before the next scheduled tick is
// safe: every sub-task predicate re-checks current persisted state, so no
// transition is double-applied.
func (s *Service) Run(ctx context.Context) Result {
	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, "reconciliation-sweep", 10*time.Minute)
		if err != nil {
			s.logger.Warn().Err(err).Msg("sweep lock unavailable, proceeding unlocked")
		} else if !ok {
			s.logger.Info().Msg("sweep already running elsewhere, skipping tick")
			return Result{}
		} else {
			defer unlock()
		}
	}

	started := s.clock.Now()
	var res Result

	if err := s.expireContracts(ctx, &res); err != nil {
		res.SubtaskErrors = append(res.SubtaskErrors, err)
		s.logger.Error().Err(err).Msg("contract expiry sub-task failed")
	}
	if err := s.markOverdue(ctx, &res); err != nil {
		res.SubtaskErrors = append(res.SubtaskErrors, err)
		s.logger.Error().Err(err).Msg("installment overdue sub-task failed")
	}
	if err := s.breachSLAs(ctx, &res); err != nil {
		res.SubtaskErrors = append(res.SubtaskErrors, err)
		s.logger.Error().Err(err).Msg("isnad sla sub-task failed")
	}

	s.logger.Info().
		Int("contractsExpiring", res.ContractsExpiring).
		Int("contractsExpired", res.ContractsExpired).
		Int("installmentsOverdue", res.InstallmentsOverdue).
		Int("slaBreaches", res.SLABreaches).
		Int("subtaskErrors", len(res.SubtaskErrors)).
		Dur("took", s.clock.Now().Sub(started)).
		Msg("reconciliation sweep completed")
	return res
}

// RunLoop runs the sweep on a fixed interval until ctx is cancelled. One tick
// fires immediately on start.
func (s *Service) RunLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s.Run(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("sweep loop stopped")
			return
		case <-ticker.C:
			s.Run(ctx)
		}
	}
}

func (s *Service) expireContracts(ctx context.Context, res *Result) error {
	expiring, expired, err := s.contractSvc.ExpireContracts(ctx, expiryHorizon)
	if err != nil {
		return err
	}
	res.ContractsExpiring = expiring
	res.ContractsExpired = expired
	return nil
}

func (s *Service) markOverdue(ctx context.Context, res *Result) error {
	marked, err := s.contractSvc.MarkInstallmentsOverdue(ctx, nil)
	if err != nil {
		return err
	}
	res.InstallmentsOverdue = marked
	return nil
}

func (s *Service) breachSLAs(ctx context.Context, res *Result) error {
	now := s.clock.Now()
	forms, err := s.isnadRepo.ListSLAExpired(ctx, now, 500)
	if err != nil {
		return fmt.Errorf("list sla-expired forms: %w", err)
	}
	if len(forms) == 0 {
		return nil
	}

	breached := 0
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		breached = 0
		for _, f := range forms {
			if !f.MarkSLABreached(now) {
				continue
			}
			if err := s.isnadRepo.Update(ctx, f); err != nil {
				return err
			}
			if err := s.auditSvc.Append(ctx, isnad.EntityType, f.FormID.String(), "SLA_BREACHED", "system", map[string]string{
				"stage":    f.CurrentStage,
				"deadline": f.SLADeadline.Format(time.RFC3339),
			}, now); err != nil {
				return err
			}
			breached++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("mark sla breaches: %w", err)
	}

	var committed []event.Event
	for _, f := range forms {
		evs := f.ClearEvents()
		if len(evs) == 0 {
			continue
		}
		s.dispatcher.NotifyRole(ctx, "Admin", notification.TypeWarning,
			"ISNAD SLA breached",
			fmt.Sprintf("Form %s breached its SLA at stage %s.", f.ReferenceNumber, f.CurrentStage))
		committed = append(committed, evs...)
	}
	s.dispatcher.ProcessEvents(ctx, committed)

	res.SLABreaches = breached
	return nil
}
