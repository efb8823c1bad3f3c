package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/domain/contract"
	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/notification"
	"github.com/estate-hub/estate-hub/internal/domain/storage"
)

// Service owns the contract and installment state machine.
type Service struct {
	repo       contract.Repository
	tx         storage.TxRunner
	auditSvc   *appAudit.Service
	dispatcher notification.Dispatcher
	clock      clock.Clock
	logger     zerolog.Logger
}

// NewService creates a contract service.
func NewService(
	repo contract.Repository,
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
		logger:     logger.With().Str("service", "contract").Logger(),
	}
}

// CreateParams holds the financial terms of a new contract.
type CreateParams struct {
	Code                 string
	AssetID              uuid.UUID
	InvestorID           uuid.UUID
	InvestorEmail        string
	AnnualAmount         decimal.Decimal
	VATRate              decimal.Decimal
	DurationYears        int
	StartDate            time.Time
	InstallmentCount     int
	InstallmentFrequency contract.Frequency
}

// Create issues a contract in Draft. The total amount is computed here once
// and never recomputed.
func (s *Service) Create(ctx context.Context, p CreateParams, actor string) (*contract.Contract, error) {
	now := s.clock.Now()
	c := contract.New(p.Code, p.AssetID, p.InvestorID, p.InvestorEmail,
		p.AnnualAmount, p.VATRate, p.DurationYears, p.StartDate,
		p.InstallmentCount, p.InstallmentFrequency, now)

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, c); err != nil {
			return err
		}
		return s.auditSvc.Append(ctx, contract.EntityType, c.ContractID.String(), "CREATE", actor, map[string]string{
			"code":        p.Code,
			"assetId":     p.AssetID.String(),
			"investorId":  p.InvestorID.String(),
			"totalAmount": c.TotalAmount.String(),
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}
	return c, nil
}

// Transition moves a contract to the target status. On activation with
// generateInstallments set and no existing installments, the installment plan
// is generated in the same transaction.
func (s *Service) Transition(ctx context.Context, contractID uuid.UUID, target contract.Status, reason string, generateInstallments bool, actor string) (*contract.Contract, error) {
	now := s.clock.Now()

	var c *contract.Contract
	var previous contract.Status
	var plan []*contract.Installment
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetByID(ctx, contractID)
		if err != nil {
			return err
		}
		if c == nil {
			return contract.ErrNotFound
		}
		previous = c.Status
		if err := c.ApplyStatus(target, reason, now); err != nil {
			return err
		}
		if target == contract.StatusActive && generateInstallments && len(c.Installments) == 0 {
			plan = contract.GeneratePlan(c, now)
		}
		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		if len(plan) > 0 {
			if err := s.repo.CreateInstallments(ctx, plan); err != nil {
				return err
			}
		}
		return s.auditSvc.Append(ctx, contract.EntityType, c.ContractID.String(), string(target), actor, map[string]string{
			"from":         string(previous),
			"to":           string(target),
			"reason":       reason,
			"installments": fmt.Sprintf("%d", len(plan)),
		}, now)
	})
	if err != nil {
		return nil, fmt.Errorf("transition contract %s: %w", contractID, err)
	}
	c.Installments = append(c.Installments, plan...)

	s.logger.Info().
		Str("contractId", contractID.String()).
		Str("from", string(previous)).
		Str("to", string(target)).
		Int("installmentsGenerated", len(plan)).
		Msg("contract transitioned")

	s.dispatch(ctx, c, target, reason, c.ClearEvents())
	return c, nil
}

// MarkInstallmentsOverdue scans pending installments past their due date,
// optionally scoped to one contract, and flags them Overdue. Returns the
// number of installments marked. The predicate re-checks persisted status, so
// repeated runs are idempotent.
func (s *Service) MarkInstallmentsOverdue(ctx context.Context, contractID *uuid.UUID) (int, error) {
	today := s.clock.Today()
	due, err := s.repo.ListDueInstallments(ctx, contractID, today, 500)
	if err != nil {
		return 0, fmt.Errorf("list due installments: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	marked := 0
	byContract := map[uuid.UUID][]*contract.Installment{}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, inst := range due {
			if !inst.MarkOverdue(today) {
				continue
			}
			if err := s.repo.UpdateInstallment(ctx, inst); err != nil {
				return err
			}
			if err := s.auditSvc.Append(ctx, contract.EntityType, inst.ContractID.String(), "INSTALLMENT_OVERDUE", "system", map[string]string{
				"installmentId": inst.InstallmentID.String(),
				"sequence":      fmt.Sprintf("%d", inst.Sequence),
				"amountDue":     inst.AmountDue.String(),
			}, s.clock.Now()); err != nil {
				return err
			}
			byContract[inst.ContractID] = append(byContract[inst.ContractID], inst)
			marked++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("mark installments overdue: %w", err)
	}

	for cid, insts := range byContract {
		s.notifyOverdue(ctx, cid, insts)
	}

	s.logger.Info().Int("marked", marked).Msg("overdue installments flagged")
	return marked, nil
}

// ExpireContracts applies the time-driven expiry windows: Active contracts
// ending within the horizon become Expiring, Active or Expiring contracts past
// their end date become Expired. These are direct field mutations; no
// installment or cancellation side effects apply. Returns (expiring, expired).
func (s *Service) ExpireContracts(ctx context.Context, horizon time.Duration) (int, int, error) {
	today := s.clock.Today()

	expiring, err := s.repo.ListExpiringWithin(ctx, today, today.Add(horizon), 500)
	if err != nil {
		return 0, 0, fmt.Errorf("list expiring contracts: %w", err)
	}
	expired, err := s.repo.ListExpired(ctx, today, 500)
	if err != nil {
		return 0, 0, fmt.Errorf("list expired contracts: %w", err)
	}
	if len(expiring) == 0 && len(expired) == 0 {
		return 0, 0, nil
	}

	now := s.clock.Now()
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, c := range expiring {
			c.Status = contract.StatusExpiring
			c.UpdatedAt = &now
			if err := s.repo.Update(ctx, c); err != nil {
				return err
			}
			if err := s.auditSvc.Append(ctx, contract.EntityType, c.ContractID.String(), string(contract.StatusExpiring), "system", map[string]string{
				"endDate": c.EndDate.Format("2006-01-02"),
			}, now); err != nil {
				return err
			}
		}
		for _, c := range expired {
			c.Status = contract.StatusExpired
			c.UpdatedAt = &now
			if err := s.repo.Update(ctx, c); err != nil {
				return err
			}
			if err := s.auditSvc.Append(ctx, contract.EntityType, c.ContractID.String(), string(contract.StatusExpired), "system", map[string]string{
				"endDate": c.EndDate.Format("2006-01-02"),
			}, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("expire contracts: %w", err)
	}

	for _, c := range expiring {
		s.dispatcher.NotifyRole(ctx, "Admin", notification.TypeWarning,
			"Contract expiring",
			fmt.Sprintf("Contract %s expires on %s.", c.Code, c.EndDate.Format("2006-01-02")))
		s.dispatcher.EmailInvestor(ctx, c.InvestorEmail, "contract_expiring", map[string]interface{}{
			"contractCode": c.Code,
			"endDate":      c.EndDate.Format("2006-01-02"),
		})
	}
	for _, c := range expired {
		s.dispatcher.NotifyRole(ctx, "Admin", notification.TypeWarning,
			"Contract expired",
			fmt.Sprintf("Contract %s expired on %s.", c.Code, c.EndDate.Format("2006-01-02")))
	}

	return len(expiring), len(expired), nil
}

// Get retrieves a contract with its installments.
func (s *Service) Get(ctx context.Context, contractID uuid.UUID) (*contract.Contract, error) {
	return s.repo.GetByID(ctx, contractID)
}

// List returns contracts matching a filter.
func (s *Service) List(ctx context.Context, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// dispatch always notifies the Admin role with a status-specific message;
// investors are reached by email only.
func (s *Service) dispatch(ctx context.Context, c *contract.Contract, target contract.Status, reason string, events []event.Event) {
	var msg string
	switch target {
	case contract.StatusActive:
		msg = fmt.Sprintf("Contract %s was activated with %d installments.", c.Code, len(c.Installments))
	case contract.StatusCancelled:
		msg = fmt.Sprintf("Contract %s was cancelled: %s", c.Code, reason)
	case contract.StatusArchived:
		msg = fmt.Sprintf("Contract %s was archived.", c.Code)
	default:
		msg = fmt.Sprintf("Contract %s moved to %s.", c.Code, target)
	}
	s.dispatcher.NotifyRole(ctx, "Admin", notification.TypeInfo, "Contract status changed", msg)

	switch target {
	case contract.StatusActive:
		s.dispatcher.EmailInvestor(ctx, c.InvestorEmail, "contract_activated", map[string]interface{}{
			"contractCode": c.Code,
			"totalAmount":  c.TotalAmount.String(),
			"startDate":    c.StartDate.Format("2006-01-02"),
			"endDate":      c.EndDate.Format("2006-01-02"),
		})
	case contract.StatusCancelled:
		s.dispatcher.EmailInvestor(ctx, c.InvestorEmail, "contract_cancelled", map[string]interface{}{
			"contractCode": c.Code,
			"reason":       reason,
		})
	}

	s.dispatcher.ProcessEvents(ctx, events)
}

func (s *Service) notifyOverdue(ctx context.Context, contractID uuid.UUID, insts []*contract.Installment) {
	c, err := s.repo.GetByID(ctx, contractID)
	if err != nil || c == nil {
		s.logger.Warn().Err(err).Str("contractId", contractID.String()).Msg("failed to load contract for overdue notice")
		return
	}

	events := make([]event.Event, 0, len(insts))
	for _, inst := range insts {
		s.dispatcher.NotifyRole(ctx, "ContractManager", notification.TypeWarning,
			"Installment overdue",
			fmt.Sprintf("Installment %d of contract %s (%s) is overdue since %s.",
				inst.Sequence, c.Code, inst.AmountDue.String(), inst.DueDate.Format("2006-01-02")))
		s.dispatcher.EmailInvestor(ctx, c.InvestorEmail, "installment_overdue", map[string]interface{}{
			"contractCode": c.Code,
			"sequence":     inst.Sequence,
			"amountDue":    inst.AmountDue.String(),
			"dueDate":      inst.DueDate.Format("2006-01-02"),
		})
		events = append(events, event.New(event.KindInstallmentOverdue, contract.EntityType, contractID, "system", map[string]interface{}{
			"installmentId": inst.InstallmentID.String(),
			"sequence":      inst.Sequence,
			"amountDue":     inst.AmountDue.InexactFloat64(),
		}))
	}
	s.dispatcher.NotifyRole(ctx, "Admin", notification.TypeWarning,
		"Overdue installments",
		fmt.Sprintf("Contract %s has %d overdue installment(s).", c.Code, len(insts)))
	s.dispatcher.ProcessEvents(ctx, events)
}
