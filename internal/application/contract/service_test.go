package contract

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/domain/audit"
	auditMocks "github.com/estate-hub/estate-hub/internal/domain/audit/mocks"
	"github.com/estate-hub/estate-hub/internal/domain/contract"
	contractMocks "github.com/estate-hub/estate-hub/internal/domain/contract/mocks"
	notificationMocks "github.com/estate-hub/estate-hub/internal/domain/notification/mocks"
	"github.com/estate-hub/estate-hub/internal/domain/storage"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(repo *contractMocks.MockRepository, auditRepo *auditMocks.MockRepository, dispatcher *notificationMocks.MockDispatcher, clk clock.Clock) *Service {
	logger := zerolog.Nop()
	auditSvc := appAudit.NewService(auditRepo, logger)
	return NewService(repo, storage.NoTx, auditSvc, dispatcher, clk, logger)
}

func baseParams(start time.Time) CreateParams {
	return CreateParams{
		Code:                 "CNT-2025-042",
		AssetID:              uuid.New(),
		InvestorID:           uuid.New(),
		InvestorEmail:        "investor@example.com",
		AnnualAmount:         d("100000"),
		VATRate:              d("15"),
		DurationYears:        3,
		StartDate:            start,
		InstallmentCount:     4,
		InstallmentFrequency: contract.FrequencyQuarterly,
	}
}

func TestService_Create(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	repo := new(contractMocks.MockRepository)
	auditRepo := new(auditMocks.MockRepository)
	dispatcher := new(notificationMocks.MockDispatcher)
	svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

	repo.On("Create", mock.Anything, mock.AnythingOfType("*contract.Contract")).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.EntityType == contract.EntityType && e.ActionType == "CREATE" && e.Actor == "admin-1"
	})).Return(nil)

	c, err := svc.Create(context.Background(), baseParams(start), "admin-1")

	require.NoError(t, err)
	assert.Equal(t, contract.StatusDraft, c.Status)
	assert.True(t, c.TotalAmount.Equal(d("345000")), "annual 100000 at 15%% VAT over 3 years")
	assert.Equal(t, start.AddDate(3, 0, 0), c.EndDate)
	repo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestService_Transition(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	newContract := func() *contract.Contract {
		p := baseParams(start)
		return contract.New(p.Code, p.AssetID, p.InvestorID, p.InvestorEmail,
			p.AnnualAmount, p.VATRate, p.DurationYears, p.StartDate,
			p.InstallmentCount, p.InstallmentFrequency, now)
	}

	t.Run("activation generates the installment plan", func(t *testing.T) {
		repo := new(contractMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		c := newContract()
		repo.On("GetByID", mock.Anything, c.ContractID).Return(c, nil)
		repo.On("Update", mock.Anything, c).Return(nil)
		repo.On("CreateInstallments", mock.Anything, mock.MatchedBy(func(plan []*contract.Installment) bool {
			return len(plan) == 4 && plan[0].AmountDue.Equal(d("86250"))
		})).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		dispatcher.On("NotifyRole", mock.Anything, "Admin", mock.Anything, "Contract status changed", mock.Anything).Return()
		dispatcher.On("EmailInvestor", mock.Anything, "investor@example.com", "contract_activated", mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		got, err := svc.Transition(context.Background(), c.ContractID, contract.StatusActive, "", true, "admin-1")

		require.NoError(t, err)
		assert.Equal(t, contract.StatusActive, got.Status)
		require.Len(t, got.Installments, 4)
		assert.Equal(t, start.AddDate(0, 3, 0), got.Installments[0].DueDate)
		dispatcher.AssertExpectations(t)
	})

	t.Run("activation without plan generation", func(t *testing.T) {
		repo := new(contractMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		c := newContract()
		repo.On("GetByID", mock.Anything, c.ContractID).Return(c, nil)
		repo.On("Update", mock.Anything, c).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		dispatcher.On("NotifyRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("EmailInvestor", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		got, err := svc.Transition(context.Background(), c.ContractID, contract.StatusActive, "", false, "admin-1")

		require.NoError(t, err)
		assert.Empty(t, got.Installments)
		repo.AssertNotCalled(t, "CreateInstallments", mock.Anything, mock.Anything)
	})

	t.Run("cancellation records justification and emails investor", func(t *testing.T) {
		repo := new(contractMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		c := newContract()
		c.Status = contract.StatusActive
		repo.On("GetByID", mock.Anything, c.ContractID).Return(c, nil)
		repo.On("Update", mock.Anything, c).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		dispatcher.On("NotifyRole", mock.Anything, "Admin", mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("EmailInvestor", mock.Anything, "investor@example.com", "contract_cancelled", mock.MatchedBy(func(model map[string]interface{}) bool {
			return model["reason"] == "breach of terms"
		})).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		got, err := svc.Transition(context.Background(), c.ContractID, contract.StatusCancelled, "breach of terms", false, "admin-1")

		require.NoError(t, err)
		assert.Equal(t, "breach of terms", got.CancellationJustification)
		require.NotNil(t, got.CancelledAt)
		dispatcher.AssertExpectations(t)
	})

	t.Run("unknown contract", func(t *testing.T) {
		repo := new(contractMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(nil, nil)

		_, err := svc.Transition(context.Background(), id, contract.StatusActive, "", false, "admin-1")

		assert.ErrorIs(t, err, contract.ErrNotFound)
	})

	t.Run("invalid target status", func(t *testing.T) {
		repo := new(contractMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		c := newContract()
		repo.On("GetByID", mock.Anything, c.ContractID).Return(c, nil)

		_, err := svc.Transition(context.Background(), c.ContractID, contract.Status("FROZEN"), "", false, "admin-1")

		assert.ErrorIs(t, err, contract.ErrInvalidStatus)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestService_MarkInstallmentsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("flags pending installments past due and notifies", func(t *testing.T) {
		repo := new(contractMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		clk := clock.NewFixed(now)
		svc := newTestService(repo, auditRepo, dispatcher, clk)

		p := baseParams(start)
		c := contract.New(p.Code, p.AssetID, p.InvestorID, p.InvestorEmail,
			p.AnnualAmount, p.VATRate, p.DurationYears, p.StartDate,
			p.InstallmentCount, p.InstallmentFrequency, now)
		due := []*contract.Installment{
			{
				InstallmentID: uuid.New(),
				ContractID:    c.ContractID,
				Sequence:      1,
				AmountDue:     d("86250"),
				DueDate:       start.AddDate(0, 3, 0),
				Status:        contract.InstallmentPending,
			},
			{
				InstallmentID: uuid.New(),
				ContractID:    c.ContractID,
				Sequence:      2,
				AmountDue:     d("86250"),
				DueDate:       start.AddDate(0, 6, 0),
				Status:        contract.InstallmentPaid,
			},
		}

		repo.On("ListDueInstallments", mock.Anything, (*uuid.UUID)(nil), clk.Today(), 500).Return(due, nil)
		repo.On("UpdateInstallment", mock.Anything, due[0]).Return(nil)
		repo.On("GetByID", mock.Anything, c.ContractID).Return(c, nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
			return e.ActionType == "INSTALLMENT_OVERDUE"
		})).Return(nil)
		dispatcher.On("NotifyRole", mock.Anything, "ContractManager", mock.Anything, "Installment overdue", mock.Anything).Return()
		dispatcher.On("NotifyRole", mock.Anything, "Admin", mock.Anything, "Overdue installments", mock.Anything).Return()
		dispatcher.On("EmailInvestor", mock.Anything, "investor@example.com", "installment_overdue", mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		marked, err := svc.MarkInstallmentsOverdue(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, 1, marked, "paid installment is skipped")
		assert.Equal(t, contract.InstallmentOverdue, due[0].Status)
		assert.Equal(t, contract.InstallmentPaid, due[1].Status)
		dispatcher.AssertExpectations(t)
	})

	t.Run("nothing due is a no-op", func(t *testing.T) {
		repo := new(contractMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		clk := clock.NewFixed(now)
		svc := newTestService(repo, auditRepo, dispatcher, clk)

		repo.On("ListDueInstallments", mock.Anything, (*uuid.UUID)(nil), clk.Today(), 500).Return([]*contract.Installment{}, nil)

		marked, err := svc.MarkInstallmentsOverdue(context.Background(), nil)

		require.NoError(t, err)
		assert.Zero(t, marked)
		dispatcher.AssertNotCalled(t, "NotifyRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ExpireContracts(t *testing.T) {
	now := time.Date(2025, 6, 15, 2, 0, 0, 0, time.UTC)
	start := time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC)

	repo := new(contractMocks.MockRepository)
	auditRepo := new(auditMocks.MockRepository)
	dispatcher := new(notificationMocks.MockDispatcher)
	clk := clock.NewFixed(now)
	svc := newTestService(repo, auditRepo, dispatcher, clk)

	p := baseParams(start)
	soon := contract.New("CNT-SOON", p.AssetID, p.InvestorID, "soon@example.com",
		p.AnnualAmount, p.VATRate, 3, start, 0, contract.FrequencyAnnual, now)
	soon.Status = contract.StatusActive
	past := contract.New("CNT-PAST", p.AssetID, p.InvestorID, "past@example.com",
		p.AnnualAmount, p.VATRate, 2, start, 0, contract.FrequencyAnnual, now)
	past.Status = contract.StatusActive

	horizon := 30 * 24 * time.Hour
	today := clk.Today()
	repo.On("ListExpiringWithin", mock.Anything, today, today.Add(horizon), 500).
		Return([]*contract.Contract{soon}, nil)
	repo.On("ListExpired", mock.Anything, today, 500).
		Return([]*contract.Contract{past}, nil)
	repo.On("Update", mock.Anything, soon).Return(nil)
	repo.On("Update", mock.Anything, past).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
	dispatcher.On("NotifyRole", mock.Anything, "Admin", mock.Anything, "Contract expiring", mock.Anything).Return()
	dispatcher.On("NotifyRole", mock.Anything, "Admin", mock.Anything, "Contract expired", mock.Anything).Return()
	dispatcher.On("EmailInvestor", mock.Anything, "soon@example.com", "contract_expiring", mock.Anything).Return()

	expiring, expired, err := svc.ExpireContracts(context.Background(), horizon)

	require.NoError(t, err)
	assert.Equal(t, 1, expiring)
	assert.Equal(t, 1, expired)
	assert.Equal(t, contract.StatusExpiring, soon.Status)
	assert.Equal(t, contract.StatusExpired, past.Status)
	dispatcher.AssertExpectations(t)
}
