package asset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/domain/asset"
	assetMocks "github.com/estate-hub/estate-hub/internal/domain/asset/mocks"
	auditMocks "github.com/estate-hub/estate-hub/internal/domain/audit/mocks"
	"github.com/estate-hub/estate-hub/internal/domain/audit"
	notificationMocks "github.com/estate-hub/estate-hub/internal/domain/notification/mocks"
	"github.com/estate-hub/estate-hub/internal/domain/storage"
)

func newTestService(repo *assetMocks.MockRepository, auditRepo *auditMocks.MockRepository, dispatcher *notificationMocks.MockDispatcher, clk clock.Clock) *Service {
	logger := zerolog.Nop()
	auditSvc := appAudit.NewService(auditRepo, logger)
	return NewService(repo, storage.NoTx, auditSvc, dispatcher, clk, logger)
}

func TestService_Create(t *testing.T) {
	repo := new(assetMocks.MockRepository)
	auditRepo := new(auditMocks.MockRepository)
	dispatcher := new(notificationMocks.MockDispatcher)
	clk := clock.NewFixed(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := newTestService(repo, auditRepo, dispatcher, clk)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*asset.Asset")).Return(nil)
	auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.EntityType == asset.EntityType && e.ActionType == "CREATE" && e.Actor == "owner-1"
	})).Return(nil)

	a, err := svc.Create(context.Background(), "AST-001", "Riyadh North School", "owner-1")

	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, asset.StatusDraft, a.Status)
	repo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestService_Transition(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("approve notifies creator and audits", func(t *testing.T) {
		repo := new(assetMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		clk := clock.NewFixed(now)
		svc := newTestService(repo, auditRepo, dispatcher, clk)

		a := asset.New("AST-001", "Riyadh North School", "owner-1", now)
		a.Status = asset.StatusInReview

		repo.On("GetByID", mock.Anything, a.AssetID).Return(a, nil)
		repo.On("Update", mock.Anything, a).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
			return e.ActionType == string(asset.StatusCompleted) && e.EntityID == a.AssetID.String()
		})).Return(nil)
		dispatcher.On("NotifyUser", mock.Anything, "owner-1", mock.Anything, "Asset approved", mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		got, err := svc.Transition(context.Background(), a.AssetID, asset.StatusCompleted, "", "reviewer-1")

		require.NoError(t, err)
		assert.Equal(t, asset.StatusCompleted, got.Status)
		assert.True(t, got.VisibleToInvestors)
		assert.Empty(t, got.PendingEvents(), "events are drained after dispatch")
		repo.AssertExpectations(t)
		auditRepo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("unknown asset", func(t *testing.T) {
		repo := new(assetMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(nil, nil)

		_, err := svc.Transition(context.Background(), id, asset.StatusInReview, "", "owner-1")

		assert.ErrorIs(t, err, asset.ErrNotFound)
	})

	t.Run("invalid target leaves asset untouched", func(t *testing.T) {
		repo := new(assetMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		a := asset.New("AST-001", "Riyadh North School", "owner-1", now)
		repo.On("GetByID", mock.Anything, a.AssetID).Return(a, nil)

		_, err := svc.Transition(context.Background(), a.AssetID, asset.Status("BOGUS"), "", "owner-1")

		assert.ErrorIs(t, err, asset.ErrInvalidStatus)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("load and persist share one transaction", func(t *testing.T) {
		repo := new(assetMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)

		inTx := false
		tx := storage.TxRunnerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
			inTx = true
			defer func() { inTx = false }()
			return fn(ctx)
		})
		auditSvc := appAudit.NewService(auditRepo, zerolog.Nop())
		svc := NewService(repo, tx, auditSvc, dispatcher, clock.NewFixed(now), zerolog.Nop())

		a := asset.New("AST-001", "Riyadh North School", "owner-1", now)
		repo.On("GetByID", mock.Anything, a.AssetID).Run(func(mock.Arguments) {
			assert.True(t, inTx, "load must join the mutation's transaction")
		}).Return(a, nil)
		repo.On("Update", mock.Anything, a).Run(func(mock.Arguments) {
			assert.True(t, inTx)
		}).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		dispatcher.On("NotifyUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		_, err := svc.Transition(context.Background(), a.AssetID, asset.StatusInReview, "", "owner-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("persistence failure skips notification", func(t *testing.T) {
		repo := new(assetMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		a := asset.New("AST-001", "Riyadh North School", "owner-1", now)
		repo.On("GetByID", mock.Anything, a.AssetID).Return(a, nil)
		repo.On("Update", mock.Anything, a).Return(errors.New("connection reset"))

		_, err := svc.Transition(context.Background(), a.AssetID, asset.StatusInReview, "", "owner-1")

		require.Error(t, err)
		dispatcher.AssertNotCalled(t, "NotifyUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
