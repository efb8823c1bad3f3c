package isnad

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appAudit "github.com/estate-hub/estate-hub/internal/application/audit"
	"github.com/estate-hub/estate-hub/internal/clock"
	"github.com/estate-hub/estate-hub/internal/domain/audit"
	auditMocks "github.com/estate-hub/estate-hub/internal/domain/audit/mocks"
	"github.com/estate-hub/estate-hub/internal/domain/isnad"
	isnadMocks "github.com/estate-hub/estate-hub/internal/domain/isnad/mocks"
	notificationMocks "github.com/estate-hub/estate-hub/internal/domain/notification/mocks"
	"github.com/estate-hub/estate-hub/internal/domain/storage"
)

func newTestService(repo *isnadMocks.MockRepository, auditRepo *auditMocks.MockRepository, dispatcher *notificationMocks.MockDispatcher, clk clock.Clock) *Service {
	logger := zerolog.Nop()
	auditSvc := appAudit.NewService(auditRepo, logger)
	return NewService(repo, storage.NoTx, auditSvc, dispatcher, clk, logger)
}

func TestService_Advance(t *testing.T) {
	now := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)

	t.Run("submit routes to reviewer queue with sla", func(t *testing.T) {
		repo := new(isnadMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		f := isnad.New("ISNAD-2025-001", uuid.New(), "owner-1", now)
		repo.On("GetByID", mock.Anything, f.FormID).Return(f, nil)
		repo.On("Update", mock.Anything, f).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
			return e.EntityType == isnad.EntityType && e.ActionType == string(isnad.StatusPendingVerification)
		})).Return(nil)
		dispatcher.On("NotifyRole", mock.Anything, "Reviewer", mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		got, err := svc.Advance(context.Background(), f.FormID, isnad.StatusPendingVerification, "", "owner-1")

		require.NoError(t, err)
		assert.Equal(t, isnad.StatusPendingVerification, got.Status)
		assert.Equal(t, "school_planning", got.CurrentStage)
		require.NotNil(t, got.SLADeadline)
		assert.Equal(t, now.AddDate(0, 0, 5), *got.SLADeadline)
		dispatcher.AssertExpectations(t)
	})

	t.Run("return notifies submitter", func(t *testing.T) {
		repo := new(isnadMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		f := isnad.New("ISNAD-2025-001", uuid.New(), "owner-1", now)
		f.Status = isnad.StatusPendingVerification
		repo.On("GetByID", mock.Anything, f.FormID).Return(f, nil)
		repo.On("Update", mock.Anything, f).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		dispatcher.On("NotifyRole", mock.Anything, "Reviewer", mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("NotifyUser", mock.Anything, "owner-1", mock.Anything, "ISNAD form returned", mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		got, err := svc.Advance(context.Background(), f.FormID, isnad.StatusChangesRequested, "missing photos", "reviewer-1")

		require.NoError(t, err)
		assert.Equal(t, 1, got.ReturnCount)
		assert.Equal(t, string(isnad.StatusPendingVerification), got.ReturnedByStage)
		dispatcher.AssertExpectations(t)
	})

	t.Run("terminal form refuses", func(t *testing.T) {
		repo := new(isnadMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		f := isnad.New("ISNAD-2025-001", uuid.New(), "owner-1", now)
		f.Status = isnad.StatusApproved
		repo.On("GetByID", mock.Anything, f.FormID).Return(f, nil)

		_, err := svc.Advance(context.Background(), f.FormID, isnad.StatusPendingVerification, "", "owner-1")

		assert.ErrorIs(t, err, isnad.ErrTerminal)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown form", func(t *testing.T) {
		repo := new(isnadMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(nil, nil)

		_, err := svc.Advance(context.Background(), id, isnad.StatusPendingVerification, "", "owner-1")

		assert.ErrorIs(t, err, isnad.ErrNotFound)
	})
}

func TestService_AdvanceStage(t *testing.T) {
	now := time.Date(2025, 4, 7, 9, 0, 0, 0, time.UTC)

	t.Run("assignee is notified", func(t *testing.T) {
		repo := new(isnadMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		f := isnad.New("ISNAD-2025-001", uuid.New(), "owner-1", now)
		repo.On("GetByID", mock.Anything, f.FormID).Return(f, nil)
		repo.On("Update", mock.Anything, f).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *audit.Entry) bool {
			return e.ActionType == "ADVANCE_STAGE"
		})).Return(nil)
		dispatcher.On("NotifyUser", mock.Anything, "qc-officer-3", mock.Anything, "ISNAD form assigned", mock.Anything, mock.Anything, mock.Anything).Return()
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		assignee := "qc-officer-3"
		got, err := svc.AdvanceStage(context.Background(), f.FormID, "quality_review", &assignee, "mgr-1")

		require.NoError(t, err)
		assert.Equal(t, "quality_review", got.CurrentStage)
		assert.Equal(t, 1, got.StepCount)
		assert.Equal(t, isnad.StatusDraft, got.Status, "status untouched on generic path")
		dispatcher.AssertExpectations(t)
	})

	t.Run("no assignee no user notification", func(t *testing.T) {
		repo := new(isnadMocks.MockRepository)
		auditRepo := new(auditMocks.MockRepository)
		dispatcher := new(notificationMocks.MockDispatcher)
		svc := newTestService(repo, auditRepo, dispatcher, clock.NewFixed(now))

		f := isnad.New("ISNAD-2025-001", uuid.New(), "owner-1", now)
		repo.On("GetByID", mock.Anything, f.FormID).Return(f, nil)
		repo.On("Update", mock.Anything, f).Return(nil)
		auditRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
		dispatcher.On("ProcessEvents", mock.Anything, mock.Anything).Return()

		_, err := svc.AdvanceStage(context.Background(), f.FormID, "legal_review", nil, "mgr-1")

		require.NoError(t, err)
		dispatcher.AssertNotCalled(t, "NotifyUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
