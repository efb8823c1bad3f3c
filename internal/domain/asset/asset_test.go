package asset

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

func TestNew(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	a := New("AST-001", "Riyadh North School", "owner-1", now)

	require.NotNil(t, a)
	assert.NotEqual(t, uuid.Nil, a.AssetID)
	assert.Equal(t, "AST-001", a.Code)
	assert.Equal(t, StatusDraft, a.Status)
	assert.False(t, a.VisibleToInvestors)
	assert.Equal(t, "owner-1", a.CreatedBy)
	assert.Equal(t, now, a.CreatedAt)
	assert.Empty(t, a.PendingEvents())
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
	}{
		{StatusDraft, true},
		{StatusInReview, true},
		{StatusCompleted, true},
		{StatusRejected, true},
		{StatusIncompleteBulk, true},
		{Status("ACTIVE"), false},
		{Status(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
		})
	}
}

func TestAsset_ApplyStatus_Submit(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := New("AST-001", "Riyadh North School", "owner-1", now)

	later := now.Add(time.Hour)
	err := a.ApplyStatus(StatusInReview, "", "owner-1", later)

	require.NoError(t, err)
	assert.Equal(t, StatusInReview, a.Status)
	require.NotNil(t, a.SubmittedAt)
	assert.Equal(t, later, *a.SubmittedAt)
	assert.False(t, a.VisibleToInvestors)
	require.NotNil(t, a.UpdatedAt)
	assert.Equal(t, "owner-1", a.UpdatedBy)

	events := a.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, event.KindAssetSubmitted, events[0].Kind)
	assert.Equal(t, a.AssetID, events[0].EntityID)
}

func TestAsset_ApplyStatus_Complete(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := New("AST-001", "Riyadh North School", "owner-1", now)
	require.NoError(t, a.ApplyStatus(StatusInReview, "", "owner-1", now))
	a.ClearEvents()

	err := a.ApplyStatus(StatusCompleted, "", "reviewer-1", now.Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, a.Status)
	assert.True(t, a.VisibleToInvestors)
	require.NotNil(t, a.CompletedAt)

	events := a.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, event.KindAssetApproved, events[0].Kind)
}

func TestAsset_ApplyStatus_Reject(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := New("AST-001", "Riyadh North School", "owner-1", now)
	require.NoError(t, a.ApplyStatus(StatusInReview, "", "owner-1", now))
	require.NoError(t, a.ApplyStatus(StatusCompleted, "", "reviewer-1", now))
	a.ClearEvents()

	err := a.ApplyStatus(StatusRejected, "missing deed documents", "reviewer-1", now)

	require.NoError(t, err)
	assert.Equal(t, StatusRejected, a.Status)
	assert.Equal(t, "missing deed documents", a.RejectionReason)
	assert.False(t, a.VisibleToInvestors, "rejection must hide the asset again")

	events := a.PendingEvents()
	require.Len(t, events, 1)
	assert.Equal(t, event.KindAssetRejected, events[0].Kind)
}

func TestAsset_ApplyStatus_AdministrativeReset(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := New("AST-001", "Riyadh North School", "owner-1", now)
	require.NoError(t, a.ApplyStatus(StatusCompleted, "", "admin", now))
	a.ClearEvents()

	err := a.ApplyStatus(StatusDraft, "", "admin", now)

	require.NoError(t, err)
	assert.Equal(t, StatusDraft, a.Status)
	assert.False(t, a.VisibleToInvestors)
	assert.Empty(t, a.PendingEvents(), "resets carry no domain event")
}

func TestAsset_ApplyStatus_InvalidTarget(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	a := New("AST-001", "Riyadh North School", "owner-1", now)

	err := a.ApplyStatus(Status("BOGUS"), "", "owner-1", now)

	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusDraft, a.Status)
}
