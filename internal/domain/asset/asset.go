package asset

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

// EntityType is the audit/event entity label for assets.
const EntityType = "ASSET"

// Status represents asset review status.
type Status string

const (
	StatusDraft          Status = "DRAFT"
	StatusInReview       Status = "IN_REVIEW"
	StatusCompleted      Status = "COMPLETED"
	StatusRejected       Status = "REJECTED"
	StatusIncompleteBulk Status = "INCOMPLETE_BULK"
)

var (
	ErrNotFound      = errors.New("asset not found")
	ErrInvalidStatus = errors.New("invalid asset status")
)

// IsValid reports whether s is a recognized status. Any valid status is
// reachable from any other; the review workflow is deliberately permissive
// so administrators can reset or force states.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusCompleted, StatusRejected, StatusIncompleteBulk:
		return true
	}
	return false
}

// Asset represents a leasable government real-estate asset.
type Asset struct {
	event.Recorder

	ID                 int64      `json:"id"`
	AssetID            uuid.UUID  `json:"assetId"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	Status             Status     `json:"status"`
	VisibleToInvestors bool       `json:"visibleToInvestors"`
	RejectionReason    string     `json:"rejectionReason,omitempty"`
	CreatedBy          string     `json:"createdBy"`
	SubmittedAt        *time.Time `json:"submittedAt,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy          string     `json:"updatedBy,omitempty"`
}

// New creates an asset in Draft.
func New(code, name, createdBy string, now time.Time) *Asset {
	return &Asset{
		AssetID:   uuid.New(),
		Code:      code,
		Name:      name,
		Status:    StatusDraft,
		CreatedBy: createdBy,
		CreatedAt: now,
	}
}

// ApplyStatus moves the asset to target and applies the status-specific side
// effects. Visibility to investors is forced by status: only Completed assets
// are ever visible.
func (a *Asset) ApplyStatus(target Status, reason, actor string, now time.Time) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}

	a.Status = target
	switch target {
	case StatusInReview:
		a.SubmittedAt = &now
		a.Record(event.New(event.KindAssetSubmitted, EntityType, a.AssetID, actor, map[string]string{
			"code": a.Code,
		}))
	case StatusCompleted:
		a.CompletedAt = &now
		a.VisibleToInvestors = true
		a.Record(event.New(event.KindAssetApproved, EntityType, a.AssetID, actor, map[string]string{
			"code": a.Code,
		}))
	case StatusRejected:
		a.RejectionReason = reason
		a.VisibleToInvestors = false
		a.Record(event.New(event.KindAssetRejected, EntityType, a.AssetID, actor, map[string]string{
			"code":   a.Code,
			"reason": reason,
		}))
	case StatusDraft, StatusIncompleteBulk:
		// Administrative resets carry no domain event.
		a.VisibleToInvestors = false
	}

	a.UpdatedAt = &now
	a.UpdatedBy = actor
	return nil
}
