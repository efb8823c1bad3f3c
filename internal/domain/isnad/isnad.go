package isnad

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

// EntityType is the audit/event entity label for ISNAD forms.
const EntityType = "ISNAD_FORM"

// Status represents the governmental approval pipeline stage of a form.
type Status string

const (
	StatusDraft                  Status = "DRAFT"
	StatusPendingVerification    Status = "PENDING_VERIFICATION"
	StatusVerificationDue        Status = "VERIFICATION_DUE"
	StatusChangesRequested       Status = "CHANGES_REQUESTED"
	StatusVerifiedFilled         Status = "VERIFIED_FILLED"
	StatusInvestmentAgencyReview Status = "INVESTMENT_AGENCY_REVIEW"
	StatusInPackage              Status = "IN_PACKAGE"
	StatusPendingCeo             Status = "PENDING_CEO"
	StatusPendingMinister        Status = "PENDING_MINISTER"
	StatusApproved               Status = "APPROVED"
	StatusRejected               Status = "REJECTED"
	StatusCancelled              Status = "CANCELLED"
)

// SLAStatus tracks whether a form is inside its stage deadline.
type SLAStatus string

const (
	SLAOnTrack   SLAStatus = "on_track"
	SLABreached  SLAStatus = "breached"
	SLACompleted SLAStatus = "completed"
)

var (
	ErrNotFound      = errors.New("isnad form not found")
	ErrInvalidStatus = errors.New("invalid isnad status")
	ErrTerminal      = errors.New("isnad form is in a terminal status")
)

// defaultStageSLADays is the SLA reset applied by the generic stage-advance
// path, which has no status to key a lookup on.
const defaultStageSLADays = 5

// stageByStatus maps a status to the queue/role label used for routing.
var stageByStatus = map[Status]string{
	StatusDraft:                  "asset_owner",
	StatusPendingVerification:    "school_planning",
	StatusVerificationDue:        "school_planning",
	StatusChangesRequested:       "asset_owner",
	StatusVerifiedFilled:         "school_planning",
	StatusInvestmentAgencyReview: "asset_manager",
	StatusInPackage:              "asset_manager",
	StatusPendingCeo:             "ceo",
	StatusPendingMinister:        "minister",
	StatusApproved:               "completed",
	StatusRejected:               "rejected",
	StatusCancelled:              "cancelled",
}

// slaDaysByStatus maps a status to the number of days allowed in that stage.
// Statuses absent from the table leave the deadline in force unchanged.
var slaDaysByStatus = map[Status]int{
	StatusPendingVerification:    5,
	StatusVerificationDue:        2,
	StatusVerifiedFilled:         3,
	StatusInvestmentAgencyReview: 5,
	StatusPendingCeo:             7,
	StatusPendingMinister:        10,
}

// notifyRoleByStatus maps the new status to the role whose queue receives the
// form next.
var notifyRoleByStatus = map[Status]string{
	StatusPendingVerification:    "Reviewer",
	StatusInvestmentAgencyReview: "AssetManager",
	StatusPendingCeo:             "Admin",
	StatusPendingMinister:        "Admin",
}

// IsValid reports whether s is a recognized status.
func (s Status) IsValid() bool {
	_, ok := stageByStatus[s]
	return ok
}

// IsTerminal reports whether s ends the pipeline.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// StageFor returns the routing stage label for a status.
func StageFor(s Status) string {
	return stageByStatus[s]
}

// SLADaysFor returns the SLA allowance for a status, false when the status
// carries no deadline.
func SLADaysFor(s Status) (int, bool) {
	d, ok := slaDaysByStatus[s]
	return d, ok
}

// NotifyRoleFor returns the role to notify when a form enters a status.
// Defaults to Reviewer.
func NotifyRoleFor(s Status) string {
	if role, ok := notifyRoleByStatus[s]; ok {
		return role
	}
	return "Reviewer"
}

// Form represents an asset-linked ISNAD approval form.
type Form struct {
	event.Recorder

	ID                 int64      `json:"id"`
	FormID             uuid.UUID  `json:"formId"`
	ReferenceNumber    string     `json:"referenceNumber"`
	AssetID            uuid.UUID  `json:"assetId"`
	Status             Status     `json:"status"`
	CurrentStage       string     `json:"currentStage"`
	AssigneeID         *string    `json:"assigneeId,omitempty"`
	StepCount          int        `json:"stepCount"`
	SLADeadline        *time.Time `json:"slaDeadline,omitempty"`
	SLAStatus          SLAStatus  `json:"slaStatus"`
	ReturnCount        int        `json:"returnCount"`
	ReturnedByStage    string     `json:"returnedByStage,omitempty"`
	ReturnReason       string     `json:"returnReason,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancelledBy        string     `json:"cancelledBy,omitempty"`
	SubmittedBy        string     `json:"submittedBy"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}

// New creates a form in Draft for an asset.
func New(referenceNumber string, assetID uuid.UUID, submittedBy string, now time.Time) *Form {
	return &Form{
		FormID:          uuid.New(),
		ReferenceNumber: referenceNumber,
		AssetID:         assetID,
		Status:          StatusDraft,
		CurrentStage:    StageFor(StatusDraft),
		SLAStatus:       SLAOnTrack,
		SubmittedBy:     submittedBy,
		CreatedAt:       now,
	}
}

// Advance moves the form to target along the status-keyed path: stage and SLA
// deadline are derived from the lookup tables, return/terminal bookkeeping is
// applied, and a domain event is recorded.
func (f *Form) Advance(target Status, reason, performedBy string, now time.Time) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}
	if f.Status.IsTerminal() {
		return ErrTerminal
	}

	previous := f.Status
	f.Status = target
	f.CurrentStage = StageFor(target)

	// Statuses without an SLA allowance keep the deadline already in force;
	// a non-terminal form never loses its deadline once one is set.
	if days, ok := SLADaysFor(target); ok {
		deadline := now.AddDate(0, 0, days)
		f.SLADeadline = &deadline
		f.SLAStatus = SLAOnTrack
	}

	kind := event.KindIsnadAdvanced
	switch target {
	case StatusChangesRequested:
		f.ReturnCount++
		f.ReturnedByStage = string(previous)
		f.ReturnReason = reason
		kind = event.KindIsnadReturned
	case StatusApproved:
		f.CompletedAt = &now
		f.SLAStatus = SLACompleted
		kind = event.KindIsnadApproved
	case StatusRejected, StatusCancelled:
		f.CancellationReason = reason
		f.CancelledAt = &now
		f.CancelledBy = performedBy
		kind = event.KindIsnadRejected
		if target == StatusCancelled {
			kind = event.KindIsnadCancelled
		}
	}

	f.Record(event.New(kind, EntityType, f.FormID, performedBy, map[string]string{
		"referenceNumber": f.ReferenceNumber,
		"from":            string(previous),
		"to":              string(target),
		"reason":          reason,
	}))

	f.UpdatedAt = &now
	return nil
}

// AdvanceStage is the generic manual path: it sets a free-text stage label and
// optional assignee, bumps the step counter and resets a fixed SLA window. It
// does not touch the status.
func (f *Form) AdvanceStage(stage string, assigneeID *string, now time.Time) error {
	if f.Status.IsTerminal() {
		return ErrTerminal
	}

	f.CurrentStage = stage
	f.AssigneeID = assigneeID
	f.StepCount++
	deadline := now.AddDate(0, 0, defaultStageSLADays)
	f.SLADeadline = &deadline
	f.SLAStatus = SLAOnTrack

	f.Record(event.New(event.KindIsnadAdvanced, EntityType, f.FormID, "", map[string]string{
		"referenceNumber": f.ReferenceNumber,
		"stage":           stage,
	}))

	f.UpdatedAt = &now
	return nil
}

// MarkSLABreached flags the form as past its stage deadline. Terminal and
// already-breached forms are left untouched.
func (f *Form) MarkSLABreached(now time.Time) bool {
	if f.Status.IsTerminal() || f.SLAStatus == SLABreached {
		return false
	}
	if f.SLADeadline == nil || !f.SLADeadline.Before(now) {
		return false
	}
	f.SLAStatus = SLABreached
	f.UpdatedAt = &now
	f.Record(event.New(event.KindIsnadSLABreached, EntityType, f.FormID, "system", map[string]string{
		"referenceNumber": f.ReferenceNumber,
		"stage":           f.CurrentStage,
	}))
	return true
}
