package contract

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/estate-hub/estate-hub/internal/domain/event"
)

// EntityType is the audit/event entity label for contracts.
const EntityType = "CONTRACT"

// Status represents contract lifecycle status.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusIncomplete Status = "INCOMPLETE"
	StatusActive     Status = "ACTIVE"
	StatusExpiring   Status = "EXPIRING"
	StatusExpired    Status = "EXPIRED"
	StatusCompleted  Status = "COMPLETED"
	StatusArchived   Status = "ARCHIVED"
	StatusCancelled  Status = "CANCELLED"
)

// Frequency represents installment billing frequency.
type Frequency string

const (
	FrequencyMonthly    Frequency = "MONTHLY"
	FrequencyQuarterly  Frequency = "QUARTERLY"
	FrequencySemiAnnual Frequency = "SEMI_ANNUAL"
	FrequencyAnnual     Frequency = "ANNUAL"
)

var (
	ErrNotFound      = errors.New("contract not found")
	ErrInvalidStatus = errors.New("invalid contract status")
)

// IsValid reports whether s is a recognized status. As with assets, the
// contract workflow enforces enum membership only; any status is reachable
// from any other.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusIncomplete, StatusActive, StatusExpiring,
		StatusExpired, StatusCompleted, StatusArchived, StatusCancelled:
		return true
	}
	return false
}

// Months returns the billing period length in months. Unset frequency
// defaults to monthly.
func (f Frequency) Months() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencySemiAnnual:
		return 6
	case FrequencyAnnual:
		return 12
	default:
		return 1
	}
}

// Contract represents an investor lease over an asset. Financial terms are
// computed once at creation and never mutated afterwards.
type Contract struct {
	event.Recorder

	ID                      int64           `json:"id"`
	ContractID              uuid.UUID       `json:"contractId"`
	Code                    string          `json:"code"`
	AssetID                 uuid.UUID       `json:"assetId"`
	InvestorID              uuid.UUID       `json:"investorId"`
	InvestorEmail           string          `json:"investorEmail"`
	Status                  Status          `json:"status"`
	AnnualAmount            decimal.Decimal `json:"annualAmount"`
	VATRate                 decimal.Decimal `json:"vatRate"`
	DurationYears           int             `json:"durationYears"`
	TotalAmount             decimal.Decimal `json:"totalAmount"`
	StartDate               time.Time       `json:"startDate"`
	EndDate                 time.Time       `json:"endDate"`
	InstallmentCount        int             `json:"installmentCount,omitempty"`
	InstallmentFrequency    Frequency       `json:"installmentFrequency,omitempty"`
	CancellationJustification string        `json:"cancellationJustification,omitempty"`
	CancelledAt             *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               *time.Time      `json:"updatedAt,omitempty"`

	Installments []*Installment `json:"installments,omitempty"`
}

// TotalAmountFor computes annual × (1 + vat/100) × years.
func TotalAmountFor(annual decimal.Decimal, vatRate decimal.Decimal, durationYears int) decimal.Decimal {
	vatFactor := decimal.NewFromInt(1).Add(vatRate.Div(decimal.NewFromInt(100)))
	return annual.Mul(vatFactor).Mul(decimal.NewFromInt(int64(durationYears)))
}

// New creates a contract in Draft with its immutable total computed from the
// financial terms. End date is start + duration years.
func New(code string, assetID, investorID uuid.UUID, investorEmail string,
	annual, vatRate decimal.Decimal, durationYears int,
	startDate time.Time, installmentCount int, frequency Frequency, now time.Time) *Contract {
	return &Contract{
		ContractID:           uuid.New(),
		Code:                 code,
		AssetID:              assetID,
		InvestorID:           investorID,
		InvestorEmail:        investorEmail,
		Status:               StatusDraft,
		AnnualAmount:         annual,
		VATRate:              vatRate,
		DurationYears:        durationYears,
		TotalAmount:          TotalAmountFor(annual, vatRate, durationYears),
		StartDate:            startDate,
		EndDate:              startDate.AddDate(durationYears, 0, 0),
		InstallmentCount:     installmentCount,
		InstallmentFrequency: frequency,
		CreatedAt:            now,
	}
}

// ApplyStatus moves the contract to target and applies status-specific side
// effects. Installment generation is handled by the caller before activation
// is persisted.
func (c *Contract) ApplyStatus(target Status, reason string, now time.Time) error {
	if !target.IsValid() {
		return ErrInvalidStatus
	}

	previous := c.Status
	c.Status = target

	kind := event.KindContractUpdated
	switch target {
	case StatusActive:
		kind = event.KindContractActivated
	case StatusExpiring:
		kind = event.KindContractExpiring
	case StatusExpired:
		kind = event.KindContractExpired
	case StatusCancelled, StatusArchived:
		c.CancellationJustification = reason
		c.CancelledAt = &now
		kind = event.KindContractCancelled
		if target == StatusArchived {
			kind = event.KindContractArchived
		}
	}

	c.Record(event.New(kind, EntityType, c.ContractID, "", map[string]string{
		"code": c.Code,
		"from": string(previous),
		"to":   string(target),
	}))

	c.UpdatedAt = &now
	return nil
}
