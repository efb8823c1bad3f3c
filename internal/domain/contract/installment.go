package contract

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentStatus represents payment status of a single installment.
type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentOverdue InstallmentStatus = "OVERDUE"
	InstallmentPartial InstallmentStatus = "PARTIAL"
	InstallmentPaid    InstallmentStatus = "PAID"
)

// Installment is a single scheduled payment obligation. AmountDue and DueDate
// are immutable once the plan is generated; only status and payment fields
// mutate.
type Installment struct {
	ID               int64             `json:"id"`
	InstallmentID    uuid.UUID         `json:"installmentId"`
	ContractID       uuid.UUID         `json:"contractId"`
	Sequence         int               `json:"sequence"`
	AmountDue        decimal.Decimal   `json:"amountDue"`
	DueDate          time.Time         `json:"dueDate"`
	Status           InstallmentStatus `json:"status"`
	PaymentDate      *time.Time        `json:"paymentDate,omitempty"`
	PartialAmount    *decimal.Decimal  `json:"partialAmount,omitempty"`
	RemainingBalance *decimal.Decimal  `json:"remainingBalance,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
}

// GeneratePlan builds the installment plan for a contract: equal division of
// the total across count installments, due dates stepped from the start date
// by the billing period. The equal split is not reconciled back to the exact
// total; rounding drift across the plan stays within count × 0.01.
// Returns nil when the total or count make no plan possible; generation is a
// no-op in that case, not an error.
func GeneratePlan(c *Contract, now time.Time) []*Installment {
	if c.InstallmentCount <= 0 || !c.TotalAmount.IsPositive() {
		return nil
	}

	amount := c.TotalAmount.Div(decimal.NewFromInt(int64(c.InstallmentCount))).Round(2)
	months := c.InstallmentFrequency.Months()

	plan := make([]*Installment, 0, c.InstallmentCount)
	for i := 1; i <= c.InstallmentCount; i++ {
		plan = append(plan, &Installment{
			InstallmentID: uuid.New(),
			ContractID:    c.ContractID,
			Sequence:      i,
			AmountDue:     amount,
			DueDate:       c.StartDate.AddDate(0, months*i, 0),
			Status:        InstallmentPending,
			CreatedAt:     now,
		})
	}
	return plan
}

// MarkOverdue flags a pending installment whose due date passed. Returns false
// when the installment is not eligible, which keeps the overdue scan
// idempotent.
func (i *Installment) MarkOverdue(today time.Time) bool {
	if i.Status != InstallmentPending {
		return false
	}
	if !i.DueDate.Before(today) {
		return false
	}
	i.Status = InstallmentOverdue
	return true
}
