package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter controls contract listing.
type Filter struct {
	Status     *Status
	AssetID    *uuid.UUID
	InvestorID *uuid.UUID
}

// Repository defines persistence for contracts and their installments.
type Repository interface {
	Create(ctx context.Context, c *Contract) error
	Update(ctx context.Context, c *Contract) error
	// GetByID loads a contract together with its installments ordered by
	// sequence.
	GetByID(ctx context.Context, contractID uuid.UUID) (*Contract, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Contract, error)

	CreateInstallments(ctx context.Context, installments []*Installment) error
	UpdateInstallment(ctx context.Context, i *Installment) error
	// ListDueInstallments returns pending installments due strictly before
	// today, optionally scoped to one contract.
	ListDueInstallments(ctx context.Context, contractID *uuid.UUID, today time.Time, limit int) ([]*Installment, error)

	// ListExpiringWithin returns active contracts whose end date falls after
	// today but no later than the horizon.
	ListExpiringWithin(ctx context.Context, today, horizon time.Time, limit int) ([]*Contract, error)
	// ListExpired returns active or expiring contracts whose end date is on or
	// before today.
	ListExpired(ctx context.Context, today time.Time, limit int) ([]*Contract, error)
}
