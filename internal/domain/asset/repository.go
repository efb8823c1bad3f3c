package asset

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls asset listing.
type Filter struct {
	Status             *Status
	VisibleToInvestors *bool
}

// Repository defines persistence for assets.
type Repository interface {
	Create(ctx context.Context, a *Asset) error
	Update(ctx context.Context, a *Asset) error
	GetByID(ctx context.Context, assetID uuid.UUID) (*Asset, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Asset, error)
}
