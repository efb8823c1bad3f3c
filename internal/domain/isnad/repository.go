package isnad

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter controls form listing.
type Filter struct {
	Status    *Status
	AssetID   *uuid.UUID
	SLAStatus *SLAStatus
	Stage     *string
}

// Repository defines persistence for ISNAD forms.
type Repository interface {
	Create(ctx context.Context, f *Form) error
	Update(ctx context.Context, f *Form) error
	GetByID(ctx context.Context, formID uuid.UUID) (*Form, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Form, error)

	// ListSLAExpired returns non-terminal, not-yet-breached forms whose
	// deadline passed before now.
	ListSLAExpired(ctx context.Context, now time.Time, limit int) ([]*Form, error)
}
