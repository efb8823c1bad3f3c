package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/estate-hub/estate-hub/internal/domain/isnad"
)

// MockRepository is a mock implementation of isnad.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, f *isnad.Form) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, f *isnad.Form) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, formID uuid.UUID) (*isnad.Form, error) {
	args := m.Called(ctx, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*isnad.Form), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter isnad.Filter, limit, offset int) ([]*isnad.Form, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*isnad.Form), args.Error(1)
}

func (m *MockRepository) ListSLAExpired(ctx context.Context, now time.Time, limit int) ([]*isnad.Form, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*isnad.Form), args.Error(1)
}
