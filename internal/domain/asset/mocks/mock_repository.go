package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/estate-hub/estate-hub/internal/domain/asset"
)

// MockRepository is a mock implementation of asset.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, a *asset.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, a *asset.Asset) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, assetID uuid.UUID) (*asset.Asset, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asset.Asset), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter asset.Filter, limit, offset int) ([]*asset.Asset, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*asset.Asset), args.Error(1)
}
