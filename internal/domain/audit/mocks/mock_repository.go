package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/estate-hub/estate-hub/internal/domain/audit"
)

// MockRepository is a mock implementation of audit.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Append(ctx context.Context, e *audit.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockRepository) GetByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*audit.Entry, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*audit.Entry), args.Error(1)
}
