package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/estate-hub/estate-hub/internal/domain/contract"
)

// MockRepository is a mock implementation of contract.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, c *contract.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, contractID uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.Contract), args.Error(1)
}

func (m *MockRepository) CreateInstallments(ctx context.Context, installments []*contract.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockRepository) UpdateInstallment(ctx context.Context, i *contract.Installment) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockRepository) ListDueInstallments(ctx context.Context, contractID *uuid.UUID, today time.Time, limit int) ([]*contract.Installment, error) {
	args := m.Called(ctx, contractID, today, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.Installment), args.Error(1)
}

func (m *MockRepository) ListExpiringWithin(ctx context.Context, today, horizon time.Time, limit int) ([]*contract.Contract, error) {
	args := m.Called(ctx, today, horizon, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.Contract), args.Error(1)
}

func (m *MockRepository) ListExpired(ctx context.Context, today time.Time, limit int) ([]*contract.Contract, error) {
	args := m.Called(ctx, today, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*contract.Contract), args.Error(1)
}
