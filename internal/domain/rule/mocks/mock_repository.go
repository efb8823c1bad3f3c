package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/rule"
)

// MockRepository is a mock implementation of rule.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, r *rule.EscalationRule) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRepository) ListEnabledByKind(ctx context.Context, kind event.Kind) ([]*rule.EscalationRule, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*rule.EscalationRule), args.Error(1)
}
