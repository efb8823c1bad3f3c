package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/estate-hub/estate-hub/internal/domain/event"
	"github.com/estate-hub/estate-hub/internal/domain/notification"
)

// MockRepository is a mock implementation of notification.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, notificationID uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, notificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.Notification, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

// MockDispatcher is a mock implementation of notification.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) NotifyUser(ctx context.Context, userID string, typ notification.Type, title, message string, actionURL, relatedEntity *string) {
	m.Called(ctx, userID, typ, title, message, actionURL, relatedEntity)
}

func (m *MockDispatcher) NotifyRole(ctx context.Context, role string, typ notification.Type, title, message string) {
	m.Called(ctx, role, typ, title, message)
}

func (m *MockDispatcher) EmailInvestor(ctx context.Context, toAddress, templateKey string, model map[string]interface{}) {
	m.Called(ctx, toAddress, templateKey, model)
}

func (m *MockDispatcher) ProcessEvents(ctx context.Context, events []event.Event) {
	m.Called(ctx, events)
}

// MockMailer is a mock implementation of notification.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendTemplated(ctx context.Context, toAddress, templateKey string, model map[string]interface{}) error {
	args := m.Called(ctx, toAddress, templateKey, model)
	return args.Error(0)
}
