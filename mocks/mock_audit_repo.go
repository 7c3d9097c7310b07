package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"casepipe/internal/audit"
)

// MockAuditRepo is a mock implementation of port.AuditRepository.
type MockAuditRepo struct {
	mock.Mock
}

func (m *MockAuditRepo) CreateBatch(ctx context.Context, events []audit.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockAuditRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]audit.Event, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]audit.Event), args.Error(1)
}
