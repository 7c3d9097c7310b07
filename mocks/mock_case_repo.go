package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"casepipe/internal/domain"
)

// MockCaseRepo is a mock implementation of port.CaseRepository.
type MockCaseRepo struct {
	mock.Mock
}

func (m *MockCaseRepo) UpsertBatch(ctx context.Context, cases []domain.MasterCase) error {
	args := m.Called(ctx, cases)
	return args.Error(0)
}

func (m *MockCaseRepo) GetByKey(ctx context.Context, caseKey string) (*domain.MasterCase, error) {
	args := m.Called(ctx, caseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MasterCase), args.Error(1)
}

func (m *MockCaseRepo) List(ctx context.Context, offset, limit int) ([]domain.MasterCase, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.MasterCase), args.Int(1), args.Error(2)
}

// MockTrackedCaseRepo is a mock implementation of port.TrackedCaseRepository.
type MockTrackedCaseRepo struct {
	mock.Mock
}

func (m *MockTrackedCaseRepo) UpsertBatch(ctx context.Context, tracked []domain.TrackedCase) error {
	args := m.Called(ctx, tracked)
	return args.Error(0)
}
