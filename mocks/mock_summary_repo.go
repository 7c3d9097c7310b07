package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"casepipe/internal/domain"
)

// MockSummaryRepo is a mock implementation of port.SummaryRepository.
type MockSummaryRepo struct {
	mock.Mock
}

func (m *MockSummaryRepo) Upsert(ctx context.Context, summary *domain.ReportSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

func (m *MockSummaryRepo) GetByDocument(ctx context.Context, documentID uuid.UUID) (*domain.ReportSummary, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportSummary), args.Error(1)
}
