package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"casepipe/internal/domain"
)

// MockRuleRepo is a mock implementation of port.RuleRepository.
type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) List(ctx context.Context) ([]domain.TemporalRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TemporalRule), args.Error(1)
}

func (m *MockRuleRepo) Upsert(ctx context.Context, rule *domain.TemporalRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepo) DeleteByEffectiveDate(ctx context.Context, effectiveDate time.Time) error {
	args := m.Called(ctx, effectiveDate)
	return args.Error(0)
}
