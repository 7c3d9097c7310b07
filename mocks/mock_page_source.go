package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"casepipe/internal/port"
)

// MockPageSource is a mock implementation of port.PageSource.
type MockPageSource struct {
	mock.Mock
}

func (m *MockPageSource) List(ctx context.Context) ([]port.SourceDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.SourceDocument), args.Error(1)
}
