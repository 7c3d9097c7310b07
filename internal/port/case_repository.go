package port

import (
	"context"

	"casepipe/internal/domain"
)

// CaseRepository defines the contract for master case persistence.
// Upserts key on the case key.
type CaseRepository interface {
	UpsertBatch(ctx context.Context, cases []domain.MasterCase) error
	GetByKey(ctx context.Context, caseKey string) (*domain.MasterCase, error)
	List(ctx context.Context, offset, limit int) ([]domain.MasterCase, int, error)
}

// TrackedCaseRepository defines the contract for ticket-tracking row
// persistence.
type TrackedCaseRepository interface {
	UpsertBatch(ctx context.Context, tracked []domain.TrackedCase) error
}
