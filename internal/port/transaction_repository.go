package port

import (
	"context"

	"github.com/google/uuid"

	"casepipe/internal/domain"
)

// TransactionRepository defines the contract for transaction record
// persistence. Upserts key on the record ID, which is derived
// deterministically from document and row position, so reprocessing a
// document never creates duplicate rows.
type TransactionRepository interface {
	UpsertBatch(ctx context.Context, records []domain.TransactionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TransactionRecord, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.TransactionRecord, error)
	ListAll(ctx context.Context) ([]domain.TransactionRecord, error)
}
