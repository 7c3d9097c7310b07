package port

import (
	"context"

	"github.com/google/uuid"

	"casepipe/internal/domain"
)

// SummaryRepository defines the contract for report summary persistence.
type SummaryRepository interface {
	Upsert(ctx context.Context, summary *domain.ReportSummary) error
	GetByDocument(ctx context.Context, documentID uuid.UUID) (*domain.ReportSummary, error)
}
