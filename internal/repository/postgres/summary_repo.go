package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"casepipe/internal/domain"
	"casepipe/internal/port"
)

type summaryRepo struct {
	db *sqlx.DB
}

// NewSummaryRepo creates a new PostgreSQL-backed SummaryRepository.
func NewSummaryRepo(db *sqlx.DB) port.SummaryRepository {
	return &summaryRepo{db: db}
}

func (r *summaryRepo) Upsert(ctx context.Context, summary *domain.ReportSummary) error {
	query := `
		INSERT INTO report_summaries (
			id, document_id, source_file, period_start, period_end,
			pay_date, gross_pay, employee_number, created_at
		) VALUES (
			:id, :document_id, :source_file, :period_start, :period_end,
			:pay_date, :gross_pay, :employee_number, NOW()
		)
		ON CONFLICT (document_id) DO UPDATE SET
			source_file = EXCLUDED.source_file,
			period_start = EXCLUDED.period_start,
			period_end = EXCLUDED.period_end,
			pay_date = EXCLUDED.pay_date,
			gross_pay = EXCLUDED.gross_pay,
			employee_number = EXCLUDED.employee_number`

	if _, err := r.db.NamedExecContext(ctx, query, summary); err != nil {
		return fmt.Errorf("summaryRepo.Upsert: %w", err)
	}
	return nil
}

func (r *summaryRepo) GetByDocument(ctx context.Context, documentID uuid.UUID) (*domain.ReportSummary, error) {
	var s domain.ReportSummary
	err := r.db.GetContext(ctx, &s,
		"SELECT * FROM report_summaries WHERE document_id = $1", documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("summaryRepo.GetByDocument: %w", err)
	}
	return &s, nil
}
