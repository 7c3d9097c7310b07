package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"casepipe/internal/domain"
	"casepipe/internal/port"
)

type trackedCaseRepo struct {
	db *sqlx.DB
}

// NewTrackedCaseRepo creates a new PostgreSQL-backed TrackedCaseRepository.
func NewTrackedCaseRepo(db *sqlx.DB) port.TrackedCaseRepository {
	return &trackedCaseRepo{db: db}
}

func (r *trackedCaseRepo) UpsertBatch(ctx context.Context, tracked []domain.TrackedCase) error {
	if len(tracked) == 0 {
		return nil
	}
	query := `
		INSERT INTO tracked_cases (
			id, document_id, case_id, case_type, date_closed,
			commission_earned, created_at
		) VALUES (
			:id, :document_id, :case_id, :case_type, :date_closed,
			:commission_earned, NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			case_id = EXCLUDED.case_id,
			case_type = EXCLUDED.case_type,
			date_closed = EXCLUDED.date_closed,
			commission_earned = EXCLUDED.commission_earned`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("trackedCaseRepo.UpsertBatch begin: %w", err)
	}
	defer tx.Rollback()

	for i := range tracked {
		if _, err := tx.NamedExecContext(ctx, query, &tracked[i]); err != nil {
			return fmt.Errorf("trackedCaseRepo.UpsertBatch %s: %w", tracked[i].CaseID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("trackedCaseRepo.UpsertBatch commit: %w", err)
	}
	return nil
}
