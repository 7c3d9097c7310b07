package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"casepipe/internal/domain"
	"casepipe/internal/port"
)

type caseRepo struct {
	db *sqlx.DB
}

// NewCaseRepo creates a new PostgreSQL-backed CaseRepository.
func NewCaseRepo(db *sqlx.DB) port.CaseRepository {
	return &caseRepo{db: db}
}

func (r *caseRepo) UpsertBatch(ctx context.Context, cases []domain.MasterCase) error {
	if len(cases) == 0 {
		return nil
	}
	query := `
		INSERT INTO master_cases (
			id, case_key, initial_identifier, final_identifier,
			service_date, initial_start_time, procedure_codes,
			total_anes_time, total_anes_base_units, total_med_base_units,
			total_other_units, derived_score, record_identifiers,
			created_at, updated_at
		) VALUES (
			:id, :case_key, :initial_identifier, :final_identifier,
			:service_date, :initial_start_time, :procedure_codes,
			:total_anes_time, :total_anes_base_units, :total_med_base_units,
			:total_other_units, :derived_score, :record_identifiers,
			NOW(), NOW()
		)
		ON CONFLICT (case_key) DO UPDATE SET
			initial_identifier = EXCLUDED.initial_identifier,
			final_identifier = EXCLUDED.final_identifier,
			service_date = EXCLUDED.service_date,
			initial_start_time = EXCLUDED.initial_start_time,
			procedure_codes = EXCLUDED.procedure_codes,
			total_anes_time = EXCLUDED.total_anes_time,
			total_anes_base_units = EXCLUDED.total_anes_base_units,
			total_med_base_units = EXCLUDED.total_med_base_units,
			total_other_units = EXCLUDED.total_other_units,
			derived_score = EXCLUDED.derived_score,
			record_identifiers = EXCLUDED.record_identifiers,
			updated_at = NOW()`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("caseRepo.UpsertBatch begin: %w", err)
	}
	defer tx.Rollback()

	for i := range cases {
		if _, err := tx.NamedExecContext(ctx, query, &cases[i]); err != nil {
			return fmt.Errorf("caseRepo.UpsertBatch %s: %w", cases[i].CaseKey, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("caseRepo.UpsertBatch commit: %w", err)
	}
	return nil
}

func (r *caseRepo) GetByKey(ctx context.Context, caseKey string) (*domain.MasterCase, error) {
	var mc domain.MasterCase
	err := r.db.GetContext(ctx, &mc,
		"SELECT * FROM master_cases WHERE case_key = $1", caseKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCaseNotFound
		}
		return nil, fmt.Errorf("caseRepo.GetByKey: %w", err)
	}
	return &mc, nil
}

func (r *caseRepo) List(ctx context.Context, offset, limit int) ([]domain.MasterCase, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM master_cases")
	if err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List count: %w", err)
	}

	var cases []domain.MasterCase
	err = r.db.SelectContext(ctx, &cases,
		"SELECT * FROM master_cases ORDER BY case_key LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("caseRepo.List: %w", err)
	}
	return cases, total, nil
}
