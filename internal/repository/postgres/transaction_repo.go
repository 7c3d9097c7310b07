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

type transactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new PostgreSQL-backed TransactionRepository.
func NewTransactionRepo(db *sqlx.DB) port.TransactionRepository {
	return &transactionRepo{db: db}
}

func (r *transactionRepo) UpsertBatch(ctx context.Context, records []domain.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := `
		INSERT INTO transaction_records (
			id, document_id, identifier, note, patient_name, site_code,
			service_type, procedure_codes, pay_code, service_date, post_date,
			start_time, stop_time, restart_time, end_time,
			anes_time_min, anes_base_units, med_base_units, other_units,
			charge_amount, notes, page_index, row_index, case_key,
			created_at
		) VALUES (
			:id, :document_id, :identifier, :note, :patient_name, :site_code,
			:service_type, :procedure_codes, :pay_code, :service_date, :post_date,
			:start_time, :stop_time, :restart_time, :end_time,
			:anes_time_min, :anes_base_units, :med_base_units, :other_units,
			:charge_amount, :notes, :page_index, :row_index, :case_key,
			NOW()
		)
		ON CONFLICT (id) DO UPDATE SET
			identifier = EXCLUDED.identifier,
			note = EXCLUDED.note,
			patient_name = EXCLUDED.patient_name,
			site_code = EXCLUDED.site_code,
			service_type = EXCLUDED.service_type,
			procedure_codes = EXCLUDED.procedure_codes,
			pay_code = EXCLUDED.pay_code,
			service_date = EXCLUDED.service_date,
			post_date = EXCLUDED.post_date,
			start_time = EXCLUDED.start_time,
			stop_time = EXCLUDED.stop_time,
			restart_time = EXCLUDED.restart_time,
			end_time = EXCLUDED.end_time,
			anes_time_min = EXCLUDED.anes_time_min,
			anes_base_units = EXCLUDED.anes_base_units,
			med_base_units = EXCLUDED.med_base_units,
			other_units = EXCLUDED.other_units,
			charge_amount = EXCLUDED.charge_amount,
			notes = EXCLUDED.notes,
			page_index = EXCLUDED.page_index,
			row_index = EXCLUDED.row_index,
			case_key = EXCLUDED.case_key`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transactionRepo.UpsertBatch begin: %w", err)
	}
	defer tx.Rollback()

	for i := range records {
		if _, err := tx.NamedExecContext(ctx, query, &records[i]); err != nil {
			return fmt.Errorf("transactionRepo.UpsertBatch %s: %w", records[i].ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transactionRepo.UpsertBatch commit: %w", err)
	}
	return nil
}

func (r *transactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.TransactionRecord, error) {
	var rec domain.TransactionRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM transaction_records WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("transactionRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *transactionRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.TransactionRecord, error) {
	var records []domain.TransactionRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT * FROM transaction_records WHERE document_id = $1
		 ORDER BY page_index, row_index`, documentID)
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.ListByDocument: %w", err)
	}
	return records, nil
}

func (r *transactionRepo) ListAll(ctx context.Context) ([]domain.TransactionRecord, error) {
	var records []domain.TransactionRecord
	err := r.db.SelectContext(ctx, &records,
		"SELECT * FROM transaction_records ORDER BY document_id, page_index, row_index")
	if err != nil {
		return nil, fmt.Errorf("transactionRepo.ListAll: %w", err)
	}
	return records, nil
}
