package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"casepipe/internal/audit"
	"casepipe/internal/port"
)

type auditRepo struct {
	db *sqlx.DB
}

// NewAuditRepo creates a new PostgreSQL-backed AuditRepository.
func NewAuditRepo(db *sqlx.DB) port.AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) CreateBatch(ctx context.Context, events []audit.Event) error {
	if len(events) == 0 {
		return nil
	}
	query := `
		INSERT INTO audit_events (
			id, document_id, kind, page_index, row_index,
			subject, detail, confidence, created_at
		) VALUES (
			:id, :document_id, :kind, :page_index, :row_index,
			:subject, :detail, :confidence, :created_at
		)
		ON CONFLICT (id) DO NOTHING`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("auditRepo.CreateBatch begin: %w", err)
	}
	defer tx.Rollback()

	for i := range events {
		if _, err := tx.NamedExecContext(ctx, query, &events[i]); err != nil {
			return fmt.Errorf("auditRepo.CreateBatch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("auditRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *auditRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]audit.Event, error) {
	var events []audit.Event
	err := r.db.SelectContext(ctx, &events,
		`SELECT * FROM audit_events WHERE document_id = $1
		 ORDER BY created_at, id`, documentID)
	if err != nil {
		return nil, fmt.Errorf("auditRepo.ListByDocument: %w", err)
	}
	return events, nil
}
