package port

import (
	"context"

	"github.com/google/uuid"

	"casepipe/internal/audit"
)

// AuditRepository defines the contract for audit event persistence. Events
// are append-only; external tooling reconstructs a run from them without
// re-running extraction.
type AuditRepository interface {
	CreateBatch(ctx context.Context, events []audit.Event) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]audit.Event, error)
}
