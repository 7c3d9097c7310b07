package port

import (
	"context"
	"time"

	"casepipe/internal/domain"
)

// RuleRepository defines the contract for temporal rule administration.
// Upserts key on the effective date; the rule set is small and read in
// full by the pipeline.
type RuleRepository interface {
	List(ctx context.Context) ([]domain.TemporalRule, error)
	Upsert(ctx context.Context, rule *domain.TemporalRule) error
	DeleteByEffectiveDate(ctx context.Context, effectiveDate time.Time) error
}
