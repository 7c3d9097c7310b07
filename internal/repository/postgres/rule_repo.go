package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"casepipe/internal/domain"
	"casepipe/internal/port"
)

type ruleRepo struct {
	db *sqlx.DB
}

// NewRuleRepo creates a new PostgreSQL-backed RuleRepository.
func NewRuleRepo(db *sqlx.DB) port.RuleRepository {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) List(ctx context.Context) ([]domain.TemporalRule, error) {
	var rules []domain.TemporalRule
	err := r.db.SelectContext(ctx, &rules,
		"SELECT * FROM temporal_rules ORDER BY effective_date")
	if err != nil {
		return nil, fmt.Errorf("ruleRepo.List: %w", err)
	}
	return rules, nil
}

func (r *ruleRepo) Upsert(ctx context.Context, rule *domain.TemporalRule) error {
	query := `
		INSERT INTO temporal_rules (
			id, effective_date, anes_units_multiplier, anes_time_divisor,
			med_units_multiplier, description, created_at, updated_at
		) VALUES (
			:id, :effective_date, :anes_units_multiplier, :anes_time_divisor,
			:med_units_multiplier, :description, NOW(), NOW()
		)
		ON CONFLICT (effective_date) DO UPDATE SET
			anes_units_multiplier = EXCLUDED.anes_units_multiplier,
			anes_time_divisor = EXCLUDED.anes_time_divisor,
			med_units_multiplier = EXCLUDED.med_units_multiplier,
			description = EXCLUDED.description,
			updated_at = NOW()`

	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("ruleRepo.Upsert: %w", err)
	}
	return nil
}

func (r *ruleRepo) DeleteByEffectiveDate(ctx context.Context, effectiveDate time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM temporal_rules WHERE effective_date = $1", effectiveDate)
	if err != nil {
		return fmt.Errorf("ruleRepo.DeleteByEffectiveDate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ruleRepo.DeleteByEffectiveDate: %w", err)
	}
	if n == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}
