package rules_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
	"casepipe/internal/rules"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculator_ScoreFormula(t *testing.T) {
	calc := rules.NewCalculator(nil, domain.DefaultTemporalRule())
	mc := domain.MasterCase{
		CaseKey:            "2025-06-15:11111111",
		ServiceDate:        "2025-06-15",
		TotalAnesBaseUnits: 10,
		TotalAnesTime:      60,
		TotalMedBaseUnits:  5,
	}

	score := calc.Score(&mc, audit.NewTrail(uuid.Nil))
	// 0.5*10 + 60/10 + 0.6*5
	assert.Equal(t, 14.0, score)
}

func TestCalculator_SelectsLatestRuleOnOrBeforeDate(t *testing.T) {
	ruleSet := []domain.TemporalRule{
		{EffectiveDate: day(2025, 7, 1), AnesUnitsMultiplier: 2.0, AnesTimeDivisor: 15, MedUnitsMultiplier: 1.0},
		{EffectiveDate: day(2025, 1, 1), AnesUnitsMultiplier: 1.0, AnesTimeDivisor: 12, MedUnitsMultiplier: 0.8},
		{EffectiveDate: day(2025, 4, 1), AnesUnitsMultiplier: 1.5, AnesTimeDivisor: 10, MedUnitsMultiplier: 0.9},
	}
	calc := rules.NewCalculator(ruleSet, domain.DefaultTemporalRule())

	assert.Equal(t, 12.0, calc.RuleFor("2025-02-10").AnesTimeDivisor)
	assert.Equal(t, 10.0, calc.RuleFor("2025-06-15").AnesTimeDivisor)
	assert.Equal(t, 15.0, calc.RuleFor("2025-07-01").AnesTimeDivisor) // boundary: effective on the date itself
	assert.Equal(t, 15.0, calc.RuleFor("2025-12-31").AnesTimeDivisor)
}

func TestCalculator_DefaultBeforeAllRules(t *testing.T) {
	ruleSet := []domain.TemporalRule{
		{EffectiveDate: day(2025, 7, 1), AnesUnitsMultiplier: 2.0, AnesTimeDivisor: 15, MedUnitsMultiplier: 1.0},
	}
	calc := rules.NewCalculator(ruleSet, domain.DefaultTemporalRule())

	got := calc.RuleFor("2024-12-31")
	assert.Equal(t, domain.DefaultTemporalRule().AnesTimeDivisor, got.AnesTimeDivisor)
	assert.Equal(t, domain.DefaultTemporalRule().AnesUnitsMultiplier, got.AnesUnitsMultiplier)
}

func TestCalculator_UnparseableDateUsesDefault(t *testing.T) {
	calc := rules.NewCalculator(nil, domain.DefaultTemporalRule())
	got := calc.RuleFor(domain.ServiceDateUnknown)
	assert.Equal(t, domain.DefaultTemporalRule().AnesTimeDivisor, got.AnesTimeDivisor)
}

func TestCalculator_ZeroDivisorFailsOnlyThatCase(t *testing.T) {
	ruleSet := []domain.TemporalRule{
		{EffectiveDate: day(2025, 6, 1), AnesUnitsMultiplier: 1.0, AnesTimeDivisor: 0, MedUnitsMultiplier: 1.0},
	}
	calc := rules.NewCalculator(ruleSet, domain.DefaultTemporalRule())
	trail := audit.NewTrail(uuid.Nil)

	cases := []domain.MasterCase{
		{CaseKey: "2025-06-15:11111111", ServiceDate: "2025-06-15", TotalAnesTime: 60},
		{CaseKey: "2025-05-15:22222222", ServiceDate: "2025-05-15", TotalAnesTime: 60},
	}
	calc.ScoreAll(cases, trail)

	assert.Equal(t, 0.0, cases[0].DerivedScore)
	assert.Equal(t, 6.0, cases[1].DerivedScore) // default rule still applies before the broken one

	var failures int
	for _, e := range trail.Events() {
		if e.Kind == audit.KindCalcFailure {
			failures++
			assert.Equal(t, "2025-06-15:11111111", e.Subject)
		}
	}
	require.Equal(t, 1, failures)
}

func TestCalculator_NilTrailStillScores(t *testing.T) {
	ruleSet := []domain.TemporalRule{
		{EffectiveDate: day(2025, 6, 1), AnesUnitsMultiplier: 1.0, AnesTimeDivisor: 0, MedUnitsMultiplier: 1.0},
	}
	calc := rules.NewCalculator(ruleSet, domain.DefaultTemporalRule())

	cases := []domain.MasterCase{
		{CaseKey: "2025-06-15:11111111", ServiceDate: "2025-06-15", TotalAnesTime: 60},
	}
	calc.ScoreAll(cases, nil)
	assert.Equal(t, 0.0, cases[0].DerivedScore)
}

func TestCalculator_RoundsToTwoDecimals(t *testing.T) {
	ruleSet := []domain.TemporalRule{
		{EffectiveDate: day(2025, 1, 1), AnesUnitsMultiplier: 0.333, AnesTimeDivisor: 7, MedUnitsMultiplier: 0.1},
	}
	calc := rules.NewCalculator(ruleSet, domain.DefaultTemporalRule())
	mc := domain.MasterCase{
		ServiceDate:        "2025-06-15",
		TotalAnesBaseUnits: 1,
		TotalAnesTime:      1,
		TotalMedBaseUnits:  1,
	}

	// 0.333 + 1/7 + 0.1 = 0.575857... rounds to 0.58
	assert.Equal(t, 0.58, calc.Score(&mc, audit.NewTrail(uuid.Nil)))
}
