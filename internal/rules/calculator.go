package rules

import (
	"math"
	"sort"
	"time"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
	"casepipe/internal/validator"
)

// Calculator applies date-scoped coefficient rules to consolidated cases.
// The rule set and default are fixed at construction; the same calculator
// can score any number of cases concurrently.
type Calculator struct {
	rules       []domain.TemporalRule // sorted ascending by effective date
	defaultRule domain.TemporalRule
}

// NewCalculator builds a calculator over an explicit rule list. The slice
// is copied and sorted; the caller's order does not matter.
func NewCalculator(ruleSet []domain.TemporalRule, defaultRule domain.TemporalRule) *Calculator {
	sorted := make([]domain.TemporalRule, len(ruleSet))
	copy(sorted, ruleSet)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
	})
	return &Calculator{rules: sorted, defaultRule: defaultRule}
}

// RuleFor selects the rule with the latest effective date on or before the
// given service date. An unparseable date, or a date before every rule,
// selects the default.
func (c *Calculator) RuleFor(serviceDate string) domain.TemporalRule {
	d, err := time.Parse(validator.CanonicalDateFormat, serviceDate)
	if err != nil {
		return c.defaultRule
	}
	selected := c.defaultRule
	found := false
	for _, r := range c.rules {
		if r.EffectiveDate.After(d) {
			break
		}
		selected = r
		found = true
	}
	if !found {
		return c.defaultRule
	}
	return selected
}

// Score computes the derived score for one case:
//
//	mult_a*anesUnits + anesTime/divisor + mult_m*medUnits
//
// rounded to two decimal places. A zero divisor fails only this case's
// score, which falls back to 0.0 and is recorded on the trail. A nil trail
// disables diagnostics.
func (c *Calculator) Score(mc *domain.MasterCase, trail *audit.Trail) float64 {
	rule := c.RuleFor(mc.ServiceDate)
	if rule.AnesTimeDivisor == 0 {
		if trail != nil {
			trail.CalcFailure(mc.CaseKey, "rule has zero anesthesia time divisor")
		}
		return 0.0
	}
	score := rule.AnesUnitsMultiplier*mc.TotalAnesBaseUnits +
		mc.TotalAnesTime/rule.AnesTimeDivisor +
		rule.MedUnitsMultiplier*mc.TotalMedBaseUnits
	return math.Round(score*100) / 100
}

// ScoreAll stamps DerivedScore on every case in place.
func (c *Calculator) ScoreAll(cases []domain.MasterCase, trail *audit.Trail) {
	for i := range cases {
		cases[i].DerivedScore = c.Score(&cases[i], trail)
	}
}
