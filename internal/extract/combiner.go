package extract

import (
	"fmt"
	"sort"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
)

// Combiner runs every enabled strategy against a page and keeps, per data
// row position, the single candidate with the highest confidence. Ties go
// to the strategy listed earlier in the configured priority order.
// Candidates below the minimum confidence threshold are dropped and
// logged, not retried.
type Combiner struct {
	strategies    []Strategy
	order         []domain.StrategyKind
	minConfidence float64
}

// NewCombiner builds a Combiner over the enumerated strategy set.
func NewCombiner(cfg Config, mapper *Mapper) *Combiner {
	return &Combiner{
		strategies:    buildStrategies(cfg, mapper),
		order:         cfg.Strategies,
		minConfidence: cfg.MinConfidence,
	}
}

// Combine produces the winning candidate rows for one page, in row-position
// order. Strategies fail independently: a panic or error inside one is
// recorded on the trail and the others still serve the page.
func (c *Combiner) Combine(page domain.PageInput, trail *audit.Trail) []domain.CandidateRow {
	byPosition := make(map[int][]domain.CandidateRow)
	maxPos := -1
	for _, s := range c.strategies {
		rows, err := c.produceSafely(s, page)
		if err != nil {
			if trail != nil {
				trail.StrategyError(page.Index, string(s.Kind()), err.Error())
			}
			continue
		}
		for _, r := range rows {
			byPosition[r.RowIndex] = append(byPosition[r.RowIndex], r)
			if r.RowIndex > maxPos {
				maxPos = r.RowIndex
			}
		}
	}

	var out []domain.CandidateRow
	for pos := 0; pos <= maxPos; pos++ {
		candidates := byPosition[pos]
		if len(candidates) == 0 {
			continue
		}
		best := c.pickBest(candidates)
		if best.Confidence < c.minConfidence {
			if trail != nil {
				trail.DroppedRow(page.Index, pos, best.Confidence,
					fmt.Sprintf("below confidence threshold %.2f (strategy %s)", c.minConfidence, best.Strategy))
			}
			continue
		}
		out = append(out, best)
	}
	return out
}

// pickBest selects the highest-confidence candidate; confidence ties break
// on strategy priority.
func (c *Combiner) pickBest(candidates []domain.CandidateRow) domain.CandidateRow {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Strategy.Priority(c.order) < candidates[j].Strategy.Priority(c.order)
	})
	return candidates[0]
}

// produceSafely isolates a strategy failure so the remaining strategies
// still run for the page.
func (c *Combiner) produceSafely(s Strategy, page domain.PageInput) (rows []domain.CandidateRow, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("strategy panic: %v", r)
		}
	}()
	return s.Produce(page)
}
