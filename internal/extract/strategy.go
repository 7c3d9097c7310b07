package extract

import (
	"casepipe/internal/domain"
)

// Strategy is the capability interface every extraction strategy
// implements. The set of strategies is the fixed enumerated set in
// domain.DefaultStrategyOrder; there is no runtime registration.
//
// Produce must be a pure function of the page input: strategies share no
// mutable state and may run concurrently across pages.
type Strategy interface {
	Kind() domain.StrategyKind
	Produce(page domain.PageInput) ([]domain.CandidateRow, error)
}

// buildStrategies instantiates the enabled strategies in the configured
// priority order. Unknown kinds are skipped.
func buildStrategies(cfg Config, mapper *Mapper) []Strategy {
	out := make([]Strategy, 0, len(cfg.Strategies))
	for _, kind := range cfg.Strategies {
		switch kind {
		case domain.StrategyNativeTable:
			out = append(out, &nativeTableStrategy{mapper: mapper})
		case domain.StrategyTextPattern:
			out = append(out, newTextPatternStrategy(cfg.IdentifierPatterns))
		case domain.StrategyVisualLayout:
			out = append(out, &visualLayoutStrategy{mapper: mapper})
		}
	}
	return out
}
