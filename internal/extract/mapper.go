package extract

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
)

// MappedColumn is the mapper's verdict on one raw header token.
type MappedColumn struct {
	Raw       string
	Canonical string
	Mapped    bool
}

// Mapper resolves raw header tokens into canonical field names: exact
// case-insensitive match first, then a normalized match with whitespace and
// punctuation stripped, then a fuzzy match above the similarity threshold.
// Unmapped columns are retained under a synthetic name and never block
// processing.
type Mapper struct {
	exact      map[string]string // lowercase synonym -> canonical
	normalized map[string]string // stripped synonym -> canonical
	fuzzyKeys  []string          // sorted stripped synonyms, for a stable fuzzy pass
	threshold  float64
}

// NewMapper builds a Mapper from an alias table.
func NewMapper(aliases AliasTable, fuzzyThreshold float64) *Mapper {
	m := &Mapper{
		exact:      make(map[string]string),
		normalized: make(map[string]string),
		threshold:  fuzzyThreshold,
	}
	for canonical, synonyms := range aliases {
		for _, syn := range synonyms {
			lower := strings.ToLower(strings.TrimSpace(syn))
			m.exact[lower] = canonical
			m.normalized[stripToken(lower)] = canonical
		}
		// the canonical name maps to itself
		m.exact[strings.ToLower(canonical)] = canonical
		m.normalized[stripToken(canonical)] = canonical
	}
	m.fuzzyKeys = make([]string, 0, len(m.normalized))
	for syn := range m.normalized {
		m.fuzzyKeys = append(m.fuzzyKeys, syn)
	}
	sort.Strings(m.fuzzyKeys)
	return m
}

// Resolve maps a single raw header token. ok is false when no canonical
// field reached the threshold.
func (m *Mapper) Resolve(raw string) (canonical string, ok bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", false
	}
	if c, found := m.exact[lower]; found {
		return c, true
	}
	stripped := stripToken(lower)
	if c, found := m.normalized[stripped]; found {
		return c, true
	}
	// score ties break on the smaller canonical name so an identical
	// token always resolves to the same field
	best := ""
	bestScore := 0.0
	for _, syn := range m.fuzzyKeys {
		c := m.normalized[syn]
		score := similarity(stripped, syn)
		if score > bestScore || (score == bestScore && bestScore > 0 && c < best) {
			bestScore = score
			best = c
		}
	}
	if bestScore >= m.threshold {
		return best, true
	}
	return "", false
}

// Known reports whether raw resolves to any canonical field. Used by
// strategies to recognize header rows.
func (m *Mapper) Known(raw string) bool {
	_, ok := m.Resolve(raw)
	return ok
}

// MapHeader resolves every token of a header row, in order.
func (m *Mapper) MapHeader(header []string) []MappedColumn {
	out := make([]MappedColumn, len(header))
	unmapped := 0
	for i, raw := range header {
		if c, ok := m.Resolve(raw); ok {
			out[i] = MappedColumn{Raw: raw, Canonical: c, Mapped: true}
			continue
		}
		unmapped++
		out[i] = MappedColumn{
			Raw:       raw,
			Canonical: fmt.Sprintf("unmapped_%d", unmapped),
			Mapped:    false,
		}
	}
	return out
}

// MapRow rewrites a candidate row's cell labels to canonical field names,
// logging a mapping warning for each header that stayed unresolved. The row
// is always emitted with whatever fields it could map.
func (m *Mapper) MapRow(row *domain.CandidateRow, trail *audit.Trail) {
	unmapped := 0
	for i := range row.Cells {
		raw := row.Cells[i].Label
		if c, ok := m.Resolve(raw); ok {
			row.Cells[i].Label = c
			continue
		}
		unmapped++
		synthetic := fmt.Sprintf("unmapped_%d", unmapped)
		if trail != nil {
			trail.MappingWarning(row.PageIndex, raw, synthetic)
		}
		row.Cells[i].Label = synthetic
	}
}

// stripToken lowers a token and removes all whitespace and punctuation.
func stripToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// similarity is a normalized Levenshtein ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	d := levenshtein(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1.0 - float64(d)/float64(longest)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
