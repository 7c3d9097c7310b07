package consolidate

import (
	"sort"

	"casepipe/internal/domain"
	"casepipe/internal/validator"
)

// group is one provisional identifier group: every record sharing one
// external identifier, with the aggregates the merge test needs.
type group struct {
	identifier  string
	records     []int // indices into the batch slice
	serviceDate string
	identityKey string
	winStart    int
	winEnd      int
	hasWindow   bool
	root        int // union-find component, set by the merge phase
}

// buildGroups partitions a batch into provisional groups, one per distinct
// identifier, returned sorted by identifier. Record indices within a group
// follow canonical record order, so the result is the same for any
// permutation of the input.
func buildGroups(records []domain.TransactionRecord, keyFn IdentityKeyFn) []*group {
	byID := make(map[string]*group)
	for i := range records {
		r := &records[i]
		if r.Identifier == "" {
			continue
		}
		g, ok := byID[r.Identifier]
		if !ok {
			g = &group{identifier: r.Identifier}
			byID[r.Identifier] = g
		}
		g.records = append(g.records, i)
	}

	groups := groups2slice(byID)
	for _, g := range groups {
		sortCanonical(records, g.records)
		g.serviceDate = earliestDate(records, g.records)
		g.winStart, g.winEnd, g.hasWindow = groupWindow(records, g.records)
		if keyFn != nil {
			g.identityKey = keyFn(&records[g.records[0]])
		}
	}
	return groups
}

func groups2slice(byID map[string]*group) []*group {
	out := make([]*group, 0, len(byID))
	for _, g := range byID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].identifier < out[j].identifier })
	return out
}

// sortCanonical orders record indices by comparable values only, never by
// input position: service date, start time (absent last), page, row, ID.
func sortCanonical(records []domain.TransactionRecord, idx []int) {
	sort.Slice(idx, func(a, b int) bool {
		ra, rb := &records[idx[a]], &records[idx[b]]
		if c := validator.CompareDates(ra.ServiceDate, rb.ServiceDate); c != 0 {
			return c < 0
		}
		sa, sb := clockRank(ra.StartTime), clockRank(rb.StartTime)
		if sa != sb {
			return sa < sb
		}
		if ra.PageIndex != rb.PageIndex {
			return ra.PageIndex < rb.PageIndex
		}
		if ra.RowIndex != rb.RowIndex {
			return ra.RowIndex < rb.RowIndex
		}
		return ra.ID.String() < rb.ID.String()
	})
}

func clockRank(t *int) int {
	if t == nil {
		return 1 << 30
	}
	return *t
}

func earliestDate(records []domain.TransactionRecord, idx []int) string {
	best := ""
	for _, i := range idx {
		d := records[i].ServiceDate
		if best == "" || validator.CompareDates(d, best) < 0 {
			best = d
		}
	}
	return best
}

// groupWindow spans from the earliest start to the latest end across all
// member records that carry times.
func groupWindow(records []domain.TransactionRecord, idx []int) (start, end int, ok bool) {
	for _, i := range idx {
		s, e, has := records[i].Window()
		if !has {
			continue
		}
		if !ok || s < start {
			start = s
		}
		if !ok || e > end {
			end = e
		}
		ok = true
	}
	return start, end, ok
}

// mergeable reports whether a cross-identifier merge applies: a concrete
// shared service date plus overlapping windows or a gap within tolerance.
// The returned gap is zero for overlaps and the minute distance otherwise.
func mergeable(a, b *group, toleranceMin int) (merge bool, gap int, tested bool) {
	if a.serviceDate == "" || a.serviceDate == domain.ServiceDateUnknown || a.serviceDate != b.serviceDate {
		return false, 0, false
	}
	if !a.hasWindow || !b.hasWindow {
		return false, 0, false
	}
	switch {
	case a.winEnd < b.winStart:
		gap = b.winStart - a.winEnd
	case b.winEnd < a.winStart:
		gap = a.winStart - b.winEnd
	default:
		return true, 0, true
	}
	return gap <= toleranceMin, gap, true
}
