package consolidate

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
)

// Engine consolidates transaction records into master cases: records
// sharing an identifier form provisional groups, and groups with matching
// identity and service date whose time windows touch within the tolerance
// collapse transitively into one case. The result depends only on the set
// of input records, never on their order.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.ToleranceMin < 0 {
		cfg.ToleranceMin = DefaultConfig().ToleranceMin
	}
	return &Engine{cfg: cfg}
}

// Consolidate runs the full two-step algorithm on a closed batch. Every
// record with an identifier is stamped with the case key of the case it
// was attributed to. Large batches are processed in chunks aligned on
// merge-bucket boundaries so chunking can never separate mergeable groups.
// A nil trail disables diagnostics.
func (e *Engine) Consolidate(records []domain.TransactionRecord, trail *audit.Trail) ([]domain.MasterCase, domain.ConsolidationStats) {
	stats := domain.ConsolidationStats{Records: len(records)}

	groups := buildGroups(records, e.cfg.IdentityKey)
	var cases []domain.MasterCase
	for _, chunk := range chunkGroups(groups, e.cfg.ChunkSize) {
		crossMerges := e.mergeChunk(chunk, trail)
		stats.CrossMerges += crossMerges
		stats.AttributedRecords += countRecords(chunk)
		cases = append(cases, e.buildCases(records, chunk)...)
	}

	sort.Slice(cases, func(i, j int) bool { return cases[i].CaseKey < cases[j].CaseKey })
	stats.Cases = len(cases)
	log.Printf("consolidate.Engine: %d records into %d cases (%d cross-identifier merges)",
		stats.Records, stats.Cases, stats.CrossMerges)
	return cases, stats
}

// chunkGroups partitions groups into runs of whole merge buckets. Groups
// are ordered by bucket so every group that could merge with another sits
// in the same chunk; a bucket larger than the chunk size stays intact.
func chunkGroups(groups []*group, chunkSize int) [][]*group {
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if ka, kb := bucketKey(a), bucketKey(b); ka != kb {
			return ka < kb
		}
		return a.identifier < b.identifier
	})
	if chunkSize <= 0 || countRecords(groups) <= chunkSize {
		if len(groups) == 0 {
			return nil
		}
		return [][]*group{groups}
	}

	var chunks [][]*group
	var cur []*group
	curRecords := 0
	for i := 0; i < len(groups); {
		j := i + 1
		for j < len(groups) && bucketKey(groups[j]) == bucketKey(groups[i]) {
			j++
		}
		bucket := groups[i:j]
		n := countRecords(bucket)
		if curRecords > 0 && curRecords+n > chunkSize {
			chunks = append(chunks, cur)
			cur, curRecords = nil, 0
		}
		cur = append(cur, bucket...)
		curRecords += n
		i = j
	}
	if len(cur) > 0 {
		chunks = append(chunks, cur)
	}
	return chunks
}

// bucketKey identifies the set of groups that are merge candidates for one
// another. Groups with no identity key or no concrete date get a key of
// their own identifier and can never cross-merge.
func bucketKey(g *group) string {
	if g.identityKey == "" || g.serviceDate == "" || g.serviceDate == domain.ServiceDateUnknown {
		return "solo\x00" + g.identifier
	}
	return g.identityKey + "\x00" + g.serviceDate
}

func countRecords(groups []*group) int {
	n := 0
	for _, g := range groups {
		n += len(g.records)
	}
	return n
}

// mergeEdge is one candidate pairing inside a bucket, kept so decisions
// can be logged in ascending gap order.
type mergeEdge struct {
	a, b  int
	gap   int
	merge bool
}

// mergeChunk applies the pairwise merge test inside every bucket of the
// chunk and collapses passing pairs through union-find. Pairs that match
// on identity and date but miss the window are logged as near-misses.
func (e *Engine) mergeChunk(groups []*group, trail *audit.Trail) int {
	uf := newUnionFind(len(groups))

	var edges []mergeEdge
	for i := 0; i < len(groups); i++ {
		for j := i + 1; j < len(groups) && bucketKey(groups[j]) == bucketKey(groups[i]); j++ {
			ok, gap, tested := mergeable(groups[i], groups[j], e.cfg.ToleranceMin)
			if !tested {
				continue
			}
			edges = append(edges, mergeEdge{a: i, b: j, gap: gap, merge: ok})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].gap != edges[j].gap {
			return edges[i].gap < edges[j].gap
		}
		if ga, gb := groups[edges[i].a].identifier, groups[edges[j].a].identifier; ga != gb {
			return ga < gb
		}
		return groups[edges[i].b].identifier < groups[edges[j].b].identifier
	})

	merges := 0
	for _, ed := range edges {
		a, b := groups[ed.a], groups[ed.b]
		if !ed.merge {
			if trail != nil {
				trail.NearMiss(a.identifier, b.identifier, ed.gap)
			}
			continue
		}
		reason := "windows overlap"
		if ed.gap > 0 {
			reason = fmt.Sprintf("gap %d min within tolerance %d", ed.gap, e.cfg.ToleranceMin)
		}
		if trail != nil {
			trail.MergeDecision(a.identifier, b.identifier, ed.gap, reason)
		}
		if !uf.sameSet(ed.a, ed.b) {
			merges++
		}
		uf.union(ed.a, ed.b)
	}

	// attach the merge result to the groups for case building
	for i, g := range groups {
		g.root = uf.find(i)
	}
	return merges
}

// buildCases materializes one master case per union-find component,
// recomputing every aggregate from the full contributing record set.
func (e *Engine) buildCases(records []domain.TransactionRecord, groups []*group) []domain.MasterCase {
	components := make(map[int][]*group)
	for _, g := range groups {
		components[g.root] = append(components[g.root], g)
	}

	cases := make([]domain.MasterCase, 0, len(components))
	for _, members := range components {
		sort.Slice(members, func(i, j int) bool { return members[i].identifier < members[j].identifier })

		var idx []int
		for _, g := range members {
			idx = append(idx, g.records...)
		}
		sortCanonical(records, idx)

		mc := domain.MasterCase{
			InitialIdentifier: records[idx[0]].Identifier,
			FinalIdentifier:   records[idx[len(idx)-1]].Identifier,
			ServiceDate:       earliestDate(records, idx),
		}
		mc.CaseKey = fmt.Sprintf("%s:%s", mc.ServiceDate, mc.InitialIdentifier)
		mc.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("case:"+mc.CaseKey))

		seenCodes := make(map[string]bool)
		seenIDs := make(map[string]bool)
		var codes []string
		for _, i := range idx {
			r := &records[i]
			if start := r.StartTime; start != nil {
				if mc.InitialStartTime == nil || *start < *mc.InitialStartTime {
					v := *start
					mc.InitialStartTime = &v
				}
			}
			for _, c := range r.ProcedureCodes {
				if c != "" && !seenCodes[c] {
					seenCodes[c] = true
					codes = append(codes, c)
				}
			}
			if !seenIDs[r.Identifier] {
				seenIDs[r.Identifier] = true
				mc.RecordIdentifiers = append(mc.RecordIdentifiers, r.Identifier)
			}
			mc.TotalAnesTime += r.AnesTimeMin
			mc.TotalAnesBaseUnits += r.AnesBaseUnits
			mc.TotalMedBaseUnits += r.MedBaseUnits
			mc.TotalOtherUnits += r.OtherUnits
			records[i].CaseKey = mc.CaseKey
		}
		mc.ProcedureCodes = strings.Join(codes, ", ")
		cases = append(cases, mc)
	}
	return cases
}
