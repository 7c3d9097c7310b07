package extract_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
	"casepipe/internal/extract"
)

func combineConfig() extract.Config {
	cfg := extract.DefaultConfig()
	cfg.PageWorkers = 0
	return cfg
}

func chargeHeader() []string {
	return []string{"Phys Ticket Ref#", "Patient Name", "CPT Code", "Date of Service", "Start Time", "Stop Time", "Anes Time (Min)", "Anes Base Units", "Med Base Units", "Chg Amt"}
}

func TestCombiner_NativeTableWins(t *testing.T) {
	cfg := combineConfig()
	combiner := extract.NewCombiner(cfg, extract.NewMapper(cfg.Aliases, cfg.FuzzyThreshold))

	page := domain.PageInput{
		Index: 0,
		Grids: [][][]string{{
			chargeHeader(),
			{"12345678", "John Smith", "00170", "06/15/2025", "07:30", "08:45", "75", "5", "0", "868.00"},
			{"12345679", "Jane Doe", "00140", "06/15/2025", "09:00", "09:50", "50", "7", "0", "640.00"},
		}},
	}
	trail := audit.NewTrail(uuid.New())

	rows := combiner.Combine(page, trail)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.StrategyNativeTable, rows[0].Strategy)
	assert.Equal(t, 1.0, rows[0].Confidence)

	v, ok := rows[0].Get("Phys Ticket Ref#")
	require.True(t, ok)
	assert.Equal(t, "12345678", v)
}

func TestCombiner_FallbackWhenNoGrids(t *testing.T) {
	cfg := combineConfig()
	combiner := extract.NewCombiner(cfg, extract.NewMapper(cfg.Aliases, cfg.FuzzyThreshold))

	// no grids at all, only raw text lines: the native-table strategy
	// yields zero rows and the others still serve the page
	page := domain.PageInput{
		Index: 1,
		Lines: []string{
			"Charge Transaction Detail",
			"12345678 SMITH JOHN OR 00170 06/15/2025 06/20/2025 07:30 08:45 75.00 5.00 0.00 868.00",
			"12345679 DOE JANE OR 00140 06/15/2025 06/20/2025 09:00 09:50 50.00 7.00 0.00 640.00",
		},
	}
	trail := audit.NewTrail(uuid.New())

	rows := combiner.Combine(page, trail)
	require.NotEmpty(t, rows)
	for _, r := range rows {
		assert.NotEqual(t, domain.StrategyNativeTable, r.Strategy)
	}

	v, ok := rows[0].Get("ticket ref")
	require.True(t, ok)
	assert.Equal(t, "12345678", v)
}

func TestCombiner_DropsLowConfidence(t *testing.T) {
	cfg := combineConfig()
	cfg.MinConfidence = 0.99
	combiner := extract.NewCombiner(cfg, extract.NewMapper(cfg.Aliases, cfg.FuzzyThreshold))

	page := domain.PageInput{
		Index: 0,
		Lines: []string{
			"12345678 07:30",
			"",
			"",
		},
	}
	trail := audit.NewTrail(uuid.New())

	rows := combiner.Combine(page, trail)
	assert.Empty(t, rows)

	var dropped int
	for _, e := range trail.Events() {
		if e.Kind == audit.KindDroppedRow {
			dropped++
		}
	}
	assert.Positive(t, dropped)
}

func TestTextPattern_ParsesTransactionLine(t *testing.T) {
	cfg := combineConfig()
	cfg.Strategies = []domain.StrategyKind{domain.StrategyTextPattern}
	combiner := extract.NewCombiner(cfg, extract.NewMapper(cfg.Aliases, cfg.FuzzyThreshold))

	page := domain.PageInput{
		Index: 0,
		Lines: []string{
			"12345678 S SMITH JOHN OR G 00170 06/15/2025 06/20/2025 07:30 08:45 75.00 5.00 0.00 0.00 868.00",
		},
	}
	rows := combiner.Combine(page, audit.NewTrail(uuid.New()))
	require.Len(t, rows, 1)

	get := func(label string) string {
		v, _ := rows[0].Get(label)
		return v
	}
	assert.Equal(t, "12345678", get("ticket ref"))
	assert.Equal(t, "S", get("note"))
	assert.Equal(t, "SMITH JOHN", get("patient name"))
	assert.Equal(t, "OR", get("site code"))
	assert.Equal(t, "G", get("serv type"))
	assert.Equal(t, "00170", get("cpt code"))
	assert.Equal(t, "06/15/2025", get("date of service"))
	assert.Equal(t, "06/20/2025", get("date of post"))
	assert.Equal(t, "07:30", get("start time"))
	assert.Equal(t, "08:45", get("stop time"))
	assert.Equal(t, "75.00", get("anes time (min)"))
	assert.Equal(t, "5.00", get("anes base units"))
	assert.Equal(t, "0.00", get("med base units"))
	assert.Equal(t, "0.00", get("other units"))
	assert.Equal(t, "868.00", get("chg amt"))
}

func TestTextPattern_SkipsNonMatchingLines(t *testing.T) {
	cfg := combineConfig()
	cfg.Strategies = []domain.StrategyKind{domain.StrategyTextPattern}
	combiner := extract.NewCombiner(cfg, extract.NewMapper(cfg.Aliases, cfg.FuzzyThreshold))

	page := domain.PageInput{
		Index: 0,
		Lines: []string{
			"Report Total:",
			"Page 3 of 12",
			"12345 too short to qualify",
		},
	}
	rows := combiner.Combine(page, audit.NewTrail(uuid.New()))
	assert.Empty(t, rows)
}

func TestNativeTable_PartialHeaderHalvesConfidence(t *testing.T) {
	cfg := combineConfig()
	cfg.Strategies = []domain.StrategyKind{domain.StrategyNativeTable}
	combiner := extract.NewCombiner(cfg, extract.NewMapper(cfg.Aliases, cfg.FuzzyThreshold))

	page := domain.PageInput{
		Index: 0,
		Grids: [][][]string{{
			{"Ticket Ref#", "col a", "col b", "col c", "col d"},
			{"12345678", "1", "2", "3", "4"},
		}},
	}
	rows := combiner.Combine(page, audit.NewTrail(uuid.New()))
	require.Len(t, rows, 1)
	assert.Equal(t, 0.5, rows[0].Confidence)
}

func TestClassifySection(t *testing.T) {
	assert.Equal(t, domain.SectionChargeTransaction,
		extract.ClassifySection(nil, "Charge Transaction Detail for June"))
	assert.Equal(t, domain.SectionTicketTracking,
		extract.ClassifySection(nil, "Ticket Tracking Report"))
	assert.Equal(t, domain.SectionChargeTransaction,
		extract.ClassifySection(chargeHeader(), ""))
	assert.Equal(t, domain.SectionTicketTracking,
		extract.ClassifySection([]string{"Ticket #", "Date Closed", "Commission Earned"}, ""))
	assert.Equal(t, domain.SectionUnknown,
		extract.ClassifySection([]string{"alpha", "beta"}, "nothing relevant"))
}
