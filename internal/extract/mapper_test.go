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

func TestMapper_ExactMatch(t *testing.T) {
	m := extract.NewMapper(extract.DefaultAliases(), 0.8)

	c, ok := m.Resolve("Phys Ticket Ref#")
	require.True(t, ok)
	assert.Equal(t, domain.FieldIdentifier, c)

	c, ok = m.Resolve("CPT Code")
	require.True(t, ok)
	assert.Equal(t, domain.FieldProcedureCode, c)
}

func TestMapper_NormalizedMatch(t *testing.T) {
	m := extract.NewMapper(extract.DefaultAliases(), 0.8)

	// punctuation and whitespace stripped before matching
	c, ok := m.Resolve("Anes  Time(Min)")
	require.True(t, ok)
	assert.Equal(t, domain.FieldAnesTime, c)

	c, ok = m.Resolve("chg-amt")
	require.True(t, ok)
	assert.Equal(t, domain.FieldChargeAmount, c)
}

func TestMapper_FuzzyMatch(t *testing.T) {
	m := extract.NewMapper(extract.DefaultAliases(), 0.8)

	// one-character OCR slip on a long token
	c, ok := m.Resolve("Patiemt Name")
	require.True(t, ok)
	assert.Equal(t, domain.FieldPatientName, c)
}

func TestMapper_FuzzyTieBreakStable(t *testing.T) {
	// two synonyms of different fields sit at the same edit distance from
	// the token; the smaller canonical name must win on every call
	aliases := extract.AliasTable{
		"anes_units": {"column headx"},
		"med_units":  {"column heady"},
	}
	for i := 0; i < 50; i++ {
		m := extract.NewMapper(aliases, 0.8)
		c, ok := m.Resolve("Column HeadZ")
		require.True(t, ok)
		assert.Equal(t, "anes_units", c)
	}
}

func TestMapper_BelowThresholdUnmapped(t *testing.T) {
	m := extract.NewMapper(extract.DefaultAliases(), 0.8)

	_, ok := m.Resolve("Quarterly Bonus")
	assert.False(t, ok)
	_, ok = m.Resolve("")
	assert.False(t, ok)
}

func TestMapper_MapHeaderSyntheticNames(t *testing.T) {
	m := extract.NewMapper(extract.DefaultAliases(), 0.8)

	cols := m.MapHeader([]string{"Ticket Ref#", "mystery one", "Patient Name", "mystery two"})
	require.Len(t, cols, 4)
	assert.True(t, cols[0].Mapped)
	assert.Equal(t, domain.FieldIdentifier, cols[0].Canonical)
	assert.False(t, cols[1].Mapped)
	assert.Equal(t, "unmapped_1", cols[1].Canonical)
	assert.True(t, cols[2].Mapped)
	assert.False(t, cols[3].Mapped)
	assert.Equal(t, "unmapped_2", cols[3].Canonical)
}

func TestMapper_MapRowLogsWarning(t *testing.T) {
	m := extract.NewMapper(extract.DefaultAliases(), 0.8)
	trail := audit.NewTrail(uuid.New())

	row := domain.CandidateRow{
		Cells: []domain.Cell{
			{Label: "Ticket Ref#", Value: "12345678"},
			{Label: "mystery", Value: "x"},
		},
		PageIndex: 2,
	}
	m.MapRow(&row, trail)

	assert.Equal(t, domain.FieldIdentifier, row.Cells[0].Label)
	assert.Equal(t, "unmapped_1", row.Cells[1].Label)

	events := trail.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.KindMappingWarning, events[0].Kind)
	assert.Equal(t, 2, events[0].PageIndex)
	assert.Equal(t, "mystery", events[0].Subject)
}
