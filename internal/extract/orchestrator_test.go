package extract_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
	"casepipe/internal/extract"
)

func newOrchestrator(t *testing.T) *extract.Orchestrator {
	t.Helper()
	cfg := extract.DefaultConfig()
	cfg.PageWorkers = 0
	o, err := extract.NewOrchestrator(cfg)
	require.NoError(t, err)
	return o
}

func chargePage(index int, dataRows ...[]string) domain.PageInput {
	grid := [][]string{chargeHeader()}
	grid = append(grid, dataRows...)
	return domain.PageInput{
		Index: index,
		Lines: []string{"Charge Transaction Detail"},
		Grids: [][][]string{grid},
	}
}

func TestOrchestrator_BuildsRecords(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	pages := []domain.PageInput{chargePage(0,
		[]string{"12345678", "John Smith", "00170", "06/15/2025", "07:30", "08:45", "75", "5", "2", "$868.00"},
	)}

	res, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, audit.NewTrail(docID))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	assert.Equal(t, "12345678", rec.Identifier)
	assert.Equal(t, docID, rec.DocumentID)
	assert.Equal(t, domain.StringList{"00170"}, rec.ProcedureCodes)
	assert.Equal(t, "2025-06-15", rec.ServiceDate)
	require.NotNil(t, rec.StartTime)
	assert.Equal(t, 7*60+30, *rec.StartTime)
	require.NotNil(t, rec.StopTime)
	assert.Equal(t, 8*60+45, *rec.StopTime)
	assert.Equal(t, 75.0, rec.AnesTimeMin)
	assert.Equal(t, 5.0, rec.AnesBaseUnits)
	assert.Equal(t, 2.0, rec.MedBaseUnits)
	assert.Equal(t, "868", rec.ChargeAmount.String())
	assert.NotEqual(t, "John Smith", rec.PatientName) // scrubbed
	assert.True(t, rec.CreatedAt.IsZero())
}

func TestOrchestrator_Idempotence(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	pages := []domain.PageInput{
		chargePage(0,
			[]string{"12345678", "John Smith", "00170", "06/15/2025", "07:30", "08:45", "75", "5", "0", "868.00"},
			[]string{"12345679", "Jane Doe", "00140", "06/15/2025", "09:00", "09:50", "50", "7", "0", "640.00"},
		),
		chargePage(1,
			[]string{"12345680", "Bob Jones", "00300", "06/16/2025", "10:00", "11:00", "60", "6", "0", "700.00"},
		),
	}

	first, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, audit.NewTrail(docID))
	require.NoError(t, err)
	second, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, audit.NewTrail(docID))
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Summary, second.Summary)
}

func TestOrchestrator_PageOrderIndependence(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	p0 := chargePage(0, []string{"12345678", "John Smith", "00170", "06/15/2025", "07:30", "08:45", "75", "5", "0", "868.00"})
	p1 := chargePage(1, []string{"12345679", "Jane Doe", "00140", "06/15/2025", "09:00", "09:50", "50", "7", "0", "640.00"})

	inOrder, err := o.ExtractDocument(context.Background(), docID, "june.pdf", []domain.PageInput{p0, p1}, audit.NewTrail(docID))
	require.NoError(t, err)
	reversed, err := o.ExtractDocument(context.Background(), docID, "june.pdf", []domain.PageInput{p1, p0}, audit.NewTrail(docID))
	require.NoError(t, err)

	assert.Equal(t, inOrder.Records, reversed.Records)
}

func TestOrchestrator_ParallelPagesMatchSequential(t *testing.T) {
	seq := newOrchestrator(t)
	cfg := extract.DefaultConfig()
	cfg.PageWorkers = 4
	par, err := extract.NewOrchestrator(cfg)
	require.NoError(t, err)

	docID := uuid.New()
	var pages []domain.PageInput
	for i := 0; i < 12; i++ {
		pages = append(pages, chargePage(i,
			[]string{fmt.Sprintf("1234%04d", i), "John Smith", "00170", "06/15/2025", "07:30", "08:45", "75", "5", "0", "868.00"},
		))
	}

	want, err := seq.ExtractDocument(context.Background(), docID, "june.pdf", pages, audit.NewTrail(docID))
	require.NoError(t, err)
	got, err := par.ExtractDocument(context.Background(), docID, "june.pdf", pages, audit.NewTrail(docID))
	require.NoError(t, err)

	require.Len(t, got.Records, 12)
	assert.Equal(t, want.Records, got.Records)
	assert.Equal(t, want.Summary, got.Summary)
}

func TestOrchestrator_ContinuationRowMerged(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	pages := []domain.PageInput{chargePage(0,
		[]string{"12345678", "John Smith", "00170", "06/15/2025", "07:30", "08:45", "75", "5", "0", "868.00"},
		// continuation: same identifier, only time data
		[]string{"12345678", "", "", "", "09:15", "09:40", "", "", "", ""},
	)}

	res, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, audit.NewTrail(docID))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rec := res.Records[0]
	require.NotNil(t, rec.RestartTime)
	assert.Equal(t, 9*60+15, *rec.RestartTime)
	require.NotNil(t, rec.EndTime)
	assert.Equal(t, 9*60+40, *rec.EndTime)
}

func TestOrchestrator_InvalidIdentifierExcluded(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	trail := audit.NewTrail(docID)
	pages := []domain.PageInput{chargePage(0,
		[]string{"bad id", "John Smith", "00170", "06/15/2025", "07:30", "08:45", "75", "5", "0", "868.00"},
		[]string{"12345679", "Jane Doe", "00140", "06/15/2025", "09:00", "09:50", "50", "7", "0", "640.00"},
	)}

	res, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, trail)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "12345679", res.Records[0].Identifier)

	var invalid int
	for _, e := range trail.Events() {
		if e.Kind == audit.KindInvalidRecord {
			invalid++
		}
	}
	assert.Equal(t, 1, invalid)
}

func TestOrchestrator_UnmappedHeaderTolerated(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	trail := audit.NewTrail(docID)
	pages := []domain.PageInput{{
		Index: 0,
		Lines: []string{"Charge Transaction Detail"},
		Grids: [][][]string{{
			{"Phys Ticket Ref#", "Misc Column"},
			{"12345678", "whatever"},
		}},
	}}

	res, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, trail)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "12345678", res.Records[0].Identifier)
	assert.Equal(t, "whatever", res.Records[0].Notes)

	var warnings int
	for _, e := range trail.Events() {
		if e.Kind == audit.KindMappingWarning {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings)
}

func TestOrchestrator_NilTrailStillProcesses(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	pages := []domain.PageInput{{
		Index: 0,
		Lines: []string{"Charge Transaction Detail"},
		Grids: [][][]string{{
			{"Phys Ticket Ref#", "Misc Column"},
			{"bad id", "x"},
			{"12345679", "kept"},
		}},
	}}

	res, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, nil)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "12345679", res.Records[0].Identifier)
}

func TestOrchestrator_ContractViolation(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()

	_, err := o.ExtractDocument(context.Background(), docID, "bad.pdf",
		[]domain.PageInput{{Index: -1}}, audit.NewTrail(docID))
	assert.ErrorIs(t, err, domain.ErrContractViolation)

	_, err = o.ExtractDocument(context.Background(), docID, "bad.pdf",
		[]domain.PageInput{{Index: 0, Grids: [][][]string{nil}}}, audit.NewTrail(docID))
	assert.ErrorIs(t, err, domain.ErrContractViolation)
}

func TestOrchestrator_TicketTrackingPage(t *testing.T) {
	o := newOrchestrator(t)
	docID := uuid.New()
	pages := []domain.PageInput{{
		Index: 0,
		Lines: []string{"Ticket Tracking Summary"},
		Grids: [][][]string{{
			{"Ticket Ref#", "Serv Type", "Date Closed", "Commission Earned"},
			{"12345678", "G", "06/20/2025", "$125.00"},
		}},
	}}

	res, err := o.ExtractDocument(context.Background(), docID, "june.pdf", pages, audit.NewTrail(docID))
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	require.Len(t, res.Tracked, 1)
	assert.Equal(t, "12345678", res.Tracked[0].CaseID)
	assert.Equal(t, "2025-06-20", res.Tracked[0].DateClosed)
	assert.Equal(t, "125", res.Tracked[0].CommissionEarned.String())
}
