package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casepipe/internal/audit"
	"casepipe/internal/consolidate"
	"casepipe/internal/domain"
	"casepipe/internal/extract"
	"casepipe/internal/port"
	"casepipe/internal/service"
	"casepipe/mocks"
)

type serviceMocks struct {
	source      *mocks.MockPageSource
	txnRepo     *mocks.MockTransactionRepo
	caseRepo    *mocks.MockCaseRepo
	trackedRepo *mocks.MockTrackedCaseRepo
	ruleRepo    *mocks.MockRuleRepo
	summaryRepo *mocks.MockSummaryRepo
	auditRepo   *mocks.MockAuditRepo
}

func newService(t *testing.T) (service.PipelineService, *serviceMocks) {
	t.Helper()
	m := &serviceMocks{
		source:      new(mocks.MockPageSource),
		txnRepo:     new(mocks.MockTransactionRepo),
		caseRepo:    new(mocks.MockCaseRepo),
		trackedRepo: new(mocks.MockTrackedCaseRepo),
		ruleRepo:    new(mocks.MockRuleRepo),
		summaryRepo: new(mocks.MockSummaryRepo),
		auditRepo:   new(mocks.MockAuditRepo),
	}
	extractCfg := extract.DefaultConfig()
	extractCfg.PageWorkers = 0
	svc, err := service.NewPipelineService(
		m.source, m.txnRepo, m.caseRepo, m.trackedRepo, m.ruleRepo, m.summaryRepo, m.auditRepo,
		extractCfg, consolidate.DefaultConfig(),
	)
	require.NoError(t, err)
	return svc, m
}

func chargeDocument(id uuid.UUID) port.SourceDocument {
	return port.SourceDocument{
		ID:         id,
		SourceFile: "june.json",
		Pages: []domain.PageInput{{
			Index: 3,
			Lines: []string{"Charge Transaction Detail"},
			Grids: [][][]string{{
				{"Phys Ticket Ref#", "Patient Name", "Date of Service", "Start Time", "Stop Time", "Anes Time (Min)", "Anes Base Units", "Chg Amt"},
				{"12345678", "John Smith", "06/15/2025", "07:30", "08:45", "75", "5.00", "$868.00"},
			}},
		}},
	}
}

func brokenDocument(id uuid.UUID) port.SourceDocument {
	return port.SourceDocument{
		ID:         id,
		SourceFile: "broken.json",
		Pages:      []domain.PageInput{{Index: -1}},
	}
}

func TestProcessDocument_ProducesOutputWithoutPersisting(t *testing.T) {
	svc, m := newService(t)
	docID := uuid.New()
	m.ruleRepo.On("List", mock.Anything).Return([]domain.TemporalRule{}, nil)

	out, trail, err := svc.ProcessDocument(context.Background(), chargeDocument(docID))
	require.NoError(t, err)
	require.NotNil(t, trail)

	assert.Equal(t, docID, out.DocumentID)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "12345678", out.Records[0].Identifier)
	require.Len(t, out.Cases, 1)
	assert.Equal(t, "2025-06-15:12345678", out.Cases[0].CaseKey)
	// default rule: 0.5*5 + 75/10 + 0.6*0
	assert.Equal(t, 10.0, out.Cases[0].DerivedScore)
	assert.Equal(t, 1, out.Stats.Cases)

	m.txnRepo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
	m.caseRepo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
}

func TestProcessDocument_ContractViolation(t *testing.T) {
	svc, m := newService(t)
	m.ruleRepo.On("List", mock.Anything).Return([]domain.TemporalRule{}, nil)

	_, _, err := svc.ProcessDocument(context.Background(), brokenDocument(uuid.New()))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrContractViolation)
}

func TestPersist_WritesTrailLast(t *testing.T) {
	svc, m := newService(t)
	docID := uuid.New()
	m.ruleRepo.On("List", mock.Anything).Return([]domain.TemporalRule{}, nil)

	out, trail, err := svc.ProcessDocument(context.Background(), chargeDocument(docID))
	require.NoError(t, err)

	var order []string
	m.summaryRepo.On("Upsert", mock.Anything, out.Summary).Run(func(mock.Arguments) {
		order = append(order, "summary")
	}).Return(nil)
	m.txnRepo.On("UpsertBatch", mock.Anything, out.Records).Run(func(mock.Arguments) {
		order = append(order, "records")
	}).Return(nil)
	m.trackedRepo.On("UpsertBatch", mock.Anything, out.Tracked).Run(func(mock.Arguments) {
		order = append(order, "tracked")
	}).Return(nil)
	m.caseRepo.On("UpsertBatch", mock.Anything, out.Cases).Run(func(mock.Arguments) {
		order = append(order, "cases")
	}).Return(nil)
	m.auditRepo.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]audit.Event")).Run(func(args mock.Arguments) {
		order = append(order, "audit")
		events := args.Get(1).([]audit.Event)
		for _, e := range events {
			assert.NotEqual(t, uuid.Nil, e.ID)
			assert.False(t, e.CreatedAt.IsZero())
		}
	}).Return(nil)

	require.NoError(t, svc.Persist(context.Background(), out, trail))
	assert.Equal(t, []string{"summary", "records", "tracked", "cases", "audit"}, order)
}

func TestPersist_RecordFailureStopsBeforeCases(t *testing.T) {
	svc, m := newService(t)
	m.ruleRepo.On("List", mock.Anything).Return([]domain.TemporalRule{}, nil)

	out, trail, err := svc.ProcessDocument(context.Background(), chargeDocument(uuid.New()))
	require.NoError(t, err)

	m.summaryRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	m.txnRepo.On("UpsertBatch", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	err = svc.Persist(context.Background(), out, trail)
	require.Error(t, err)
	m.caseRepo.AssertNotCalled(t, "UpsertBatch", mock.Anything, mock.Anything)
	m.auditRepo.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestRun_ContinuesPastFailedDocument(t *testing.T) {
	svc, m := newService(t)
	goodID := uuid.New()
	m.source.On("List", mock.Anything).Return([]port.SourceDocument{
		brokenDocument(uuid.New()),
		chargeDocument(goodID),
	}, nil)
	m.ruleRepo.On("List", mock.Anything).Return([]domain.TemporalRule{}, nil)
	m.summaryRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	m.txnRepo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	m.trackedRepo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	m.caseRepo.On("UpsertBatch", mock.Anything, mock.Anything).Return(nil)
	m.auditRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Run(context.Background()))

	// only the good document reached persistence
	m.txnRepo.AssertNumberOfCalls(t, "UpsertBatch", 1)
	m.caseRepo.AssertNumberOfCalls(t, "UpsertBatch", 1)
}

func TestRun_SourceFailure(t *testing.T) {
	svc, m := newService(t)
	m.source.On("List", mock.Anything).Return(nil, errors.New("directory missing"))

	err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory missing")
}

func TestRegroup_ReconsolidatesStoredRecords(t *testing.T) {
	svc, m := newService(t)
	start1, stop1 := 450, 500
	start2, stop2 := 510, 550
	stored := []domain.TransactionRecord{
		{ID: uuid.New(), Identifier: "11111111", PatientName: "John Smith", ServiceDate: "2025-06-15", StartTime: &start1, StopTime: &stop1, AnesTimeMin: 50, AnesBaseUnits: 5},
		{ID: uuid.New(), Identifier: "22222222", PatientName: "John Smith", ServiceDate: "2025-06-15", StartTime: &start2, StopTime: &stop2, AnesTimeMin: 40},
	}
	m.txnRepo.On("ListAll", mock.Anything).Return(stored, nil)
	m.ruleRepo.On("List", mock.Anything).Return([]domain.TemporalRule{}, nil)

	var persisted []domain.MasterCase
	m.caseRepo.On("UpsertBatch", mock.Anything, mock.AnythingOfType("[]domain.MasterCase")).Run(func(args mock.Arguments) {
		persisted = args.Get(1).([]domain.MasterCase)
	}).Return(nil)
	m.txnRepo.On("UpsertBatch", mock.Anything, mock.AnythingOfType("[]domain.TransactionRecord")).Return(nil)
	m.auditRepo.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, svc.Regroup(context.Background()))

	require.Len(t, persisted, 1)
	assert.Equal(t, "2025-06-15:11111111", persisted[0].CaseKey)
	assert.Equal(t, 90.0, persisted[0].TotalAnesTime)
	// 0.5*5 + 90/10 + 0.6*0
	assert.Equal(t, 11.5, persisted[0].DerivedScore)
	assert.Equal(t, "2025-06-15:11111111", stored[0].CaseKey)
	assert.Equal(t, "2025-06-15:11111111", stored[1].CaseKey)
}
