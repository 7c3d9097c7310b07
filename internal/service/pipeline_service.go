package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"casepipe/internal/audit"
	"casepipe/internal/consolidate"
	"casepipe/internal/domain"
	"casepipe/internal/extract"
	"casepipe/internal/port"
	"casepipe/internal/rules"
)

// PipelineService defines the document batch pipeline contract. Processing
// produces an explicit output object; nothing touches the repositories
// until Persist is called, so an aborted run commits no partial state.
type PipelineService interface {
	ProcessDocument(ctx context.Context, doc port.SourceDocument) (*domain.PipelineOutput, *audit.Trail, error)
	Persist(ctx context.Context, out *domain.PipelineOutput, trail *audit.Trail) error
	Run(ctx context.Context) error
	Regroup(ctx context.Context) error
}

type pipelineService struct {
	source      port.PageSource
	txnRepo     port.TransactionRepository
	caseRepo    port.CaseRepository
	trackedRepo port.TrackedCaseRepository
	ruleRepo    port.RuleRepository
	summaryRepo port.SummaryRepository
	auditRepo   port.AuditRepository

	orch    *extract.Orchestrator
	consCfg consolidate.Config
}

// NewPipelineService creates a new PipelineService implementation.
func NewPipelineService(
	source port.PageSource,
	txnRepo port.TransactionRepository,
	caseRepo port.CaseRepository,
	trackedRepo port.TrackedCaseRepository,
	ruleRepo port.RuleRepository,
	summaryRepo port.SummaryRepository,
	auditRepo port.AuditRepository,
	extractCfg extract.Config,
	consCfg consolidate.Config,
) (PipelineService, error) {
	orch, err := extract.NewOrchestrator(extractCfg)
	if err != nil {
		return nil, fmt.Errorf("service.NewPipelineService: %w", err)
	}
	return &pipelineService{
		source:      source,
		txnRepo:     txnRepo,
		caseRepo:    caseRepo,
		trackedRepo: trackedRepo,
		ruleRepo:    ruleRepo,
		summaryRepo: summaryRepo,
		auditRepo:   auditRepo,
		orch:        orch,
		consCfg:     consCfg,
	}, nil
}

// ProcessDocument runs extraction, consolidation, and scoring over one
// document, returning the complete output and its diagnostics trail
// without persisting anything.
func (s *pipelineService) ProcessDocument(ctx context.Context, doc port.SourceDocument) (*domain.PipelineOutput, *audit.Trail, error) {
	trail := audit.NewTrail(doc.ID)

	res, err := s.orch.ExtractDocument(ctx, doc.ID, doc.SourceFile, doc.Pages, trail)
	if err != nil {
		return nil, nil, fmt.Errorf("pipelineService.ProcessDocument %s: %w", doc.SourceFile, err)
	}

	engine := consolidate.NewEngine(s.consCfg)
	cases, stats := engine.Consolidate(res.Records, trail)

	calc, err := s.loadCalculator(ctx)
	if err != nil {
		return nil, nil, err
	}
	calc.ScoreAll(cases, trail)

	log.Printf("pipelineService: %s: %d records, %d cases, %d tracked rows",
		doc.SourceFile, len(res.Records), len(cases), len(res.Tracked))
	return &domain.PipelineOutput{
		DocumentID: doc.ID,
		Summary:    res.Summary,
		Records:    res.Records,
		Tracked:    res.Tracked,
		Cases:      cases,
		Stats:      stats,
	}, trail, nil
}

func (s *pipelineService) loadCalculator(ctx context.Context) (*rules.Calculator, error) {
	ruleSet, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipelineService.loadCalculator: %w", err)
	}
	return rules.NewCalculator(ruleSet, domain.DefaultTemporalRule()), nil
}

// Persist commits one pipeline output. The audit trail is stamped and
// written last so a persisted trail always describes persisted data.
func (s *pipelineService) Persist(ctx context.Context, out *domain.PipelineOutput, trail *audit.Trail) error {
	if out.Summary != nil {
		if err := s.summaryRepo.Upsert(ctx, out.Summary); err != nil {
			return fmt.Errorf("pipelineService.Persist summary: %w", err)
		}
	}
	if err := s.txnRepo.UpsertBatch(ctx, out.Records); err != nil {
		return fmt.Errorf("pipelineService.Persist records: %w", err)
	}
	if err := s.trackedRepo.UpsertBatch(ctx, out.Tracked); err != nil {
		return fmt.Errorf("pipelineService.Persist tracked: %w", err)
	}
	if err := s.caseRepo.UpsertBatch(ctx, out.Cases); err != nil {
		return fmt.Errorf("pipelineService.Persist cases: %w", err)
	}
	if trail != nil {
		if err := s.auditRepo.CreateBatch(ctx, trail.Stamp(time.Now().UTC())); err != nil {
			return fmt.Errorf("pipelineService.Persist audit: %w", err)
		}
	}
	return nil
}

// Run processes every document from the page source. A contract violation
// fails only its own document; the batch continues.
func (s *pipelineService) Run(ctx context.Context) error {
	docs, err := s.source.List(ctx)
	if err != nil {
		return fmt.Errorf("pipelineService.Run: %w", err)
	}

	failed := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, trail, err := s.ProcessDocument(ctx, doc)
		if err != nil {
			failed++
			log.Printf("pipelineService: document %s failed: %v", doc.SourceFile, err)
			continue
		}
		if err := s.Persist(ctx, out, trail); err != nil {
			return err
		}
	}
	if failed > 0 {
		log.Printf("pipelineService: run finished, %d of %d documents failed", failed, len(docs))
	}
	return nil
}

// Regroup reloads every stored transaction record, re-runs consolidation
// and scoring, and upserts the results. Determinism makes this safe to run
// at any time.
func (s *pipelineService) Regroup(ctx context.Context) error {
	records, err := s.txnRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("pipelineService.Regroup: %w", err)
	}

	trail := audit.NewTrail(uuid.Nil)
	engine := consolidate.NewEngine(s.consCfg)
	cases, stats := engine.Consolidate(records, trail)

	calc, err := s.loadCalculator(ctx)
	if err != nil {
		return err
	}
	calc.ScoreAll(cases, trail)

	if err := s.caseRepo.UpsertBatch(ctx, cases); err != nil {
		return fmt.Errorf("pipelineService.Regroup cases: %w", err)
	}
	if err := s.txnRepo.UpsertBatch(ctx, records); err != nil {
		return fmt.Errorf("pipelineService.Regroup records: %w", err)
	}
	if err := s.auditRepo.CreateBatch(ctx, trail.Stamp(time.Now().UTC())); err != nil {
		return fmt.Errorf("pipelineService.Regroup audit: %w", err)
	}
	log.Printf("pipelineService: regrouped %d records into %d cases", stats.Records, stats.Cases)
	return nil
}
