package extract

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casepipe/internal/audit"
	"casepipe/internal/domain"
	"casepipe/internal/validator"
)

// Result is the extraction output for one document: the compensation
// summary, the validated transaction records in encounter order, and any
// ticket-tracking rows.
type Result struct {
	Summary *domain.ReportSummary
	Records []domain.TransactionRecord
	Tracked []domain.TrackedCase
}

// Orchestrator drives the strategies, combiner, column mapper, and field
// validators across all pages of a document. Re-running it on identical
// page input yields a byte-identical record set: IDs are derived from the
// document and row position, and every stage is deterministic.
type Orchestrator struct {
	cfg      Config
	mapper   *Mapper
	combiner *Combiner
	fields   *validator.Fields
}

// NewOrchestrator builds an Orchestrator from an explicit configuration.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = domain.DefaultStrategyOrder
	}
	if cfg.Aliases == nil {
		cfg.Aliases = DefaultAliases()
	}
	fields, err := validator.NewFields(cfg.IdentifierPatterns, cfg.DateFormats)
	if err != nil {
		return nil, fmt.Errorf("extract.NewOrchestrator: %w", err)
	}
	mapper := NewMapper(cfg.Aliases, cfg.FuzzyThreshold)
	return &Orchestrator{
		cfg:      cfg,
		mapper:   mapper,
		combiner: NewCombiner(cfg, mapper),
		fields:   fields,
	}, nil
}

// ExtractDocument processes all pages of one document in page order.
// Pages are extracted in parallel (each page is a pure function of its
// input) and re-ordered by page index before record assembly so the output
// is deterministic. The only fatal condition is a page that violates the
// input contract. A nil trail disables diagnostics.
func (o *Orchestrator) ExtractDocument(ctx context.Context, docID uuid.UUID, sourceFile string, pages []domain.PageInput, trail *audit.Trail) (*Result, error) {
	if err := checkContract(pages); err != nil {
		return nil, err
	}

	ordered := make([]domain.PageInput, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	pageRows, err := o.combinePages(ctx, ordered, trail)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Summary: ExtractSummary(docID, sourceFile, ordered),
	}

	for i, page := range ordered {
		o.assemblePage(docID, page, pageRows[i], res, trail)
	}
	return res, nil
}

// checkContract rejects page input that breaks the conversion
// collaborator's contract. This is the only error that fails a document.
func checkContract(pages []domain.PageInput) error {
	for _, p := range pages {
		if p.Index < 0 {
			return fmt.Errorf("extract.Orchestrator: page index %d: %w", p.Index, domain.ErrContractViolation)
		}
		for gi, grid := range p.Grids {
			if grid == nil {
				return fmt.Errorf("extract.Orchestrator: page %d grid %d is nil: %w", p.Index, gi, domain.ErrContractViolation)
			}
			for ri, row := range grid {
				if row == nil {
					return fmt.Errorf("extract.Orchestrator: page %d grid %d row %d is nil: %w", p.Index, gi, ri, domain.ErrContractViolation)
				}
			}
		}
	}
	return nil
}

// combinePages runs the combiner over every page with bounded parallelism
// and returns the results indexed like the input slice.
func (o *Orchestrator) combinePages(ctx context.Context, pages []domain.PageInput, trail *audit.Trail) ([][]domain.CandidateRow, error) {
	workers := o.cfg.PageWorkers
	if workers <= 1 || len(pages) <= 1 {
		out := make([][]domain.CandidateRow, len(pages))
		for i, p := range pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = o.combiner.Combine(p, trail)
		}
		return out, nil
	}

	out := make([][]domain.CandidateRow, len(pages))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range pages {
		if err := ctx.Err(); err != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = o.combiner.Combine(pages[i], trail)
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// assemblePage maps, validates, and accumulates one page's winning rows.
func (o *Orchestrator) assemblePage(docID uuid.UUID, page domain.PageInput, rows []domain.CandidateRow, res *Result, trail *audit.Trail) {
	section := o.classifyPage(page, rows)

	acc := recordAccumulator{}
	for i := range rows {
		row := rows[i]
		for ci := range row.Cells {
			row.Cells[ci].Value = validator.CleanCell(row.Cells[ci].Value)
		}
		o.mapper.MapRow(&row, trail)
		fields, notes := splitFields(&row)

		if section == domain.SectionTicketTracking {
			if tc := o.buildTrackedCase(docID, &row, fields); tc != nil {
				res.Tracked = append(res.Tracked, *tc)
			}
			continue
		}

		identifier := fields[domain.FieldIdentifier]
		if acc.isContinuation(identifier, fields) {
			start := parseClockField(fields, domain.FieldStartTime)
			stop := parseClockField(fields, domain.FieldStopTime)
			restart := parseClockField(fields, domain.FieldRestartTime)
			end := parseClockField(fields, domain.FieldEndTime)
			// a bare continuation start/stop pair extends the period
			if restart == nil && start != nil && acc.open.StartTime != nil {
				restart, start = start, nil
			}
			if end == nil && stop != nil && acc.open.StopTime != nil {
				end, stop = stop, nil
			}
			acc.absorb(start, stop, restart, end)
			continue
		}

		if !o.fields.ValidIdentifier(identifier) {
			if trail != nil {
				trail.InvalidRecord(row.PageIndex, row.RowIndex, identifier, "identifier does not match any configured pattern")
			}
			continue
		}

		rec := o.buildRecord(docID, &row, fields, notes)
		acc.begin(rec)
	}
	acc.finalize()
	res.Records = append(res.Records, acc.records...)
}

// classifyPage classifies a page from its text plus the raw labels of its
// first extracted row.
func (o *Orchestrator) classifyPage(page domain.PageInput, rows []domain.CandidateRow) domain.SectionKind {
	var header []string
	if len(rows) > 0 {
		for _, c := range rows[0].Cells {
			header = append(header, c.Label)
		}
	}
	return ClassifySection(header, strings.Join(page.Lines, "\n"))
}

// splitFields collapses a mapped row into canonical field -> value, and
// collects unmapped cell content for the record's free-text notes.
func splitFields(row *domain.CandidateRow) (map[string]string, string) {
	fields := make(map[string]string, len(row.Cells))
	var notes []string
	for _, c := range row.Cells {
		if c.Value == "" {
			continue
		}
		if strings.HasPrefix(c.Label, "unmapped_") {
			notes = append(notes, c.Value)
			continue
		}
		if _, exists := fields[c.Label]; !exists {
			fields[c.Label] = c.Value
		}
	}
	return fields, strings.Join(notes, "; ")
}

// buildRecord runs the field validators over one mapped row and produces
// the immutable transaction record. Field-level failures null the field
// and keep the row.
func (o *Orchestrator) buildRecord(docID uuid.UUID, row *domain.CandidateRow, fields map[string]string, notes string) *domain.TransactionRecord {
	rec := &domain.TransactionRecord{
		ID:            recordID(docID, row.PageIndex, row.RowIndex),
		DocumentID:    docID,
		Identifier:    fields[domain.FieldIdentifier],
		Note:          fields[domain.FieldNote],
		PatientName:   validator.ScrambleName(fields[domain.FieldPatientName]),
		SiteCode:      fields[domain.FieldSiteCode],
		ServiceType:   fields[domain.FieldServiceType],
		PayCode:       fields[domain.FieldPayCode],
		ServiceDate:   o.fields.NormalizeDate(fields[domain.FieldServiceDate]),
		PostDate:      o.fields.NormalizeDate(fields[domain.FieldPostDate]),
		StartTime:     parseClockField(fields, domain.FieldStartTime),
		StopTime:      parseClockField(fields, domain.FieldStopTime),
		RestartTime:   parseClockField(fields, domain.FieldRestartTime),
		EndTime:       parseClockField(fields, domain.FieldEndTime),
		AnesTimeMin:   validator.ParseUnits(fields[domain.FieldAnesTime]),
		AnesBaseUnits: validator.ParseUnits(fields[domain.FieldAnesBaseUnits]),
		MedBaseUnits:  validator.ParseUnits(fields[domain.FieldMedBaseUnits]),
		OtherUnits:    validator.ParseUnits(fields[domain.FieldOtherUnits]),
		ChargeAmount:  decimal.Zero,
		Notes:         notes,
		PageIndex:     row.PageIndex,
		RowIndex:      row.RowIndex,
	}
	if cpt := fields[domain.FieldProcedureCode]; cpt != "" {
		rec.ProcedureCodes = domain.StringList{cpt}
	}
	if amt, ok := validator.ParseMoney(fields[domain.FieldChargeAmount]); ok {
		rec.ChargeAmount = amt
	}
	return rec
}

// buildTrackedCase converts a ticket-tracking row. Rows without a case id
// are skipped silently; tracking sections routinely carry subtotal lines.
func (o *Orchestrator) buildTrackedCase(docID uuid.UUID, row *domain.CandidateRow, fields map[string]string) *domain.TrackedCase {
	caseID := fields[domain.FieldIdentifier]
	if caseID == "" {
		return nil
	}
	tc := &domain.TrackedCase{
		ID:               trackedID(docID, row.PageIndex, row.RowIndex),
		DocumentID:       docID,
		CaseID:           caseID,
		CaseType:         fields[domain.FieldServiceType],
		DateClosed:       o.fields.NormalizeDate(fields[domain.FieldDateClosed]),
		CommissionEarned: decimal.Zero,
	}
	if amt, ok := validator.ParseMoney(fields[domain.FieldCommission]); ok {
		tc.CommissionEarned = amt
	}
	return tc
}

func parseClockField(fields map[string]string, name string) *int {
	v, ok := fields[name]
	if !ok {
		return nil
	}
	m, ok := validator.ParseClock(v)
	if !ok {
		return nil
	}
	return &m
}

// recordID derives a stable record ID from the document and row position,
// so reprocessing the same document reproduces identical records.
func recordID(docID uuid.UUID, page, row int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("txn:%s:%d:%d", docID, page, row)))
}

func trackedID(docID uuid.UUID, page, row int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("tracked:%s:%d:%d", docID, page, row)))
}
