package audit

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind classifies one diagnostics event.
type Kind string

const (
	KindDroppedRow     Kind = "dropped_row"
	KindInvalidRecord  Kind = "invalid_record"
	KindMappingWarning Kind = "mapping_warning"
	KindMergeDecision  Kind = "merge_decision"
	KindNearMiss       Kind = "merge_near_miss"
	KindCalcFailure    Kind = "calc_failure"
	KindStrategyError  Kind = "strategy_error"
)

// Event is one entry of the diagnostics trail. The trail is sufficient for
// external audit tooling to reconstruct what extraction and consolidation
// did without re-running them.
type Event struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DocumentID uuid.UUID `db:"document_id" json:"document_id"`
	Kind       Kind      `db:"kind" json:"kind"`
	PageIndex  int       `db:"page_index" json:"page_index"`
	RowIndex   int       `db:"row_index" json:"row_index"`
	Subject    string    `db:"subject" json:"subject"`
	Detail     string    `db:"detail" json:"detail"`
	Confidence float64   `db:"confidence" json:"confidence"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Trail collects diagnostics events from all pipeline stages. Safe for
// concurrent use; page workers append from multiple goroutines.
type Trail struct {
	documentID uuid.UUID

	mu     sync.Mutex
	events []Event
}

// NewTrail creates a Trail for one document batch.
func NewTrail(documentID uuid.UUID) *Trail {
	return &Trail{documentID: documentID}
}

func (t *Trail) add(e Event) {
	e.DocumentID = t.documentID
	t.mu.Lock()
	t.events = append(t.events, e)
	t.mu.Unlock()
}

// DroppedRow records a row discarded before validation (low confidence or
// no strategy produced it above threshold).
func (t *Trail) DroppedRow(page, row int, confidence float64, reason string) {
	t.add(Event{Kind: KindDroppedRow, PageIndex: page, RowIndex: row, Confidence: confidence, Detail: reason})
	log.Printf("audit.Trail: dropped row page=%d row=%d conf=%.2f: %s", page, row, confidence, reason)
}

// InvalidRecord records a row discarded by a hard field validator.
func (t *Trail) InvalidRecord(page, row int, identifier, reason string) {
	t.add(Event{Kind: KindInvalidRecord, PageIndex: page, RowIndex: row, Subject: identifier, Detail: reason})
	log.Printf("audit.Trail: invalid record page=%d row=%d id=%q: %s", page, row, identifier, reason)
}

// MappingWarning records a header that could not be mapped to a canonical
// field. The column is retained under a synthetic name.
func (t *Trail) MappingWarning(page int, header, syntheticName string) {
	t.add(Event{Kind: KindMappingWarning, PageIndex: page, Subject: header, Detail: fmt.Sprintf("retained as %s", syntheticName)})
	log.Printf("audit.Trail: unmapped header page=%d %q retained as %s", page, header, syntheticName)
}

// MergeDecision records why two provisional case groups were merged.
func (t *Trail) MergeDecision(a, b string, gapMin int, reason string) {
	t.add(Event{Kind: KindMergeDecision, Subject: a + "+" + b, Confidence: float64(gapMin), Detail: reason})
	log.Printf("audit.Trail: merged groups %s and %s (gap=%dmin): %s", a, b, gapMin, reason)
}

// NearMiss records a merge candidate pair that matched on identity and
// service date but whose time-window gap exceeded the tolerance.
func (t *Trail) NearMiss(a, b string, gapMin int) {
	t.add(Event{Kind: KindNearMiss, Subject: a + "+" + b, Confidence: float64(gapMin), Detail: fmt.Sprintf("window gap %d min exceeds tolerance", gapMin)})
	log.Printf("audit.Trail: near-miss merge: %s and %s (gap=%dmin)", a, b, gapMin)
}

// CalcFailure records a case whose derived score fell back to 0.0.
func (t *Trail) CalcFailure(caseKey, reason string) {
	t.add(Event{Kind: KindCalcFailure, Subject: caseKey, Detail: reason})
	log.Printf("audit.Trail: score fallback for case %s: %s", caseKey, reason)
}

// StrategyError records a strategy panic/failure on one page. Strategies
// fail independently; the page is still served by the others.
func (t *Trail) StrategyError(page int, strategy, detail string) {
	t.add(Event{Kind: KindStrategyError, PageIndex: page, Subject: strategy, Detail: detail})
	log.Printf("audit.Trail: strategy %s failed on page %d: %s", strategy, page, detail)
}

// Events returns a copy of the collected events.
func (t *Trail) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Stamp assigns IDs and timestamps to all events ahead of persistence.
func (t *Trail) Stamp(now time.Time) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.events {
		if t.events[i].ID == uuid.Nil {
			t.events[i].ID = uuid.New()
		}
		t.events[i].CreatedAt = now
	}
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
