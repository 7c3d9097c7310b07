package extract

import (
	"casepipe/internal/domain"
)

// recordAccumulator holds the in-progress transaction record while
// continuation rows are folded in. A continuation row repeats the current
// identifier (or carries none) and contributes only time-period data;
// it is merged into the open record instead of being emitted on its own.
// The accumulator is finalized when a new identifier appears or the page
// ends.
type recordAccumulator struct {
	open    *domain.TransactionRecord
	records []domain.TransactionRecord
}

// timeFieldSet lists the canonical fields a continuation row is allowed to
// carry (besides repeating the identifier).
var timeFieldSet = map[string]bool{
	domain.FieldStartTime:   true,
	domain.FieldStopTime:    true,
	domain.FieldRestartTime: true,
	domain.FieldEndTime:     true,
}

// isContinuation reports whether the mapped field values form a
// continuation of the currently open record.
func (a *recordAccumulator) isContinuation(identifier string, fields map[string]string) bool {
	if a.open == nil {
		return false
	}
	if identifier != "" && identifier != a.open.Identifier {
		return false
	}
	hasTime := false
	for name, value := range fields {
		if value == "" || name == domain.FieldIdentifier {
			continue
		}
		if timeFieldSet[name] {
			hasTime = true
			continue
		}
		// any non-time payload makes this a full row, not a continuation
		return false
	}
	return hasTime
}

// absorb merges a continuation row's time fields into the open record,
// filling only slots that are still empty.
func (a *recordAccumulator) absorb(start, stop, restart, end *int) {
	if a.open == nil {
		return
	}
	if a.open.StartTime == nil {
		a.open.StartTime = start
	}
	if a.open.StopTime == nil {
		a.open.StopTime = stop
	}
	if a.open.RestartTime == nil {
		a.open.RestartTime = restart
	}
	if a.open.EndTime == nil {
		a.open.EndTime = end
	}
}

// begin finalizes any open record and opens a new one.
func (a *recordAccumulator) begin(rec *domain.TransactionRecord) {
	a.finalize()
	a.open = rec
}

// finalize appends the open record, if any, to the finished list.
func (a *recordAccumulator) finalize() {
	if a.open != nil {
		a.records = append(a.records, *a.open)
		a.open = nil
	}
}
