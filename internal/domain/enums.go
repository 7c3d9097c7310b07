package domain

// StrategyKind identifies one of the fixed set of extraction strategies.
// The set is enumerated, not open for runtime registration; the combiner
// iterates it in priority order.
type StrategyKind string

const (
	StrategyNativeTable  StrategyKind = "native_table"
	StrategyTextPattern  StrategyKind = "text_pattern"
	StrategyVisualLayout StrategyKind = "visual_layout"
)

// DefaultStrategyOrder is the combiner's tie-break priority, highest first.
var DefaultStrategyOrder = []StrategyKind{
	StrategyNativeTable,
	StrategyTextPattern,
	StrategyVisualLayout,
}

// Priority returns the tie-break rank of s within order (lower wins).
// Unknown strategies rank last.
func (s StrategyKind) Priority(order []StrategyKind) int {
	for i, k := range order {
		if k == s {
			return i
		}
	}
	return len(order)
}

// SectionKind classifies a table grid or page region by content.
type SectionKind string

const (
	SectionChargeTransaction SectionKind = "charge_transaction"
	SectionTicketTracking    SectionKind = "ticket_tracking"
	SectionUnknown           SectionKind = "unknown"
)

// Canonical field names produced by the column mapper. Columns that cannot
// be mapped are retained under a synthetic "unmapped_N" name.
const (
	FieldIdentifier    = "identifier"
	FieldNote          = "note"
	FieldSiteCode      = "site_code"
	FieldServiceType   = "service_type"
	FieldProcedureCode = "procedure_code"
	FieldPayCode       = "pay_code"
	FieldStartTime     = "start_time"
	FieldStopTime      = "stop_time"
	FieldRestartTime   = "restart_time"
	FieldEndTime       = "end_time"
	FieldCasePosition  = "case_position"
	FieldServiceDate   = "service_date"
	FieldPostDate      = "post_date"
	FieldSplitPercent  = "split_percent"
	FieldAnesTime      = "anes_time_min"
	FieldAnesBaseUnits = "anes_base_units"
	FieldMedBaseUnits  = "med_base_units"
	FieldOtherUnits    = "other_units"
	FieldChargeAmount  = "charge_amount"
	FieldPatientName   = "patient_name"
	FieldDateClosed    = "date_closed"
	FieldCommission    = "commission"
)

// ServiceDateUnknown marks a record whose date cell could not be parsed.
// The record itself is still admitted when it carries an identifier.
const ServiceDateUnknown = "unknown"
