package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PageInput is the per-page input contract supplied by the external
// document-conversion collaborator: the raw text lines of the page plus
// zero or more candidate table grids (rows x columns of cell strings).
type PageInput struct {
	Index int
	Lines []string
	Grids [][][]string
}

// Cell is one raw column label/position paired with its cell content.
type Cell struct {
	Label string
	Value string
}

// CandidateRow is the transient output of a single extraction strategy:
// an ordered set of raw cells with a confidence score in [0,1].
// CandidateRows are never persisted.
type CandidateRow struct {
	Cells      []Cell
	Confidence float64
	Strategy   StrategyKind
	PageIndex  int
	RowIndex   int
}

// Get returns the value of the first cell whose label equals label.
func (r *CandidateRow) Get(label string) (string, bool) {
	for i := range r.Cells {
		if r.Cells[i].Label == label {
			return r.Cells[i].Value, true
		}
	}
	return "", false
}

// TransactionRecord is one validated charge transaction extracted from a
// report. Immutable once validated; owned by the pipeline until handed to
// the repository.
type TransactionRecord struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	DocumentID     uuid.UUID       `db:"document_id" json:"document_id"`
	Identifier     string          `db:"identifier" json:"identifier"`
	Note           string          `db:"note" json:"note"`
	PatientName    string          `db:"patient_name" json:"patient_name"`
	SiteCode       string          `db:"site_code" json:"site_code"`
	ServiceType    string          `db:"service_type" json:"service_type"`
	ProcedureCodes StringList      `db:"procedure_codes" json:"procedure_codes"`
	PayCode        string          `db:"pay_code" json:"pay_code"`
	ServiceDate    string          `db:"service_date" json:"service_date"`
	PostDate       string          `db:"post_date" json:"post_date"`
	StartTime      *int            `db:"start_time" json:"start_time"`
	StopTime       *int            `db:"stop_time" json:"stop_time"`
	RestartTime    *int            `db:"restart_time" json:"restart_time"`
	EndTime        *int            `db:"end_time" json:"end_time"`
	AnesTimeMin    float64         `db:"anes_time_min" json:"anes_time_min"`
	AnesBaseUnits  float64         `db:"anes_base_units" json:"anes_base_units"`
	MedBaseUnits   float64         `db:"med_base_units" json:"med_base_units"`
	OtherUnits     float64         `db:"other_units" json:"other_units"`
	ChargeAmount   decimal.Decimal `db:"charge_amount" json:"charge_amount"`
	Notes          string          `db:"notes" json:"notes"`
	PageIndex      int             `db:"page_index" json:"page_index"`
	RowIndex       int             `db:"row_index" json:"row_index"`
	CaseKey        string          `db:"case_key" json:"case_key"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// Window returns the record's [start, end] time window in minutes of day.
// The end falls back through end/stop/start so a record with only a start
// time still has a zero-length window.
func (t *TransactionRecord) Window() (start, end int, ok bool) {
	if t.StartTime == nil {
		return 0, 0, false
	}
	start = *t.StartTime
	end = start
	if t.StopTime != nil && *t.StopTime > end {
		end = *t.StopTime
	}
	if t.EndTime != nil && *t.EndTime > end {
		end = *t.EndTime
	}
	return start, end, true
}

// MasterCase is the consolidated case entity formed from one or more
// transaction records. Summed fields are always recomputed from the full
// contributing set, never accumulated incrementally.
type MasterCase struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	CaseKey            string     `db:"case_key" json:"case_key"`
	InitialIdentifier  string     `db:"initial_identifier" json:"initial_identifier"`
	FinalIdentifier    string     `db:"final_identifier" json:"final_identifier"`
	ServiceDate        string     `db:"service_date" json:"service_date"`
	InitialStartTime   *int       `db:"initial_start_time" json:"initial_start_time"`
	ProcedureCodes     string     `db:"procedure_codes" json:"procedure_codes"`
	TotalAnesTime      float64    `db:"total_anes_time" json:"total_anes_time"`
	TotalAnesBaseUnits float64    `db:"total_anes_base_units" json:"total_anes_base_units"`
	TotalMedBaseUnits  float64    `db:"total_med_base_units" json:"total_med_base_units"`
	TotalOtherUnits    float64    `db:"total_other_units" json:"total_other_units"`
	DerivedScore       float64    `db:"derived_score" json:"derived_score"`
	RecordIdentifiers  StringList `db:"record_identifiers" json:"record_identifiers"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// TemporalRule is a date-scoped coefficient set for the derived-score
// formula. The rule with the latest effective date <= a case's service date
// applies.
type TemporalRule struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	EffectiveDate       time.Time `db:"effective_date" json:"effective_date"`
	AnesUnitsMultiplier float64   `db:"anes_units_multiplier" json:"anes_units_multiplier"`
	AnesTimeDivisor     float64   `db:"anes_time_divisor" json:"anes_time_divisor"`
	MedUnitsMultiplier  float64   `db:"med_units_multiplier" json:"med_units_multiplier"`
	Description         string    `db:"description" json:"description"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultTemporalRule is the documented fallback applied when no configured
// rule covers a case's service date.
func DefaultTemporalRule() TemporalRule {
	return TemporalRule{
		EffectiveDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		AnesUnitsMultiplier: 0.5,
		AnesTimeDivisor:     10.0,
		MedUnitsMultiplier:  0.6,
		Description:         "default rule",
	}
}

// ReportSummary holds the compensation summary extracted from the leading
// pages of a report document.
type ReportSummary struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	DocumentID     uuid.UUID       `db:"document_id" json:"document_id"`
	SourceFile     string          `db:"source_file" json:"source_file"`
	PeriodStart    *time.Time      `db:"period_start" json:"period_start"`
	PeriodEnd      *time.Time      `db:"period_end" json:"period_end"`
	PayDate        *time.Time      `db:"pay_date" json:"pay_date"`
	GrossPay       decimal.Decimal `db:"gross_pay" json:"gross_pay"`
	EmployeeNumber string          `db:"employee_number" json:"employee_number"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// TrackedCase is one row of a ticket-tracking section: a closed case with
// its commission, kept separate from the charge-transaction pipeline.
type TrackedCase struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	DocumentID       uuid.UUID       `db:"document_id" json:"document_id"`
	CaseID           string          `db:"case_id" json:"case_id"`
	CaseType         string          `db:"case_type" json:"case_type"`
	DateClosed       string          `db:"date_closed" json:"date_closed"`
	CommissionEarned decimal.Decimal `db:"commission_earned" json:"commission_earned"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
}

// PipelineOutput is the explicit result of one document-batch run. Nothing
// is persisted until the caller hands this to the repository layer.
type PipelineOutput struct {
	DocumentID uuid.UUID
	Summary    *ReportSummary
	Records    []TransactionRecord
	Tracked    []TrackedCase
	Cases      []MasterCase
	Stats      ConsolidationStats
}

// ConsolidationStats reports consolidation totals for operator logging.
type ConsolidationStats struct {
	Records           int
	Cases             int
	AttributedRecords int
	CrossMerges       int
}
