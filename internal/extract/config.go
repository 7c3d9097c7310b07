package extract

import "casepipe/internal/domain"

// AliasTable maps canonical field names to their known header synonyms.
// Matching is case-insensitive; synonyms are stored lowercase.
type AliasTable map[string][]string

// Config is the explicit, immutable configuration threaded through every
// extraction component. No component reads process-wide state, so the same
// engine can run concurrently with different configurations for different
// report layouts.
type Config struct {
	// Strategies is the enabled strategy set in combiner priority order.
	Strategies []domain.StrategyKind
	// MinConfidence drops any row whose best candidate scores below it.
	MinConfidence float64
	// FuzzyThreshold is the minimum similarity for a fuzzy header match.
	FuzzyThreshold float64
	// Aliases drives the column mapper.
	Aliases AliasTable
	// IdentifierPatterns and DateFormats feed the field validators.
	IdentifierPatterns []string
	DateFormats        []string
	// PageWorkers bounds parallel page extraction. Zero means sequential.
	PageWorkers int
}

// DefaultConfig returns the configuration matching the production report
// layout.
func DefaultConfig() Config {
	return Config{
		Strategies:         domain.DefaultStrategyOrder,
		MinConfidence:      0.5,
		FuzzyThreshold:     0.8,
		Aliases:            DefaultAliases(),
		IdentifierPatterns: nil, // validator defaults
		DateFormats:        nil, // validator defaults
		PageWorkers:        4,
	}
}

// DefaultAliases returns the alias table for the production report layout.
func DefaultAliases() AliasTable {
	return AliasTable{
		domain.FieldIdentifier:    {"phys ticket ref#", "ticket ref#", "ticket ref", "ticket number", "ticket", "reference"},
		domain.FieldNote:          {"note"},
		domain.FieldPatientName:   {"patient name", "patient"},
		domain.FieldSiteCode:      {"site code", "site"},
		domain.FieldServiceType:   {"serv type", "service type", "anesthesia type"},
		domain.FieldProcedureCode: {"cpt code", "cpt", "procedure code", "proc code"},
		domain.FieldPayCode:       {"pay code", "payer"},
		domain.FieldStartTime:     {"start time", "begin time", "start"},
		domain.FieldStopTime:      {"stop time", "stop"},
		domain.FieldRestartTime:   {"restart time", "restart"},
		domain.FieldEndTime:       {"end time", "end"},
		domain.FieldCasePosition:  {"ob case pos", "case pos", "position"},
		domain.FieldServiceDate:   {"date of service", "service date", "dos"},
		domain.FieldPostDate:      {"date of post", "post date"},
		domain.FieldSplitPercent:  {"split %", "split"},
		domain.FieldAnesTime:      {"anes time (min)", "anes time", "anesthesia time"},
		domain.FieldAnesBaseUnits: {"anes base units", "anesthesia base units", "anes base"},
		domain.FieldMedBaseUnits:  {"med base units", "medical base units", "med base"},
		domain.FieldOtherUnits:    {"other units"},
		domain.FieldChargeAmount:  {"chg amt", "charge amount", "charge amt", "amount"},
		domain.FieldDateClosed:    {"date closed", "closed"},
		domain.FieldCommission:    {"commission earned", "commission", "earned"},
	}
}
