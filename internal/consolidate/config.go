package consolidate

import (
	"strings"

	"casepipe/internal/domain"
)

// IdentityKeyFn derives the secondary identity signal used to decide
// whether two identifier groups may represent the same real-world case.
// A nil function, or an empty key, disables cross-identifier merging for
// the record involved.
type IdentityKeyFn func(*domain.TransactionRecord) string

// Config carries all consolidation knobs. Nothing here is global; callers
// pass one Config per engine instance.
type Config struct {
	// ToleranceMin is the merge window in minutes: two non-overlapping
	// groups merge when one starts within this many minutes of the other's
	// end. Zero restricts merging to overlapping windows; a negative value
	// falls back to the default.
	ToleranceMin int

	// ChunkSize caps the number of records consolidated in one pass.
	// Chunk boundaries never split an identifier group or a merge bucket.
	// Zero disables chunking.
	ChunkSize int

	// IdentityKey supplies the cross-identifier identity signal.
	IdentityKey IdentityKeyFn
}

// DefaultConfig returns the documented defaults with patient-name identity.
func DefaultConfig() Config {
	return Config{
		ToleranceMin: 15,
		ChunkSize:    10000,
		IdentityKey:  PatientNameKey,
	}
}

// PatientNameKey is the standard identity signal: the scrubbed patient
// name, lowercased with whitespace collapsed.
func PatientNameKey(r *domain.TransactionRecord) string {
	return strings.Join(strings.Fields(strings.ToLower(r.PatientName)), " ")
}
