package validator

import (
	"fmt"
	"regexp"
)

// Fields validates and normalizes individual record fields against the
// configured identifier patterns and date formats. Immutable after
// construction; safe for concurrent use.
type Fields struct {
	identifierPatterns []*regexp.Regexp
	dateFormats        []string
}

// DefaultIdentifierPatterns match the ticket reference shapes seen in
// production reports: a run of 6-9 digits, or an alphanumeric code of at
// least 5 characters.
var DefaultIdentifierPatterns = []string{
	`^\d{6,9}$`,
	`^[A-Za-z][A-Za-z0-9-]{4,}$`,
}

// DefaultDateFormats are tried in order when normalizing a date cell.
var DefaultDateFormats = []string{
	"1/2/06",
	"1/2/2006",
	"01/02/06",
	"01/02/2006",
	"2006-01-02",
	"02 Jan 2006",
	"Jan 02, 2006",
}

// NewFields compiles the identifier patterns and returns a Fields validator.
// Empty slices fall back to the package defaults.
func NewFields(identifierPatterns, dateFormats []string) (*Fields, error) {
	if len(identifierPatterns) == 0 {
		identifierPatterns = DefaultIdentifierPatterns
	}
	if len(dateFormats) == 0 {
		dateFormats = DefaultDateFormats
	}
	compiled := make([]*regexp.Regexp, 0, len(identifierPatterns))
	for _, p := range identifierPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("validator.NewFields: pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &Fields{identifierPatterns: compiled, dateFormats: dateFormats}, nil
}

// ValidIdentifier reports whether s matches any configured identifier
// pattern. Identifiers are never repaired; a non-matching identifier
// invalidates the whole record.
func (f *Fields) ValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, re := range f.identifierPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
