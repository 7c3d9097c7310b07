package validator

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// encodingRepairs maps byte-sequence artifacts of mis-decoded report text to
// their intended characters. Applied before any field-level validation.
var encodingRepairs = []struct {
	broken string
	fixed  string
}{
	{"â", "'"},
	{"â", "'"},
	{"â", `"`},
	{"â", `"`},
	{"â", "-"},
	{"â", "-"},
	{"Â ", " "},
	{"�", ""},
	{"‘", "'"},
	{"’", "'"},
	{"“", `"`},
	{"”", `"`},
	{"–", "-"},
	{"—", "-"},
	{" ", " "},
}

// CleanCell canonicalizes one raw cell string: Unicode NFC normalization,
// known encoding-substitution repairs, control-character removal, and
// internal whitespace collapse.
func CleanCell(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	for _, r := range encodingRepairs {
		if strings.Contains(s, r.broken) {
			s = strings.ReplaceAll(s, r.broken, r.fixed)
		}
	}
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
			// control chars become word boundaries, not deletions
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// CleanCells applies CleanCell to every cell of a grid row in place.
func CleanCells(row []string) []string {
	for i := range row {
		row[i] = CleanCell(row[i])
	}
	return row
}
