package validator

import (
	"strings"
	"time"

	"casepipe/internal/domain"
)

// CanonicalDateFormat is the single representation dates are normalized to.
const CanonicalDateFormat = "2006-01-02"

// NormalizeDate parses s against the configured format list and returns the
// canonical representation. An empty cell stays empty; an unparseable cell
// becomes domain.ServiceDateUnknown rather than failing the row.
func (f *Fields) NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if t, ok := f.ParseDate(s); ok {
		return t.Format(CanonicalDateFormat)
	}
	return domain.ServiceDateUnknown
}

// ParseDate parses s against the configured format list.
func (f *Fields) ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range f.dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareDates orders canonical date strings. Empty and unknown dates sort
// after every real date so "earliest" selection skips them.
func CompareDates(a, b string) int {
	ra, rb := dateRank(a), dateRank(b)
	if ra != rb {
		return ra - rb
	}
	return strings.Compare(a, b)
}

func dateRank(s string) int {
	if s == "" || s == domain.ServiceDateUnknown {
		return 1
	}
	return 0
}
