package validator

import (
	"strconv"
	"strings"
)

// ParseUnits parses a numeric unit/time cell as a decimal value. Missing or
// unparseable cells are treated as 0.0 for aggregation, never as invalid.
func ParseUnits(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return v
}
