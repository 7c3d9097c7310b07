package validator

import (
	"regexp"
	"strconv"
	"strings"
)

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(?i:(AM|PM))?$`)

// ParseClock parses an hour:minute cell, with optional AM/PM, into a
// minute-of-day value. A malformed time returns ok=false and the field is
// simply dropped; the row is otherwise kept.
func ParseClock(s string) (minuteOfDay int, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return 0, false
	}
	switch strings.ToUpper(m[3]) {
	case "AM":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, false
		}
	}
	return hour*60 + minute, true
}

// FormatClock renders a minute-of-day value back to 24-hour HH:MM.
func FormatClock(minuteOfDay int) string {
	h := minuteOfDay / 60
	m := minuteOfDay % 60
	return pad2(h) + ":" + pad2(m)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
