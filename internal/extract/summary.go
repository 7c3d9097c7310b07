package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casepipe/internal/domain"
	"casepipe/internal/validator"
)

// summaryPageLimit bounds how many leading pages are scanned for the
// compensation summary; productivity tables start after them.
const summaryPageLimit = 3

var (
	periodRe       = regexp.MustCompile(`(?i)Period:\s*([A-Za-z]+\s+\d{4})`)
	periodMonthRe  = regexp.MustCompile(`(?i)For the Month of\s+([A-Za-z]+)`)
	payDateRe      = regexp.MustCompile(`(?i)Pay Date:\s*(\d{1,2}/\d{1,2}/\d{4})`)
	payrollIssueRe = regexp.MustCompile(`(?i)Payroll Issued:\s*(\d{1,2}/\d{1,2}/\d{4})`)
	grossRe        = regexp.MustCompile(`(?i)Gross Earnings\s*\$?([\d,]+\.?\d*)`)
	netCompRe      = regexp.MustCompile(`(?i)Net Compensation/Net Pay\s*([\d,]+\.?\d*)`)
	employeeRe     = regexp.MustCompile(`(?i)Employee Number\s*(\d+)`)
)

// ExtractSummary scans the leading pages of a document for the
// compensation summary block. Every field is optional; a missing pay
// period is resolved from the pay date (month-only periods take the pay
// date's year, an absent period is assumed to be the month before pay).
func ExtractSummary(docID uuid.UUID, sourceFile string, pages []domain.PageInput) *domain.ReportSummary {
	var b strings.Builder
	for _, p := range pages {
		if p.Index >= summaryPageLimit {
			continue
		}
		for _, line := range p.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	text := b.String()

	s := &domain.ReportSummary{
		ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte("summary:"+docID.String())),
		DocumentID: docID,
		SourceFile: sourceFile,
		GrossPay:   decimal.Zero,
	}

	if m := payDateRe.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("1/2/2006", m[1]); err == nil {
			s.PayDate = &t
		}
	}
	if s.PayDate == nil {
		if m := payrollIssueRe.FindStringSubmatch(text); m != nil {
			if t, err := time.Parse("1/2/2006", m[1]); err == nil {
				s.PayDate = &t
			}
		}
	}

	if m := periodRe.FindStringSubmatch(text); m != nil {
		if t, err := time.Parse("2 January 2006", "1 "+m[1]); err == nil {
			start, end := monthSpan(t)
			s.PeriodStart, s.PeriodEnd = &start, &end
		}
	}
	if s.PeriodStart == nil && s.PayDate != nil {
		if m := periodMonthRe.FindStringSubmatch(text); m != nil {
			monthName := m[1] + " " + s.PayDate.Format("2006")
			if t, err := time.Parse("January 2006", monthName); err == nil {
				start, end := monthSpan(t)
				s.PeriodStart, s.PeriodEnd = &start, &end
			}
		}
	}
	if s.PeriodStart == nil && s.PayDate != nil {
		// assume the pay period is the month before the pay date
		start, end := monthSpan(s.PayDate.AddDate(0, -1, -s.PayDate.Day()+1))
		s.PeriodStart, s.PeriodEnd = &start, &end
	}

	if m := grossRe.FindStringSubmatch(text); m != nil {
		if d, ok := validator.ParseMoney(m[1]); ok {
			s.GrossPay = d
		}
	}
	if s.GrossPay.IsZero() {
		if m := netCompRe.FindStringSubmatch(text); m != nil {
			if d, ok := validator.ParseMoney(m[1]); ok {
				s.GrossPay = d
			}
		}
	}
	if m := employeeRe.FindStringSubmatch(text); m != nil {
		s.EmployeeNumber = m[1]
	}
	return s
}

// monthSpan returns the first and last day of t's month.
func monthSpan(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return start, end
}
