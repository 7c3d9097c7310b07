package extract

import (
	"strings"

	"casepipe/internal/domain"
)

// chargeIndicators and trackingIndicators are header keywords scored when
// classifying a table section.
var (
	chargeIndicators   = []string{"ticket", "patient", "cpt", "chg", "site", "serv"}
	trackingIndicators = []string{"ticket", "closed", "commission", "case"}
)

// ClassifySection decides whether a set of header tokens (plus the page
// text around it) belongs to a charge-transaction section, a
// ticket-tracking section, or neither. Page-text cues win over header
// scoring.
func ClassifySection(header []string, pageText string) domain.SectionKind {
	squashed := strings.ReplaceAll(strings.ToLower(pageText), " ", "")
	if strings.Contains(squashed, "chargetransaction") {
		return domain.SectionChargeTransaction
	}
	if strings.Contains(squashed, "tickettracking") {
		return domain.SectionTicketTracking
	}

	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(h)
	}
	chargeScore := indicatorScore(lower, chargeIndicators)
	trackingScore := indicatorScore(lower, trackingIndicators)

	switch {
	case chargeScore >= 3:
		return domain.SectionChargeTransaction
	case trackingScore >= 2 && trackingScore > chargeScore:
		return domain.SectionTicketTracking
	default:
		return domain.SectionUnknown
	}
}

func indicatorScore(headers, indicators []string) int {
	score := 0
	for _, ind := range indicators {
		for _, h := range headers {
			if strings.Contains(h, ind) {
				score++
				break
			}
		}
	}
	return score
}
