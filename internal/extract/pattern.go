package extract

import (
	"regexp"
	"strings"

	"casepipe/internal/domain"
	"casepipe/internal/validator"
)

var (
	clockTokenRe = regexp.MustCompile(`^\d{1,2}:\d{2}$`)
	dateTokenRe  = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	cptTokenRe   = regexp.MustCompile(`^\d{5}$`)
	moneyTokenRe = regexp.MustCompile(`^-?\(?\$?[\d,]+\.?\d*\)?$`)
	siteTokenRe  = regexp.MustCompile(`^[A-Z]{2,3}$`)
)

// noteFlags are the single-character note markers carried by transaction
// lines in the production reports.
var noteFlags = map[string]bool{"S": true, "B": true, "M": true, "D": true, "Z": true}

// timeSlotLabels are filled in encounter order: start, stop, restart, end.
var timeSlotLabels = []string{"start time", "stop time", "restart time", "end time"}

// numericSlotLabels are filled in encounter order once dates have been
// consumed; trailing numeric tokens map positionally, matching the column
// order of the source reports.
var numericSlotLabels = []string{
	"anes time (min)", "anes base units", "med base units", "other units", "chg amt",
}

// expectedSlots is the denominator of the confidence score: how many field
// slots a fully populated transaction line carries.
const expectedSlots = 13

// textPatternStrategy scans raw page lines. A line qualifies as a data row
// when its head matches one of the ordered identifier patterns; the
// remainder is split into slots by token-shape heuristics. Confidence is
// the fraction of expected slots that were filled.
type textPatternStrategy struct {
	linePatterns []*regexp.Regexp
}

// newTextPatternStrategy derives line-qualification patterns from the
// configured identifier patterns by re-anchoring them to the line start.
func newTextPatternStrategy(identifierPatterns []string) *textPatternStrategy {
	if len(identifierPatterns) == 0 {
		identifierPatterns = validator.DefaultIdentifierPatterns
	}
	compiled := make([]*regexp.Regexp, 0, len(identifierPatterns))
	for _, p := range identifierPatterns {
		p = strings.TrimSuffix(strings.TrimPrefix(p, "^"), "$")
		re, err := regexp.Compile(`^(` + p + `)(\s|$)`)
		if err != nil {
			continue
		}
		compiled = append(compiled, re)
	}
	return &textPatternStrategy{linePatterns: compiled}
}

func (s *textPatternStrategy) Kind() domain.StrategyKind { return domain.StrategyTextPattern }

func (s *textPatternStrategy) Produce(page domain.PageInput) ([]domain.CandidateRow, error) {
	var rows []domain.CandidateRow
	rowIdx := 0
	for _, line := range page.Lines {
		line = strings.TrimSpace(line)
		identifier := s.matchIdentifier(line)
		if identifier == "" {
			continue
		}
		row := s.parseLine(identifier, strings.TrimSpace(line[len(identifier):]))
		row.PageIndex = page.Index
		row.RowIndex = rowIdx
		rows = append(rows, row)
		rowIdx++
	}
	return rows, nil
}

func (s *textPatternStrategy) matchIdentifier(line string) string {
	for _, re := range s.linePatterns {
		if m := re.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return ""
}

// parseLine cuts the post-identifier remainder into slots. Token shapes
// decide the slot: HH:MM tokens fill the four time slots in order, date
// tokens fill service/post date, the first five-digit token is the
// procedure code, and trailing numerics map positionally onto the unit and
// amount columns. Alphabetic runs before the site code are the patient
// name.
func (s *textPatternStrategy) parseLine(identifier, rest string) domain.CandidateRow {
	cells := []domain.Cell{{Label: "ticket ref", Value: identifier}}
	filled := 1

	tokens := strings.Fields(rest)
	var nameParts []string
	timeSlot, dateSlot, numericSlot := 0, 0, 0
	sawCPT := false
	sawSite := false
	note := ""
	payCode := ""

	for i, tok := range tokens {
		switch {
		case note == "" && i == 0 && noteFlags[tok]:
			note = tok
		case !sawCPT && cptTokenRe.MatchString(tok):
			cells = append(cells, domain.Cell{Label: "cpt code", Value: tok})
			sawCPT = true
			filled++
		case clockTokenRe.MatchString(tok):
			if timeSlot < len(timeSlotLabels) {
				cells = append(cells, domain.Cell{Label: timeSlotLabels[timeSlot], Value: tok})
				timeSlot++
				filled++
			}
		case dateTokenRe.MatchString(tok):
			switch dateSlot {
			case 0:
				cells = append(cells, domain.Cell{Label: "date of service", Value: tok})
				filled++
			case 1:
				cells = append(cells, domain.Cell{Label: "date of post", Value: tok})
				filled++
			}
			dateSlot++
		case dateSlot > 0 && moneyTokenRe.MatchString(tok):
			if numericSlot < len(numericSlotLabels) {
				cells = append(cells, domain.Cell{Label: numericSlotLabels[numericSlot], Value: tok})
				numericSlot++
				filled++
			}
		case !sawSite && siteTokenRe.MatchString(tok):
			cells = append(cells, domain.Cell{Label: "site code", Value: tok})
			sawSite = true
			filled++
		case sawSite && !sawCPT && len(tok) <= 3:
			cells = append(cells, domain.Cell{Label: "serv type", Value: tok})
			filled++
		case sawCPT && payCode == "" && dateSlot == 0 && timeSlot == 0:
			payCode = tok
			cells = append(cells, domain.Cell{Label: "pay code", Value: tok})
			filled++
		case !sawSite && !sawCPT:
			nameParts = append(nameParts, tok)
		}
	}

	if note != "" {
		cells = append(cells, domain.Cell{Label: "note", Value: note})
		filled++
	}
	if len(nameParts) > 0 {
		cells = append(cells, domain.Cell{Label: "patient name", Value: strings.Join(nameParts, " ")})
	}

	confidence := float64(filled) / float64(expectedSlots)
	if confidence > 1.0 {
		confidence = 1.0
	}
	return domain.CandidateRow{
		Cells:      cells,
		Confidence: confidence,
		Strategy:   domain.StrategyTextPattern,
	}
}
