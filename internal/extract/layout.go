package extract

import (
	"fmt"
	"strings"

	"casepipe/internal/domain"
)

const (
	// layoutMinLines is the minimum number of usable lines needed before
	// boundary inference is attempted.
	layoutMinLines = 3
	// layoutGapAgreement is the share of lines that must be blank at a
	// character position for it to count toward a column boundary.
	layoutGapAgreement = 0.85
	// layoutMinGapWidth is the minimum width of a whitespace run that
	// separates two columns.
	layoutMinGapWidth = 2
)

// visualLayoutStrategy infers column boundaries from whitespace gaps that
// stay aligned across the lines of a page, then cuts every line at those
// boundaries. It needs no header match; confidence is the fraction of
// lines on the page that agree with the inferred boundary set.
type visualLayoutStrategy struct {
	mapper *Mapper
}

func (s *visualLayoutStrategy) Kind() domain.StrategyKind { return domain.StrategyVisualLayout }

func (s *visualLayoutStrategy) Produce(page domain.PageInput) ([]domain.CandidateRow, error) {
	lines := usableLines(page.Lines)
	if len(lines) < layoutMinLines {
		return nil, nil
	}

	columns := inferColumns(lines)
	if len(columns) < 2 {
		return nil, nil
	}

	agreeing := 0
	for _, line := range lines {
		if lineAgrees(line, columns) {
			agreeing++
		}
	}
	confidence := float64(agreeing) / float64(len(lines))

	labels, headerLine := s.findLabels(lines, columns)

	var rows []domain.CandidateRow
	rowIdx := 0
	for _, line := range lines {
		if line == headerLine {
			continue
		}
		if !lineAgrees(line, columns) {
			continue
		}
		values := cutLine(line, columns)
		if nonEmptyCount(values) < 2 {
			continue
		}
		cells := make([]domain.Cell, 0, len(values))
		for i, v := range values {
			cells = append(cells, domain.Cell{Label: labels[i], Value: v})
		}
		rows = append(rows, domain.CandidateRow{
			Cells:      cells,
			Confidence: confidence,
			Strategy:   domain.StrategyVisualLayout,
			PageIndex:  page.Index,
			RowIndex:   rowIdx,
		})
		rowIdx++
	}
	return rows, nil
}

// findLabels looks for a line whose cut cells resolve against the alias
// table; its cells become the column labels and the line is excluded from
// the data rows. Without such a line, columns get positional names.
func (s *visualLayoutStrategy) findLabels(lines []string, columns []span) ([]string, string) {
	for _, line := range lines {
		cells := cutLine(line, columns)
		known := 0
		for _, c := range cells {
			if c != "" && s.mapper.Known(c) {
				known++
			}
		}
		if known >= 2 {
			return cells, line
		}
	}
	labels := make([]string, len(columns))
	for i := range labels {
		labels[i] = fmt.Sprintf("col_%d", i+1)
	}
	return labels, ""
}

// span is a half-open [start, end) character interval of one column.
type span struct {
	start, end int
}

func usableLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, strings.TrimRight(l, " "))
		}
	}
	return out
}

// inferColumns finds character positions that are whitespace on nearly all
// lines; maximal runs of such positions wider than layoutMinGapWidth
// become column separators.
func inferColumns(lines []string) []span {
	width := 0
	for _, l := range lines {
		if len(l) > width {
			width = len(l)
		}
	}
	blank := make([]int, width)
	for _, l := range lines {
		for pos := 0; pos < width; pos++ {
			if pos >= len(l) || l[pos] == ' ' {
				blank[pos]++
			}
		}
	}

	isGap := make([]bool, width)
	threshold := layoutGapAgreement * float64(len(lines))
	for pos := 0; pos < width; pos++ {
		isGap[pos] = float64(blank[pos]) >= threshold
	}

	var columns []span
	start := -1
	gapRun := 0
	for pos := 0; pos <= width; pos++ {
		atGap := pos == width || isGap[pos]
		if atGap {
			gapRun++
			if start >= 0 && (gapRun >= layoutMinGapWidth || pos == width) {
				columns = append(columns, span{start: start, end: pos - gapRun + 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = pos
		}
		gapRun = 0
	}
	return columns
}

// lineAgrees reports whether every inter-column gap of the boundary set is
// whitespace (or past the end) on this line.
func lineAgrees(line string, columns []span) bool {
	for i := 0; i < len(columns)-1; i++ {
		gapStart := columns[i].end
		gapEnd := columns[i+1].start
		for pos := gapStart; pos < gapEnd; pos++ {
			if pos < len(line) && line[pos] != ' ' {
				return false
			}
		}
	}
	return true
}

func cutLine(line string, columns []span) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		start, end := c.start, c.end
		if start > len(line) {
			out[i] = ""
			continue
		}
		if end > len(line) {
			end = len(line)
		}
		out[i] = strings.TrimSpace(line[start:end])
	}
	return out
}

func nonEmptyCount(values []string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
