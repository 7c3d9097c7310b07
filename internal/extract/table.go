package extract

import (
	"strings"

	"casepipe/internal/domain"
)

// headerMatchRatio is the share of header tokens that must resolve against
// the alias table for a native-table row to earn full confidence.
const headerMatchRatio = 0.7

// nativeTableStrategy consumes the candidate table grids supplied by the
// document-conversion collaborator. The first grid row containing any
// recognizable header token is treated as the header; every subsequent row
// becomes one candidate. Confidence is 1.0 when at least 70% of header
// tokens resolve, 0.5 otherwise.
type nativeTableStrategy struct {
	mapper *Mapper
}

func (s *nativeTableStrategy) Kind() domain.StrategyKind { return domain.StrategyNativeTable }

func (s *nativeTableStrategy) Produce(page domain.PageInput) ([]domain.CandidateRow, error) {
	var rows []domain.CandidateRow
	rowIdx := 0
	for _, grid := range page.Grids {
		if len(grid) < 2 {
			continue
		}
		headerAt, matched, total := s.findHeader(grid)
		if headerAt < 0 {
			continue
		}
		confidence := 0.5
		if total > 0 && float64(matched)/float64(total) >= headerMatchRatio {
			confidence = 1.0
		}
		header := grid[headerAt]
		for _, gridRow := range grid[headerAt+1:] {
			if emptyGridRow(gridRow) {
				continue
			}
			cells := make([]domain.Cell, 0, len(gridRow))
			for i, v := range gridRow {
				label := ""
				if i < len(header) {
					label = strings.TrimSpace(strings.ReplaceAll(header[i], "\n", " "))
				}
				cells = append(cells, domain.Cell{Label: label, Value: v})
			}
			rows = append(rows, domain.CandidateRow{
				Cells:      cells,
				Confidence: confidence,
				Strategy:   domain.StrategyNativeTable,
				PageIndex:  page.Index,
				RowIndex:   rowIdx,
			})
			rowIdx++
		}
	}
	return rows, nil
}

// findHeader returns the index of the first grid row containing a
// recognizable header token, with its matched/total token counts.
func (s *nativeTableStrategy) findHeader(grid [][]string) (at, matched, total int) {
	for i, row := range grid {
		m, t := 0, 0
		for _, cell := range row {
			token := strings.TrimSpace(strings.ReplaceAll(cell, "\n", " "))
			if token == "" {
				continue
			}
			t++
			if s.mapper.Known(token) {
				m++
			}
		}
		if m > 0 {
			return i, m, t
		}
	}
	return -1, 0, 0
}

func emptyGridRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
