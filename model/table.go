package model

import "strings"

// DetectionStrategy identifies which table detection algorithm produced a table
type DetectionStrategy int

const (
	StrategyUnknown DetectionStrategy = iota
	// StrategyRuled means the table was built from intersecting drawn lines
	StrategyRuled
	// StrategyAlignment means the table was inferred from text alignment
	StrategyAlignment
)

func (s DetectionStrategy) String() string {
	switch s {
	case StrategyRuled:
		return "ruled"
	case StrategyAlignment:
		return "alignment"
	default:
		return "unknown"
	}
}

// Cell is a single table cell
type Cell struct {
	Text string
	BBox BBox
}

// Table represents a detected tabular region. Tokens inside the table's
// bounding box are excluded from the page's columns; the formatted grid is
// reinserted into the linear output at the table's vertical rank.
type Table struct {
	BBox       BBox
	Cells      [][]Cell // rows × cols
	Strategy   DetectionStrategy
	Confidence float64
	Page       int
}

// Rows returns the number of rows
func (t *Table) Rows() int {
	return len(t.Cells)
}

// Cols returns the number of columns (widest row)
func (t *Table) Cols() int {
	cols := 0
	for _, row := range t.Cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// ContainsToken reports whether the token's centroid lies inside the table
func (t *Table) ContainsToken(tok Token) bool {
	return t.BBox.Contains(tok.BBox.Center())
}

// CellText returns the text of the cell at (row, col), or "" if out of range
func (t *Table) CellText(row, col int) string {
	if row < 0 || row >= len(t.Cells) {
		return ""
	}
	if col < 0 || col >= len(t.Cells[row]) {
		return ""
	}
	return strings.TrimSpace(t.Cells[row][col].Text)
}
