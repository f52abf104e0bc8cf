package tables

import (
	"sort"

	"github.com/tsawler/reflow/model"
)

// AlignmentDetector infers tables from text alignment alone: runs of
// consecutive rows whose tokens start at the same X positions, at least
// MinRows deep and MinCols wide. Used for borderless tables; its confidence
// is lower than the ruled strategy's.
type AlignmentDetector struct {
	config Config
}

// NewAlignmentDetector creates an alignment detector with default configuration
func NewAlignmentDetector() *AlignmentDetector {
	return &AlignmentDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("alignment")
func (d *AlignmentDetector) Name() string {
	return "alignment"
}

// Configure sets the detector configuration
func (d *AlignmentDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// row is one horizontal line of tokens during clustering
type row struct {
	tokens []model.Token
	top    float64
	bottom float64
}

// Detect finds alignment tables on a page
func (d *AlignmentDetector) Detect(page *model.Page, tokens []model.Token) ([]*model.Table, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	rows := groupRows(tokens)
	if len(rows) < d.config.MinRows {
		return nil, nil
	}

	var tables []*model.Table
	start := 0
	for start < len(rows) {
		run, columns := d.longestAlignedRun(rows[start:])
		if run >= d.config.MinRows && len(columns)-1 >= d.config.MinCols {
			tables = append(tables, d.buildTable(rows[start:start+run], columns, page.Number))
			start += run
			continue
		}
		start++
	}
	return tables, nil
}

// groupRows clusters tokens into rows by vertical overlap
func groupRows(tokens []model.Token) []row {
	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	model.SortTokens(sorted)

	var rows []row
	for _, tok := range sorted {
		if len(rows) > 0 {
			last := &rows[len(rows)-1]
			if tok.BBox.Y0 < last.bottom {
				last.tokens = append(last.tokens, tok)
				if tok.BBox.Y1 > last.bottom {
					last.bottom = tok.BBox.Y1
				}
				continue
			}
		}
		rows = append(rows, row{
			tokens: []model.Token{tok},
			top:    tok.BBox.Y0,
			bottom: tok.BBox.Y1,
		})
	}

	for i := range rows {
		sort.SliceStable(rows[i].tokens, func(a, b int) bool {
			return rows[i].tokens[a].BBox.X0 < rows[i].tokens[b].BBox.X0
		})
	}
	return rows
}

// longestAlignedRun finds how many consecutive rows starting at rows[0]
// share the first row's column starts, and returns the column boundaries.
// Column boundaries are midpoints between aligned starts, with open outer
// edges derived from the first row.
func (d *AlignmentDetector) longestAlignedRun(rows []row) (int, []float64) {
	if len(rows) == 0 {
		return 0, nil
	}

	base := columnStarts(rows[0])
	if len(base) < d.config.MinCols {
		return 0, nil
	}

	run := 1
	for run < len(rows) {
		starts := columnStarts(rows[run])
		if !aligned(base, starts, d.config.AlignmentTolerance) {
			break
		}
		run++
	}
	if run < d.config.MinRows {
		return run, nil
	}

	// Build cell boundaries: leftmost edge, midpoints between starts,
	// and the rightmost token edge across the run
	right := rows[0].tokens[len(rows[0].tokens)-1].BBox.X1
	for _, r := range rows[:run] {
		if e := r.tokens[len(r.tokens)-1].BBox.X1; e > right {
			right = e
		}
	}

	boundaries := make([]float64, 0, len(base)+1)
	boundaries = append(boundaries, base[0])
	for i := 1; i < len(base); i++ {
		boundaries = append(boundaries, (base[i-1]+base[i])/2)
	}
	boundaries = append(boundaries, right)
	return run, boundaries
}

// columnStarts returns the X start positions of a row's tokens
func columnStarts(r row) []float64 {
	starts := make([]float64, 0, len(r.tokens))
	for _, tok := range r.tokens {
		starts = append(starts, tok.BBox.X0)
	}
	return starts
}

// aligned reports whether two start lists match pairwise within tolerance
func aligned(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < -tolerance || diff > tolerance {
			return false
		}
	}
	return true
}

// buildTable assembles the table grid from an aligned run of rows
func (d *AlignmentDetector) buildTable(rows []row, boundaries []float64, pageNo int) *model.Table {
	cols := len(boundaries) - 1

	top := rows[0].top
	bottom := rows[len(rows)-1].bottom

	table := &model.Table{
		BBox:       model.NewBBox(boundaries[0], top, boundaries[cols], bottom),
		Strategy:   model.StrategyAlignment,
		Confidence: d.config.AlignmentConfidence,
		Page:       pageNo,
	}

	table.Cells = make([][]model.Cell, len(rows))
	for r, rw := range rows {
		table.Cells[r] = make([]model.Cell, cols)
		for c := 0; c < cols; c++ {
			cellBox := model.NewBBox(boundaries[c], rw.top, boundaries[c+1], rw.bottom)
			var text string
			for _, tok := range rw.tokens {
				cx := tok.BBox.Center().X
				if cx >= cellBox.X0 && cx < cellBox.X1 || (c == cols-1 && cx >= cellBox.X1) {
					if text != "" {
						text += " "
					}
					text += tok.Text
				}
			}
			table.Cells[r][c] = model.Cell{Text: text, BBox: cellBox}
		}
	}
	return table
}
