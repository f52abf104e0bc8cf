package tables

import (
	"math"
	"sort"

	"github.com/tsawler/reflow/model"
)

// RuledDetector builds table grids from the page's drawn line segments:
// clusters of aligned horizontal and vertical lines whose intersections form
// a cell lattice.
type RuledDetector struct {
	config Config
}

// NewRuledDetector creates a ruled-line detector with default configuration
func NewRuledDetector() *RuledDetector {
	return &RuledDetector{config: DefaultConfig()}
}

// Name returns the detector's identifier ("ruled")
func (d *RuledDetector) Name() string {
	return "ruled"
}

// Configure sets the detector configuration
func (d *RuledDetector) Configure(config Config) error {
	d.config = config
	return nil
}

// axisGroup is a cluster of segments aligned on one axis position
type axisGroup struct {
	position  float64 // Y for horizontal groups, X for vertical
	minExtent float64 // span on the perpendicular axis
	maxExtent float64
}

// Detect finds ruled tables on a page. A grid needs at least two horizontal
// and two vertical line positions whose spans overlap; cell text is filled
// from the tokens whose centroid falls inside each cell.
func (d *RuledDetector) Detect(page *model.Page, tokens []model.Token) ([]*model.Table, error) {
	if len(page.Segments) == 0 {
		return nil, nil
	}

	tol := d.config.AlignmentTolerance
	var horizontal, vertical []model.Segment
	for _, seg := range page.Segments {
		if seg.Length() < d.config.MinLineLength {
			continue
		}
		switch {
		case seg.IsHorizontal(tol):
			horizontal = append(horizontal, seg)
		case seg.IsVertical(tol):
			vertical = append(vertical, seg)
		}
	}

	hGroups := groupByAxis(horizontal, tol, false)
	vGroups := groupByAxis(vertical, tol, true)

	if len(hGroups) < 2 || len(vGroups) < 2 {
		return nil, nil
	}

	// Keep only line positions whose perpendicular spans mutually
	// overlap; stray rules elsewhere on the page are not part of a grid
	hGroups, vGroups = trimToLattice(hGroups, vGroups, tol)
	if len(hGroups) < 2 || len(vGroups) < 2 {
		return nil, nil
	}

	rows := len(hGroups) - 1
	cols := len(vGroups) - 1

	table := &model.Table{
		BBox: model.NewBBox(
			vGroups[0].position, hGroups[0].position,
			vGroups[len(vGroups)-1].position, hGroups[len(hGroups)-1].position,
		),
		Strategy:   model.StrategyRuled,
		Confidence: d.config.RuledConfidence,
		Page:       page.Number,
	}

	table.Cells = make([][]model.Cell, rows)
	for r := 0; r < rows; r++ {
		table.Cells[r] = make([]model.Cell, cols)
		for c := 0; c < cols; c++ {
			cellBox := model.NewBBox(
				vGroups[c].position, hGroups[r].position,
				vGroups[c+1].position, hGroups[r+1].position,
			)
			table.Cells[r][c] = model.Cell{
				Text: cellText(tokens, cellBox),
				BBox: cellBox,
			}
		}
	}
	return []*model.Table{table}, nil
}

// groupByAxis clusters segments whose axis position differs by at most the
// tolerance, returning one group per distinct line position, sorted.
func groupByAxis(segments []model.Segment, tolerance float64, verticalAxis bool) []axisGroup {
	if len(segments) == 0 {
		return nil
	}

	type entry struct {
		pos, lo, hi float64
	}
	entries := make([]entry, 0, len(segments))
	for _, seg := range segments {
		if verticalAxis {
			entries = append(entries, entry{
				pos: (seg.X0 + seg.X1) / 2,
				lo:  math.Min(seg.Y0, seg.Y1),
				hi:  math.Max(seg.Y0, seg.Y1),
			})
		} else {
			entries = append(entries, entry{
				pos: (seg.Y0 + seg.Y1) / 2,
				lo:  math.Min(seg.X0, seg.X1),
				hi:  math.Max(seg.X0, seg.X1),
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	var groups []axisGroup
	current := axisGroup{position: entries[0].pos, minExtent: entries[0].lo, maxExtent: entries[0].hi}
	count := 1

	flush := func() {
		current.position /= float64(count)
		groups = append(groups, current)
	}

	for _, e := range entries[1:] {
		if e.pos-current.position/float64(count) <= tolerance {
			current.position += e.pos
			count++
			if e.lo < current.minExtent {
				current.minExtent = e.lo
			}
			if e.hi > current.maxExtent {
				current.maxExtent = e.hi
			}
			continue
		}
		flush()
		current = axisGroup{position: e.pos, minExtent: e.lo, maxExtent: e.hi}
		count = 1
	}
	flush()
	return groups
}

// trimToLattice drops axis groups that do not span the other axis's range,
// so a horizontal rule elsewhere on the page cannot stretch the grid.
func trimToLattice(hGroups, vGroups []axisGroup, tolerance float64) ([]axisGroup, []axisGroup) {
	vLo := vGroups[0].position
	vHi := vGroups[len(vGroups)-1].position
	hLo := hGroups[0].position
	hHi := hGroups[len(hGroups)-1].position

	var hOut []axisGroup
	for _, g := range hGroups {
		// The horizontal line must cover the vertical lines' X range
		if g.minExtent <= vLo+tolerance && g.maxExtent >= vHi-tolerance {
			hOut = append(hOut, g)
		}
	}
	var vOut []axisGroup
	for _, g := range vGroups {
		if g.minExtent <= hLo+tolerance && g.maxExtent >= hHi-tolerance {
			vOut = append(vOut, g)
		}
	}
	return hOut, vOut
}

// cellText joins the text of tokens whose centroid lies inside the cell,
// in reading order.
func cellText(tokens []model.Token, cell model.BBox) string {
	var inside []model.Token
	for _, tok := range tokens {
		if cell.Contains(tok.BBox.Center()) {
			inside = append(inside, tok)
		}
	}
	model.SortTokens(inside)

	var out string
	for i, tok := range inside {
		if i > 0 {
			out += " "
		}
		out += tok.Text
	}
	return out
}
