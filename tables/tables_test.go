package tables

import (
	"strings"
	"testing"

	"github.com/tsawler/reflow/model"
)

func tok(x, y, w, h float64, text string) model.Token {
	return model.Token{
		Text:     text,
		BBox:     model.NewBBox(x, y, x+w, y+h),
		FontSize: h,
		Baseline: y + h,
		Page:     1,
	}
}

// hline and vline build ruled segments
func hline(x0, x1, y float64) model.Segment {
	return model.Segment{X0: x0, Y0: y, X1: x1, Y1: y}
}

func vline(x, y0, y1 float64) model.Segment {
	return model.Segment{X0: x, Y0: y0, X1: x, Y1: y1}
}

// ruledPage builds a page with a 2x2 ruled grid at (100,100)-(300,200)
// and a token centered in each cell.
func ruledPage() (*model.Page, []model.Token) {
	page := &model.Page{
		Number: 1,
		Width:  612,
		Height: 792,
		Segments: []model.Segment{
			hline(100, 300, 100),
			hline(100, 300, 150),
			hline(100, 300, 200),
			vline(100, 100, 200),
			vline(200, 100, 200),
			vline(300, 100, 200),
		},
	}
	tokens := []model.Token{
		tok(120, 115, 40, 12, "name"),
		tok(220, 115, 40, 12, "count"),
		tok(120, 165, 40, 12, "apples"),
		tok(220, 165, 20, 12, "7"),
	}
	return page, tokens
}

func TestRuledDetector_BuildsGrid(t *testing.T) {
	page, tokens := ruledPage()

	tables, err := NewRuledDetector().Detect(page, tokens)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	table := tables[0]
	if table.Strategy != model.StrategyRuled {
		t.Errorf("expected ruled strategy, got %s", table.Strategy)
	}
	if table.Rows() != 2 || table.Cols() != 2 {
		t.Fatalf("expected 2x2 grid, got %dx%d", table.Rows(), table.Cols())
	}
	if table.CellText(0, 0) != "name" || table.CellText(1, 1) != "7" {
		t.Errorf("cell contents wrong: %q, %q", table.CellText(0, 0), table.CellText(1, 1))
	}
	if table.Confidence < 0.8 {
		t.Errorf("ruled confidence should be high, got %f", table.Confidence)
	}
}

func TestRuledDetector_NoSegmentsNoTable(t *testing.T) {
	page := &model.Page{Number: 1, Width: 612, Height: 792}
	tables, err := NewRuledDetector().Detect(page, []model.Token{tok(100, 100, 40, 12, "text")})
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 0 {
		t.Errorf("expected no tables without segments, got %d", len(tables))
	}
}

// alignedTokens lays out a 3x3 borderless table with columns at x=100,
// 250, and 400.
func alignedTokens() []model.Token {
	var tokens []model.Token
	texts := [][]string{
		{"item", "qty", "price"},
		{"nails", "40", "1.20"},
		{"screws", "12", "2.50"},
	}
	for r, rowTexts := range texts {
		y := 100 + float64(r)*20
		for c, s := range rowTexts {
			tokens = append(tokens, tok(100+float64(c)*150, y, 60, 12, s))
		}
	}
	return tokens
}

func TestAlignmentDetector_BorderlessTable(t *testing.T) {
	page := &model.Page{Number: 1, Width: 612, Height: 792}
	tokens := alignedTokens()

	tables, err := NewAlignmentDetector().Detect(page, tokens)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}

	table := tables[0]
	if table.Strategy != model.StrategyAlignment {
		t.Errorf("expected alignment strategy, got %s", table.Strategy)
	}
	if table.Rows() != 3 || table.Cols() != 3 {
		t.Fatalf("expected 3x3 grid, got %dx%d", table.Rows(), table.Cols())
	}
	if table.CellText(2, 2) != "2.50" {
		t.Errorf("cell (2,2): got %q", table.CellText(2, 2))
	}
	if table.Confidence >= 0.9 {
		t.Errorf("alignment confidence should be medium, got %f", table.Confidence)
	}
}

func TestAlignmentDetector_TwoRowsNotATable(t *testing.T) {
	page := &model.Page{Number: 1, Width: 612, Height: 792}
	tokens := alignedTokens()[:6] // only two rows

	tables, err := NewAlignmentDetector().Detect(page, tokens)
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 0 {
		t.Errorf("two aligned rows must not form a table, got %d", len(tables))
	}
}

func TestDetect_RuledPreferredOnOverlap(t *testing.T) {
	// Ruled grid plus aligned text inside the same region: only the
	// ruled result survives reconciliation.
	page, tokens := ruledPage()

	tables, _, err := Detect(page, tokens, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	for _, table := range tables {
		if table.BBox.IoU(model.NewBBox(100, 100, 300, 200)) > 0.25 &&
			table.Strategy != model.StrategyRuled {
			t.Errorf("alignment table survived over ruled region")
		}
	}
}

func TestExcludeTableTokens(t *testing.T) {
	page, tokens := ruledPage()
	tables, err := NewRuledDetector().Detect(page, tokens)
	if err != nil {
		t.Fatal(err)
	}

	outsideTok := tok(100, 400, 200, 12, "body paragraph below the table")
	all := append(append([]model.Token{}, tokens...), outsideTok)

	outside, inside := ExcludeTableTokens(all, tables)
	if len(inside) != 4 {
		t.Errorf("expected 4 interior tokens, got %d", len(inside))
	}
	if len(outside) != 1 || outside[0].Text != outsideTok.Text {
		t.Errorf("expected only the body token outside, got %v", outside)
	}

	// No interior token may appear in the outside set
	for _, o := range outside {
		for _, table := range tables {
			if table.ContainsToken(o) {
				t.Errorf("token %q inside table leaked to linear output", o.Text)
			}
		}
	}
}

func TestFormatter_AlignedGrid(t *testing.T) {
	page, tokens := ruledPage()
	tables, _ := NewRuledDetector().Detect(page, tokens)

	out := NewFormatter().Format(tables[0])
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, rule, and one data row, got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "name") || !strings.Contains(lines[0], "count") {
		t.Errorf("header row wrong: %q", lines[0])
	}
	if !strings.Contains(lines[2], "apples") {
		t.Errorf("data row wrong: %q", lines[2])
	}
}
