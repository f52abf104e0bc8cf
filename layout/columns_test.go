package layout

import (
	"testing"

	"github.com/tsawler/reflow/model"
)

// makeToken builds a token from its left, top, width, and height
func makeToken(x, y, w, h float64, text string) model.Token {
	return model.Token{
		Text:     text,
		BBox:     model.NewBBox(x, y, x+w, y+h),
		FontSize: h,
		Baseline: y + h,
		Page:     1,
	}
}

func TestColumnSegmenter_EmptyInput(t *testing.T) {
	seg := NewColumnSegmenter()

	if groups := seg.Segment(nil); groups != nil {
		t.Errorf("expected nil for empty input, got %d groups", len(groups))
	}
}

func TestColumnSegmenter_SingleColumn(t *testing.T) {
	seg := NewColumnSegmenter()

	tokens := []model.Token{
		makeToken(72, 100, 200, 12, "First line of body text"),
		makeToken(72, 120, 200, 12, "Second line continues"),
		makeToken(72, 140, 180, 12, "Third line ends here"),
	}

	groups := seg.Segment(tokens)
	if len(groups) != 1 {
		t.Fatalf("expected 1 column, got %d", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("expected 3 tokens in single column, got %d", len(groups[0]))
	}
}

func TestColumnSegmenter_TwoColumnsAcrossGap(t *testing.T) {
	// Two columns separated by a 60-unit gap, threshold 50: every token
	// of the left column must precede every token of the right column.
	cfg := DefaultColumnConfig()
	cfg.ColumnGap = 50
	seg := NewColumnSegmenterWithConfig(cfg)

	tokens := []model.Token{
		makeToken(40, 100, 160, 12, "left one"),
		makeToken(260, 100, 160, 12, "right one"),
		makeToken(40, 120, 160, 12, "left two"),
		makeToken(260, 120, 160, 12, "right two"),
	}

	groups := seg.Segment(tokens)
	if len(groups) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(groups))
	}
	for _, tok := range groups[0] {
		if tok.BBox.X0 > 200 {
			t.Errorf("token %q landed in the left column", tok.Text)
		}
	}
	for _, tok := range groups[1] {
		if tok.BBox.X0 < 200 {
			t.Errorf("token %q landed in the right column", tok.Text)
		}
	}
}

func TestColumnSegmenter_SubThresholdGapDoesNotSplit(t *testing.T) {
	cfg := DefaultColumnConfig()
	cfg.ColumnGap = 50
	seg := NewColumnSegmenterWithConfig(cfg)

	// 30-unit gap between the word groups: below threshold, one column
	tokens := []model.Token{
		makeToken(40, 100, 100, 12, "alpha"),
		makeToken(170, 100, 100, 12, "beta"),
	}

	groups := seg.Segment(tokens)
	if len(groups) != 1 {
		t.Errorf("expected sub-threshold gap to stay one column, got %d", len(groups))
	}
}

func TestColumnSegmenter_PrefersMinimumColumnCount(t *testing.T) {
	cfg := DefaultColumnConfig()
	cfg.ColumnGap = 50
	seg := NewColumnSegmenterWithConfig(cfg)

	// Ragged line ends create small gaps inside the left column; only
	// the wide inter-column gap may split.
	tokens := []model.Token{
		makeToken(40, 100, 80, 12, "short"),
		makeToken(130, 100, 70, 12, "words"),
		makeToken(40, 120, 160, 12, "a longer full line"),
		makeToken(300, 100, 120, 12, "second column"),
		makeToken(300, 120, 120, 12, "more content"),
	}

	groups := seg.Segment(tokens)
	if len(groups) != 2 {
		t.Fatalf("expected exactly 2 columns, got %d", len(groups))
	}
	if len(groups[0]) != 3 {
		t.Errorf("expected 3 tokens in column 1, got %d", len(groups[0]))
	}
}
