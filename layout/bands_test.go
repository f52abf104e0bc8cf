package layout

import (
	"testing"

	"github.com/tsawler/reflow/model"
)

func TestReadingOrderSorter_EmptyInput(t *testing.T) {
	sorter := NewReadingOrderSorter()
	if bands := sorter.Sort(nil); bands != nil {
		t.Errorf("expected nil bands for empty input, got %d", len(bands))
	}
}

func TestReadingOrderSorter_GroupsOverlappingTokens(t *testing.T) {
	sorter := NewReadingOrderSorter()

	tokens := []model.Token{
		makeToken(72, 100, 60, 12, "first"),
		makeToken(140, 102, 60, 12, "line"), // 2 units lower, same band
		makeToken(72, 130, 60, 12, "second"),
	}

	bands := sorter.Sort(tokens)
	if len(bands) != 2 {
		t.Fatalf("expected 2 bands, got %d", len(bands))
	}
	if len(bands[0].Tokens) != 2 {
		t.Errorf("expected 2 tokens in first band, got %d", len(bands[0].Tokens))
	}
	if bands[0].Tokens[0].Text != "first" || bands[0].Tokens[1].Text != "line" {
		t.Errorf("band tokens out of x order: %q, %q",
			bands[0].Tokens[0].Text, bands[0].Tokens[1].Text)
	}
}

func TestReadingOrderSorter_BandsOrderedTopToBottom(t *testing.T) {
	sorter := NewReadingOrderSorter()

	// Supplied out of order
	tokens := []model.Token{
		makeToken(72, 300, 60, 12, "bottom"),
		makeToken(72, 100, 60, 12, "top"),
		makeToken(72, 200, 60, 12, "middle"),
	}

	bands := sorter.Sort(tokens)
	if len(bands) != 3 {
		t.Fatalf("expected 3 bands, got %d", len(bands))
	}

	want := []string{"top", "middle", "bottom"}
	for i, w := range want {
		if bands[i].Tokens[0].Text != w {
			t.Errorf("band %d: expected %q, got %q", i, w, bands[i].Tokens[0].Text)
		}
	}

	for i := 1; i < len(bands); i++ {
		if bands[i].Top < bands[i-1].Top {
			t.Errorf("band tops regress at index %d", i)
		}
	}
}

func TestBuildColumns_TwoColumnReadingOrder(t *testing.T) {
	cfg := DefaultColumnConfig()
	cfg.ColumnGap = 50
	seg := NewColumnSegmenterWithConfig(cfg)
	sorter := NewReadingOrderSorter()

	// Two columns separated by a 60-unit gap
	tokens := []model.Token{
		makeToken(260, 120, 140, 12, "col2 line2"),
		makeToken(40, 100, 160, 12, "col1 line1"),
		makeToken(260, 100, 140, 12, "col2 line1"),
		makeToken(40, 120, 160, 12, "col1 line2"),
	}

	columns := BuildColumns(tokens, seg, sorter)
	if len(columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(columns))
	}

	var order []string
	for _, col := range columns {
		for _, band := range col.Bands {
			for _, tok := range band.Tokens {
				order = append(order, tok.Text)
			}
		}
	}

	want := []string{"col1 line1", "col1 line2", "col2 line1", "col2 line2"}
	for i, w := range want {
		if order[i] != w {
			t.Fatalf("reading order mismatch at %d: got %v, want %v", i, order, want)
		}
	}
}

func TestReadingOrderSorter_Deterministic(t *testing.T) {
	sorter := NewReadingOrderSorter()

	tokens := []model.Token{
		makeToken(72, 100, 60, 12, "b"),
		makeToken(72, 100, 60, 12, "a"), // identical position, text breaks tie
		makeToken(150, 100, 60, 12, "c"),
	}

	first := sorter.Sort(tokens)
	for i := 0; i < 10; i++ {
		again := sorter.Sort(tokens)
		if len(again) != len(first) {
			t.Fatal("band count varies between runs")
		}
		for j := range again {
			for k := range again[j].Tokens {
				if again[j].Tokens[k].Text != first[j].Tokens[k].Text {
					t.Fatalf("run %d: nondeterministic token order", i)
				}
			}
		}
	}
}
