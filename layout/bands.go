package layout

import (
	"sort"

	"github.com/tsawler/reflow/model"
)

// BandConfig holds configuration for line banding
type BandConfig struct {
	// LineTolerance is the maximum vertical distance, in page units,
	// between a token's top and the running band top for the token to
	// join the band
	// Default: 15
	LineTolerance float64
}

// DefaultBandConfig returns sensible default configuration
func DefaultBandConfig() BandConfig {
	return BandConfig{
		LineTolerance: 15.0,
	}
}

// ReadingOrderSorter groups a column's tokens into horizontal bands (one
// visual line each) and orders the bands top to bottom. Within a band,
// tokens are ordered left to right. The concatenation of bands is the
// canonical reading order for the column.
type ReadingOrderSorter struct {
	config BandConfig
}

// NewReadingOrderSorter creates a sorter with default configuration
func NewReadingOrderSorter() *ReadingOrderSorter {
	return &ReadingOrderSorter{config: DefaultBandConfig()}
}

// NewReadingOrderSorterWithConfig creates a sorter with custom configuration
func NewReadingOrderSorterWithConfig(config BandConfig) *ReadingOrderSorter {
	return &ReadingOrderSorter{config: config}
}

// Sort groups tokens into bands and returns them in reading order.
// The input slice is not modified.
func (s *ReadingOrderSorter) Sort(tokens []model.Token) []model.Band {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	model.SortTokens(sorted)

	var bands []model.Band
	current := newBand(sorted[0])

	for _, tok := range sorted[1:] {
		// A token joins the current band when its vertical range
		// overlaps the band's, within the line tolerance
		if tok.BBox.Y0 <= current.Bottom && tok.BBox.Y0-current.Top <= s.config.LineTolerance {
			current.Tokens = append(current.Tokens, tok)
			if tok.BBox.Y1 > current.Bottom {
				current.Bottom = tok.BBox.Y1
			}
			continue
		}
		bands = append(bands, finishBand(current))
		current = newBand(tok)
	}
	bands = append(bands, finishBand(current))

	sort.SliceStable(bands, func(i, j int) bool {
		return bands[i].Top < bands[j].Top
	})
	return bands
}

func newBand(tok model.Token) model.Band {
	return model.Band{
		Tokens:   []model.Token{tok},
		Top:      tok.BBox.Y0,
		Bottom:   tok.BBox.Y1,
		Baseline: tok.Baseline,
	}
}

// finishBand orders the band's tokens left to right and settles its baseline
// on the dominant (most common) token baseline.
func finishBand(b model.Band) model.Band {
	sort.SliceStable(b.Tokens, func(i, j int) bool {
		if b.Tokens[i].BBox.X0 != b.Tokens[j].BBox.X0 {
			return b.Tokens[i].BBox.X0 < b.Tokens[j].BBox.X0
		}
		return b.Tokens[i].BBox.Y0 < b.Tokens[j].BBox.Y0
	})

	counts := make(map[float64]int)
	for _, tok := range b.Tokens {
		counts[tok.Baseline]++
	}
	best, bestCount := b.Baseline, 0
	for _, tok := range b.Tokens {
		if c := counts[tok.Baseline]; c > bestCount || (c == bestCount && tok.Baseline > best) {
			best, bestCount = tok.Baseline, c
		}
	}
	b.Baseline = best
	return b
}

// BuildColumns runs segmentation and banding for a page's tokens and returns
// finished columns in left-to-right order. Each token lands in exactly one
// band of exactly one column.
func BuildColumns(tokens []model.Token, seg *ColumnSegmenter, sorter *ReadingOrderSorter) []model.Column {
	groups := seg.Segment(tokens)

	columns := make([]model.Column, 0, len(groups))
	for i, group := range groups {
		bands := sorter.Sort(group)
		col := model.Column{
			Bands: bands,
			Index: i,
		}
		if len(bands) > 0 {
			box := bands[0].BBox()
			for _, b := range bands[1:] {
				box = box.Union(b.BBox())
			}
			col.BBox = box
		}
		columns = append(columns, col)
	}
	return columns
}
