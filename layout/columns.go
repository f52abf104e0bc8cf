package layout

import (
	"sort"

	"github.com/tsawler/reflow/model"
)

// ColumnConfig holds configuration for column segmentation
type ColumnConfig struct {
	// ColumnGap is the minimum horizontal whitespace gap, in page units,
	// to treat as a column separator
	// Default: 50
	ColumnGap float64

	// MinColumnWidth is the minimum width for a region to count as a column
	// Default: 40
	MinColumnWidth float64

	// MaxColumns is the maximum number of columns to detect
	// Default: 6
	MaxColumns int

	// MergeTolerance is the slack allowed when merging adjacent covered
	// X ranges, so sub-threshold noise gaps never split a column
	// Default: 5
	MergeTolerance float64
}

// DefaultColumnConfig returns sensible default configuration
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		ColumnGap:      50.0,
		MinColumnWidth: 40.0,
		MaxColumns:     6,
		MergeTolerance: 5.0,
	}
}

// ColumnSegmenter partitions a page's tokens into left-to-right reading
// columns by scanning the X projection for whitespace gaps wider than the
// configured threshold. When no gap exceeds the threshold the page is a
// single column.
type ColumnSegmenter struct {
	config ColumnConfig
}

// NewColumnSegmenter creates a segmenter with default configuration
func NewColumnSegmenter() *ColumnSegmenter {
	return &ColumnSegmenter{config: DefaultColumnConfig()}
}

// NewColumnSegmenterWithConfig creates a segmenter with custom configuration
func NewColumnSegmenterWithConfig(config ColumnConfig) *ColumnSegmenter {
	return &ColumnSegmenter{config: config}
}

// span is a covered X interval
type span struct {
	left, right float64
}

// Segment partitions tokens into column groups, left to right. Tokens are
// never copied into more than one group.
func (s *ColumnSegmenter) Segment(tokens []model.Token) [][]model.Token {
	if len(tokens) == 0 {
		return nil
	}

	// Collect the X intervals covered by tokens
	spans := make([]span, 0, len(tokens))
	for _, tok := range tokens {
		spans = append(spans, span{left: tok.BBox.X0, right: tok.BBox.X1})
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].left != spans[j].left {
			return spans[i].left < spans[j].left
		}
		return spans[i].right < spans[j].right
	})

	merged := mergeSpans(spans, s.config.MergeTolerance)

	// Column boundaries sit in the gaps between merged regions. Only gaps
	// at least ColumnGap wide split the page; this naturally yields the
	// minimum column count consistent with the observed gaps.
	var boundaries []float64
	for i := 0; i < len(merged)-1; i++ {
		gap := merged[i+1].left - merged[i].right
		if gap >= s.config.ColumnGap {
			boundaries = append(boundaries, (merged[i].right+merged[i+1].left)/2)
		}
	}

	if len(boundaries) >= s.config.MaxColumns {
		boundaries = boundaries[:s.config.MaxColumns-1]
	}

	if len(boundaries) == 0 {
		single := make([]model.Token, len(tokens))
		copy(single, tokens)
		return [][]model.Token{single}
	}

	groups := make([][]model.Token, len(boundaries)+1)
	for _, tok := range tokens {
		idx := sort.SearchFloat64s(boundaries, tok.BBox.Center().X)
		groups[idx] = append(groups[idx], tok)
	}

	// Drop empty groups and merge slivers narrower than MinColumnWidth
	// into their left neighbor
	var out [][]model.Token
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		if len(out) > 0 && groupWidth(g) < s.config.MinColumnWidth {
			out[len(out)-1] = append(out[len(out)-1], g...)
			continue
		}
		out = append(out, g)
	}
	return out
}

// mergeSpans merges overlapping or near-adjacent X intervals
func mergeSpans(spans []span, tolerance float64) []span {
	if len(spans) == 0 {
		return nil
	}

	merged := []span{spans[0]}
	for _, cur := range spans[1:] {
		last := &merged[len(merged)-1]
		if cur.left <= last.right+tolerance {
			if cur.right > last.right {
				last.right = cur.right
			}
		} else {
			merged = append(merged, cur)
		}
	}
	return merged
}

func groupWidth(tokens []model.Token) float64 {
	if len(tokens) == 0 {
		return 0
	}
	left, right := tokens[0].BBox.X0, tokens[0].BBox.X1
	for _, tok := range tokens[1:] {
		if tok.BBox.X0 < left {
			left = tok.BBox.X0
		}
		if tok.BBox.X1 > right {
			right = tok.BBox.X1
		}
	}
	return right - left
}
