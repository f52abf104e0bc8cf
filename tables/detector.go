// Package tables finds tabular regions on a page with two independent
// strategies — a ruled-line grid built from drawn segments, and
// text-alignment clustering — reconciles their results, and formats the
// winning grids for reinsertion into the linear output.
package tables

import (
	"sort"
	"strconv"

	"github.com/tsawler/reflow/model"
)

// Detector is the interface for table detection strategies
type Detector interface {
	// Detect finds tables among a page's tokens and segments
	Detect(page *model.Page, tokens []model.Token) ([]*model.Table, error)

	// Name returns the strategy name
	Name() string

	// Configure sets detector parameters
	Configure(config Config) error
}

// Config holds detector configuration
type Config struct {
	// Minimum rows for a valid alignment-detected table
	MinRows int

	// Minimum columns for a valid alignment-detected table
	MinCols int

	// Tolerance for row/column alignment, in page units
	AlignmentTolerance float64

	// Minimum segment length considered by ruled detection
	MinLineLength float64

	// OverlapIoU is the bbox intersection-over-union above which two
	// detections from different strategies are treated as the same
	// region during reconciliation
	OverlapIoU float64

	// RuledConfidence and AlignmentConfidence are the fixed confidences
	// assigned per strategy
	RuledConfidence     float64
	AlignmentConfidence float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:             3,
		MinCols:             3,
		AlignmentTolerance:  5.0,
		MinLineLength:       10.0,
		OverlapIoU:          0.25,
		RuledConfidence:     0.9,
		AlignmentConfidence: 0.6,
	}
}

// Detect runs both strategies over the page and reconciles the results.
// The ruled strategy wins whenever both fire over the same region; cell
// boundaries always come from a single strategy, never merged.
func Detect(page *model.Page, tokens []model.Token, config Config) ([]*model.Table, []string, error) {
	var warnings []string

	ruled := NewRuledDetector()
	if err := ruled.Configure(config); err != nil {
		return nil, nil, err
	}
	ruledTables, err := ruled.Detect(page, tokens)
	if err != nil {
		return nil, nil, err
	}

	aligned := NewAlignmentDetector()
	if err := aligned.Configure(config); err != nil {
		return nil, nil, err
	}
	alignedTables, err := aligned.Detect(page, tokens)
	if err != nil {
		return nil, nil, err
	}

	result := make([]*model.Table, 0, len(ruledTables)+len(alignedTables))
	result = append(result, ruledTables...)

	for _, at := range alignedTables {
		conflict := false
		for _, rt := range ruledTables {
			if at.BBox.IoU(rt.BBox) > config.OverlapIoU {
				conflict = true
				if at.Rows() != rt.Rows() || at.Cols() != rt.Cols() {
					// Strategies disagree on structure; the ruled grid
					// is kept but its confidence is knocked down
					warnings = append(warnings,
						"table detection ambiguous on page "+strconv.Itoa(page.Number)+
							": strategies disagree on grid shape, ruled result kept")
					if rt.Confidence > config.AlignmentConfidence {
						rt.Confidence = config.AlignmentConfidence
					}
				}
				break
			}
		}
		if !conflict {
			result = append(result, at)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].BBox.Y0 != result[j].BBox.Y0 {
			return result[i].BBox.Y0 < result[j].BBox.Y0
		}
		return result[i].BBox.X0 < result[j].BBox.X0
	})
	return result, warnings, nil
}

// ExcludeTableTokens splits tokens into those outside every table and those
// inside one, by centroid containment. Interior tokens never reach the
// linear output.
func ExcludeTableTokens(tokens []model.Token, tables []*model.Table) (outside, inside []model.Token) {
	if len(tables) == 0 {
		return tokens, nil
	}
	for _, tok := range tokens {
		contained := false
		for _, tbl := range tables {
			if tbl.ContainsToken(tok) {
				contained = true
				break
			}
		}
		if contained {
			inside = append(inside, tok)
		} else {
			outside = append(outside, tok)
		}
	}
	return outside, inside
}
