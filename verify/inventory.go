// Package verify guards extraction fidelity: it freezes a pre-filter
// element inventory, checks the finished text against it for coverage and
// hallucination, and scores overall quality.
package verify

import (
	"github.com/tsawler/reflow/model"
)

// InventoryConfig holds configuration for the element census
type InventoryConfig struct {
	// TopRatio and BottomRatio bound the top and bottom position regions
	// Defaults: 0.15 each
	TopRatio    float64
	BottomRatio float64

	// Size class boundaries in points
	// Defaults: large > 18, standard >= 10, small >= 6, tiny below
	LargeMin    float64
	StandardMin float64
	SmallMin    float64
}

// DefaultInventoryConfig returns sensible default configuration
func DefaultInventoryConfig() InventoryConfig {
	return InventoryConfig{
		TopRatio:    0.15,
		BottomRatio: 0.15,
		LargeMin:    18.0,
		StandardMin: 10.0,
		SmallMin:    6.0,
	}
}

// InventoryAnalyzer counts every token before any filtering, bucketed by
// position region and size class. The result is the frozen baseline that
// all later verification compares against; it is never recomputed.
type InventoryAnalyzer struct {
	config InventoryConfig
}

// NewInventoryAnalyzer creates an analyzer with default configuration
func NewInventoryAnalyzer() *InventoryAnalyzer {
	return &InventoryAnalyzer{config: DefaultInventoryConfig()}
}

// NewInventoryAnalyzerWithConfig creates an analyzer with custom configuration
func NewInventoryAnalyzerWithConfig(config InventoryConfig) *InventoryAnalyzer {
	return &InventoryAnalyzer{config: config}
}

// Analyze censuses every page of the document
func (a *InventoryAnalyzer) Analyze(pages []*model.Page) model.Inventory {
	inv := model.Inventory{Pages: make([]model.PageInventory, 0, len(pages))}
	for _, page := range pages {
		inv.Pages = append(inv.Pages, a.AnalyzePage(page))
	}
	return inv
}

// AnalyzePage censuses one page
func (a *InventoryAnalyzer) AnalyzePage(page *model.Page) model.PageInventory {
	pi := model.PageInventory{
		Page:     page.Number,
		Total:    len(page.Tokens),
		ByRegion: make(map[model.PositionRegion]int),
		BySize:   make(map[model.SizeClass]int),
	}

	for _, tok := range page.Tokens {
		pi.ByRegion[a.regionOf(tok, page.Height)]++
		pi.BySize[a.sizeClassOf(tok)]++
	}
	return pi
}

func (a *InventoryAnalyzer) regionOf(tok model.Token, pageHeight float64) model.PositionRegion {
	if pageHeight <= 0 {
		return model.RegionMiddle
	}
	center := tok.BBox.Center().Y
	switch {
	case center <= pageHeight*a.config.TopRatio:
		return model.RegionTop
	case center >= pageHeight*(1-a.config.BottomRatio):
		return model.RegionBottom
	default:
		return model.RegionMiddle
	}
}

func (a *InventoryAnalyzer) sizeClassOf(tok model.Token) model.SizeClass {
	switch {
	case tok.FontSize > a.config.LargeMin:
		return model.SizeLarge
	case tok.FontSize >= a.config.StandardMin:
		return model.SizeStandard
	case tok.FontSize >= a.config.SmallMin:
		return model.SizeSmall
	default:
		return model.SizeTiny
	}
}

// Census buckets an arbitrary token set by position region using the same
// boundaries as the frozen inventory, so extracted counts compare cleanly
// against the baseline.
func (a *InventoryAnalyzer) Census(tokens []model.Token, pageHeight float64) map[model.PositionRegion]int {
	out := make(map[model.PositionRegion]int)
	for _, tok := range tokens {
		out[a.regionOf(tok, pageHeight)]++
	}
	return out
}

// Coverage computes the ratio of extracted tokens to the frozen baseline,
// clamped to [0,1] buckets only at the status level; ratios above 1 suggest
// duplication and are reported as-is.
func Coverage(extracted int, inv model.Inventory) float64 {
	total := inv.Total()
	if total == 0 {
		return 1.0
	}
	return float64(extracted) / float64(total)
}
