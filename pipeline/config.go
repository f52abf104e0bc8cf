// Package pipeline orchestrates the full extraction run for a document:
// layout analysis, filtering, table and footnote extraction, page assembly,
// verification, scoring, and bounded remediation retry.
package pipeline

import (
	"github.com/tsawler/reflow/footnotes"
	"github.com/tsawler/reflow/layout"
	"github.com/tsawler/reflow/tables"
	"github.com/tsawler/reflow/verify"
)

// Config is the complete parameter set for one pipeline run. A run never
// mutates its Config; remediation builds a fresh value for each attempt.
type Config struct {
	Column    layout.ColumnConfig
	Band      layout.BandConfig
	Repeating layout.RepeatingConfig
	Filter    layout.FilterConfig
	Script    layout.ScriptConfig

	Table tables.Config

	FootnoteExtractor footnotes.ExtractorConfig
	FootnoteMatcher   footnotes.MatcherConfig

	Inventory verify.InventoryConfig
	Verifier  verify.VerifierConfig

	// SpaceGapRatio: a horizontal gap wider than SpaceGapRatio × font size
	// between adjacent Latin tokens gets a space during assembly
	// Default: 0.3
	SpaceGapRatio float64

	// DedupIoU: two tokens with identical text and bbox IoU above this are
	// duplicates; the later one is dropped before inventory
	// Default: 0.5
	DedupIoU float64

	// ReplacementRatio: a token whose runes are mostly U+FFFD above this
	// ratio counts as an encoding anomaly
	// Default: 0.3
	ReplacementRatio float64

	// PageMarkers inserts "[page N]" boundary lines into the joined text
	PageMarkers bool

	// OCR, when non-nil, re-recognizes pages whose token stream is empty
	// or dominated by encoding damage. Nil leaves such pages degraded.
	OCR OCRCollaborator

	// Consistency, when non-nil, cross-checks the final text against a
	// sample of the source tokens after scoring. Nil skips the check.
	Consistency ConsistencyChecker
}

// DefaultConfig returns the parameter set used for the first attempt
func DefaultConfig() Config {
	return Config{
		Column:            layout.DefaultColumnConfig(),
		Band:              layout.DefaultBandConfig(),
		Repeating:         layout.DefaultRepeatingConfig(),
		Filter:            layout.DefaultFilterConfig(),
		Script:            layout.DefaultScriptConfig(),
		Table:             tables.DefaultConfig(),
		FootnoteExtractor: footnotes.DefaultExtractorConfig(),
		FootnoteMatcher:   footnotes.DefaultMatcherConfig(),
		Inventory:         verify.DefaultInventoryConfig(),
		Verifier:          verify.DefaultVerifierConfig(),
		SpaceGapRatio:     0.3,
		DedupIoU:          0.5,
		ReplacementRatio:  0.3,
	}
}

// ParameterSets returns the ordered configurations remediation steps
// through. Set 1 is the default; set 2 disables the margin digit filter,
// recovering content lost to over-aggressive page-number removal; set 3
// additionally widens the column gap by half, merging columns that were
// split spuriously.
func ParameterSets(base Config) []Config {
	set2 := base
	set2.Filter.DisableMarginFilter = true

	set3 := set2
	set3.Column.ColumnGap = base.Column.ColumnGap * 1.5

	return []Config{base, set2, set3}
}
