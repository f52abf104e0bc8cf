package footnotes

import (
	"strings"

	"github.com/tsawler/reflow/layout"
	"github.com/tsawler/reflow/model"
)

// ExtractorConfig holds configuration for footnote extraction
type ExtractorConfig struct {
	// RegionRatio is the fraction of page height, measured from the
	// bottom, scanned for definitions
	// Default: 0.2 (bottom 20%)
	RegionRatio float64

	// LineTolerance groups definition tokens into lines
	// Default: 15
	LineTolerance float64
}

// DefaultExtractorConfig returns sensible default configuration
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		RegionRatio:   0.2,
		LineTolerance: 15.0,
	}
}

// Extractor finds footnote markers in the body region and definitions in
// the bottom margin region of a page.
type Extractor struct {
	config ExtractorConfig
	sorter *layout.ReadingOrderSorter
}

// NewExtractor creates an extractor with default configuration
func NewExtractor() *Extractor {
	return NewExtractorWithConfig(DefaultExtractorConfig())
}

// NewExtractorWithConfig creates an extractor with custom configuration
func NewExtractorWithConfig(config ExtractorConfig) *Extractor {
	return &Extractor{
		config: config,
		sorter: layout.NewReadingOrderSorterWithConfig(layout.BandConfig{
			LineTolerance: config.LineTolerance,
		}),
	}
}

// Extract scans a page's tokens and returns its markers and definitions.
// The boundary between body and definition region is RegionRatio from the
// page bottom.
func (e *Extractor) Extract(tokens []model.Token, pageHeight float64, pageNo int) ([]model.FootnoteMarker, []model.FootnoteDefinition) {
	if len(tokens) == 0 || pageHeight <= 0 {
		return nil, nil
	}

	boundary := pageHeight * (1 - e.config.RegionRatio)

	var body, bottom []model.Token
	for _, tok := range tokens {
		if tok.BBox.Y0 < boundary {
			body = append(body, tok)
		} else {
			bottom = append(bottom, tok)
		}
	}

	markers := e.findMarkers(body, pageNo)
	definitions := e.findDefinitions(bottom, pageNo)
	return markers, definitions
}

// findMarkers locates marker tokens in the body region
func (e *Extractor) findMarkers(tokens []model.Token, pageNo int) []model.FootnoteMarker {
	var markers []model.FootnoteMarker

	bands := e.sorter.Sort(tokens)
	for _, band := range bands {
		for i, tok := range band.Tokens {
			text := strings.TrimSpace(tok.Text)
			if _, ok := MatchMarker(text); !ok {
				continue
			}
			markers = append(markers, model.FootnoteMarker{
				Marker:  text,
				BBox:    tok.BBox,
				Page:    pageNo,
				Context: bandContext(band, i),
			})
		}
	}
	return markers
}

// bandContext returns up to three tokens either side of the marker
func bandContext(band model.Band, idx int) string {
	lo := idx - 3
	if lo < 0 {
		lo = 0
	}
	hi := idx + 4
	if hi > len(band.Tokens) {
		hi = len(band.Tokens)
	}

	parts := make([]string, 0, hi-lo)
	for _, tok := range band.Tokens[lo:hi] {
		parts = append(parts, tok.Text)
	}
	return strings.Join(parts, " ")
}

// findDefinitions assembles the bottom-region tokens into lines and walks
// them top to bottom. A line opening with a marker and separator starts a
// definition; following lines without one are appended to the open
// definition until the next marker or page end.
func (e *Extractor) findDefinitions(tokens []model.Token, pageNo int) []model.FootnoteDefinition {
	bands := e.sorter.Sort(tokens)
	if len(bands) == 0 {
		return nil
	}

	var defs []model.FootnoteDefinition
	var open *model.FootnoteDefinition

	for _, band := range bands {
		line := bandText(band)
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if marker, ok := MatchDefinitionStart(trimmed); ok {
			if open != nil {
				defs = append(defs, *open)
			}
			body := strings.TrimSpace(trimmed[len(marker):])
			body = strings.TrimLeft(body, ":： \t")
			open = &model.FootnoteDefinition{
				Marker: marker,
				Text:   body,
				BBox:   band.BBox(),
				Page:   pageNo,
			}
			continue
		}

		if open != nil {
			// Continuation line of the open definition
			open.Text = strings.TrimSpace(open.Text + " " + trimmed)
			open.BBox = open.BBox.Union(band.BBox())
		}
		// Lines before any marker are not definitions; they are body
		// text that happens to sit low on the page
	}
	if open != nil {
		defs = append(defs, *open)
	}
	return defs
}

// bandText joins a band's tokens with single spaces
func bandText(band model.Band) string {
	parts := make([]string, 0, len(band.Tokens))
	for _, tok := range band.Tokens {
		parts = append(parts, tok.Text)
	}
	return strings.Join(parts, " ")
}
