package model

// FootnoteMarker is a footnote reference found in the body text (e.g. "*1",
// "※2", "†", "[3]").
type FootnoteMarker struct {
	Marker string
	BBox   BBox
	Page   int

	// Context is the surrounding body text, kept for the report
	Context string
}

// FootnoteDefinition is a footnote body found in the bottom margin region,
// beginning with a marker and a separator.
type FootnoteDefinition struct {
	Marker string
	Text   string
	BBox   BBox
	Page   int
}

// FootnoteMatch pairs a marker with its definition. Confidence is in [0,1]
// and grows with marker-text exactness and page proximity; a match is only
// accepted above 0.5.
type FootnoteMatch struct {
	Marker     FootnoteMarker
	Definition FootnoteDefinition
	Confidence float64
}

// FootnoteReport summarizes footnote extraction for a document
type FootnoteReport struct {
	Matches              []FootnoteMatch
	UnmatchedMarkers     []FootnoteMarker
	UnmatchedDefinitions []FootnoteDefinition
}

// MatchRate returns the fraction of markers that found a definition.
// A document with no markers has a match rate of 1.0.
func (r FootnoteReport) MatchRate() float64 {
	total := len(r.Matches) + len(r.UnmatchedMarkers)
	if total == 0 {
		return 1.0
	}
	return float64(len(r.Matches)) / float64(total)
}
