package model

import "sort"

// Token is a positioned text unit produced by the upstream parser: text,
// bounding box, font size, baseline, and page number. Tokens are immutable
// once produced; the pipeline classifies and copies them into derived
// structures but never rewrites one in place.
type Token struct {
	Text     string
	BBox     BBox
	FontSize float64
	Baseline float64
	Page     int

	// Script marks the token as an attached super/subscript. Zero for
	// ordinary body text.
	Script ScriptKind

	// Confidence is set for tokens produced by the OCR collaborator
	// (0.0 to 1.0). Parser-produced tokens carry 1.0.
	Confidence float64
}

// ScriptKind classifies a token's script attachment
type ScriptKind int

const (
	ScriptNone ScriptKind = iota
	ScriptSuper
	ScriptSub
)

func (s ScriptKind) String() string {
	switch s {
	case ScriptSuper:
		return "superscript"
	case ScriptSub:
		return "subscript"
	default:
		return "none"
	}
}

// Band is one visual line: an ordered run of tokens whose vertical extents
// overlap within a line-height tolerance. A token belongs to exactly one band.
type Band struct {
	// Tokens sorted left to right (by X0)
	Tokens []Token

	// Top is the smallest Y0 among the band's tokens
	Top float64

	// Bottom is the largest Y1 among the band's tokens
	Bottom float64

	// Baseline is the dominant baseline Y of the band
	Baseline float64
}

// BBox returns the bounding box covering all tokens in the band
func (b Band) BBox() BBox {
	if len(b.Tokens) == 0 {
		return BBox{}
	}
	box := b.Tokens[0].BBox
	for _, tok := range b.Tokens[1:] {
		box = box.Union(tok.BBox)
	}
	return box
}

// AverageFontSize returns the mean font size of tokens in the band,
// ignoring tokens with no size information.
func (b Band) AverageFontSize() float64 {
	var sum float64
	var n int
	for _, tok := range b.Tokens {
		if tok.FontSize > 0 {
			sum += tok.FontSize
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Column is an ordered sequence of bands at one left-to-right position on the
// page. A band belongs to exactly one column.
type Column struct {
	// Bands sorted top to bottom
	Bands []Band

	// BBox is the bounding box of the column
	BBox BBox

	// Index is the column's position on the page (0-based, left to right)
	Index int
}

// TokenCount returns the number of tokens across all bands
func (c Column) TokenCount() int {
	n := 0
	for _, b := range c.Bands {
		n += len(b.Tokens)
	}
	return n
}

// Page owns the tokens for one page plus everything derived from them:
// columns in reading order, detected tables, and footnotes.
type Page struct {
	// Number is the 1-based page number
	Number int

	// Width and Height are the page dimensions from the upstream parser
	Width  float64
	Height float64

	// Tokens are the raw tokens as supplied by the parser, before any
	// filtering. The page is the sole owner of this slice.
	Tokens []Token

	// Segments are drawn line segments from the parser, used by
	// ruled-table detection. May be empty.
	Segments []Segment

	// Columns in left-to-right order, built by layout analysis
	Columns []Column

	// Tables detected on the page
	Tables []*Table

	// Markers and Definitions are the page's footnote components
	Markers     []FootnoteMarker
	Definitions []FootnoteDefinition

	// Rotation is the page rotation in degrees (0, 90, 180, 270)
	Rotation int

	// Unextractable marks a page whose token stream was empty or unusable
	Unextractable bool
}

// SortTokens orders tokens by top coordinate, then left edge, then text.
// The full ordering keeps repeated runs deterministic even when coordinates
// collide exactly.
func SortTokens(tokens []Token) {
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].BBox.Y0 != tokens[j].BBox.Y0 {
			return tokens[i].BBox.Y0 < tokens[j].BBox.Y0
		}
		if tokens[i].BBox.X0 != tokens[j].BBox.X0 {
			return tokens[i].BBox.X0 < tokens[j].BBox.X0
		}
		return tokens[i].Text < tokens[j].Text
	})
}
