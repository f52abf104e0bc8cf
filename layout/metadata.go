package layout

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/width"

	"github.com/tsawler/reflow/model"
)

// FilterConfig holds configuration for metadata filtering
type FilterConfig struct {
	// MarginRatio is the outer fraction of page height treated as margin
	// when deciding whether a lone digit is a page number
	// Default: 0.05 (outer 5%)
	MarginRatio float64

	// ProximityRadius is the distance within which another token counts
	// as nearby content, disqualifying the lone-digit removal rule
	// Default: 50
	ProximityRadius float64

	// DisableMarginFilter turns off the lone-margin-digit rule entirely.
	// Remediation attempt 2 sets this when coverage came back low.
	DisableMarginFilter bool

	// SignatureQuantum must match the quantum used by the repeating
	// element detector so signature lookups line up
	// Default: 10
	SignatureQuantum float64
}

// DefaultFilterConfig returns sensible default configuration
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		MarginRatio:      0.05,
		ProximityRadius:  50.0,
		SignatureQuantum: 10.0,
	}
}

// FilterAction is what a rule decides for a token
type FilterAction int

const (
	ActionRetain FilterAction = iota
	ActionRemove
)

// FilterRule is one declarative classification rule. Rules run in order and
// the first match wins; tokens matching no rule are retained (default-allow).
type FilterRule struct {
	// Name tags the rule in removal audit records
	Name string

	// Match reports whether the rule applies to the token
	Match func(f *MetadataFilter, tok model.Token, ctx pageContext) bool

	// Action taken when the rule matches
	Action FilterAction

	// Reason is recorded for removals
	Reason model.RemovalReason
}

// pageContext carries the page-level facts rules need
type pageContext struct {
	pageHeight float64
	tokens     []model.Token

	// index of the token under classification within tokens
	index int
}

// Section-number patterns: decimal numbering, bracketed or circled item
// numbers, and CJK chapter/article markers. All of these are retained
// wherever they appear on the page.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\d+(\.\d+)*\.?$`), // 1.2, 3.1.4, 2.1.
	regexp.MustCompile(`^\(\d+\)$`),             // (1)
	regexp.MustCompile(`^[①②③④⑤⑥⑦⑧⑨⑩⑪⑫⑬⑭⑮⑯⑰⑱⑲⑳]$`),
	regexp.MustCompile(`^第\d+[章条節項]$`), // 第1章, 第2条
}

// Footnote-marker patterns mirror the footnotes package set; marker tokens
// are never removed as page metadata.
var markerLikePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\*\d*$`),
	regexp.MustCompile(`^※\d*$`),
	regexp.MustCompile(`^注\d*$`),
	regexp.MustCompile(`^[†‡]$`),
	regexp.MustCompile(`^\[\d+\]$`),
	regexp.MustCompile(`^[¹²³⁴⁵⁶⁷⁸⁹⁰]+$`),
}

// Strict page-number patterns: only forms that cannot plausibly be body
// content are removed on shape alone.
var pageNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?i)page\s*\d+$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`), // 3 / 12
	regexp.MustCompile(`^-\s*\d+\s*-$`),   // - 3 -
	regexp.MustCompile(`^[（(]\d+[)）]頁?$`),
	regexp.MustCompile(`^\d+頁$`),
	regexp.MustCompile(`^(?i)p\.\s*\d+$`),
}

// MetadataFilter disambiguates removable page metadata from retainable
// content. The bias is include-by-default: uncertain tokens are kept, and
// every removal records a reason code.
type MetadataFilter struct {
	config     FilterConfig
	signatures *SignatureSet
	rules      []FilterRule
}

// NewMetadataFilter creates a filter with the given configuration and the
// repeating-element signatures from pass 1 (may be nil).
func NewMetadataFilter(config FilterConfig, signatures *SignatureSet) *MetadataFilter {
	f := &MetadataFilter{
		config:     config,
		signatures: signatures,
	}
	f.rules = []FilterRule{
		{
			Name:   "section-number",
			Match:  func(f *MetadataFilter, tok model.Token, _ pageContext) bool { return isSectionNumber(tok.Text) },
			Action: ActionRetain,
		},
		{
			Name:   "footnote-marker",
			Match:  func(f *MetadataFilter, tok model.Token, _ pageContext) bool { return isMarkerLike(tok.Text) },
			Action: ActionRetain,
		},
		{
			Name: "page-number-pattern",
			Match: func(f *MetadataFilter, tok model.Token, _ pageContext) bool {
				return isPageNumberPattern(tok.Text)
			},
			Action: ActionRemove,
			Reason: model.RemovedPagePattern,
		},
		{
			Name:   "isolated-margin-digit",
			Match:  (*MetadataFilter).isIsolatedMarginDigit,
			Action: ActionRemove,
			Reason: model.RemovedMarginDigit,
		},
	}
	return f
}

// Filter classifies every token on a page and returns the retained tokens
// plus the audit records for each removal. The input slice is not modified.
func (f *MetadataFilter) Filter(tokens []model.Token, pageHeight float64) ([]model.Token, []model.Removal) {
	if len(tokens) == 0 {
		return nil, nil
	}

	ctx := pageContext{pageHeight: pageHeight, tokens: tokens}
	kept := make([]model.Token, 0, len(tokens))
	var removals []model.Removal

	for i, tok := range tokens {
		ctx.index = i
		// Repeating header/footer signatures go unconditionally, unless
		// the token also reads as a section number or footnote marker
		if f.signatures.Contains(tok, f.config.SignatureQuantum) &&
			!isSectionNumber(tok.Text) && !isMarkerLike(tok.Text) {
			removals = append(removals, model.Removal{
				Text:   tok.Text,
				Page:   tok.Page,
				Reason: model.RemovedHeaderFooter,
			})
			continue
		}

		action, reason := f.classify(tok, ctx)
		if action == ActionRemove {
			removals = append(removals, model.Removal{
				Text:   tok.Text,
				Page:   tok.Page,
				Reason: reason,
			})
			continue
		}
		kept = append(kept, tok)
	}
	return kept, removals
}

// classify runs the rule table in order; first match wins, no match retains
func (f *MetadataFilter) classify(tok model.Token, ctx pageContext) (FilterAction, model.RemovalReason) {
	for _, rule := range f.rules {
		if rule.Match(f, tok, ctx) {
			return rule.Action, rule.Reason
		}
	}
	return ActionRetain, ""
}

// isIsolatedMarginDigit fires for a lone digit token sitting in the outer
// margin band with no other token nearby.
func (f *MetadataFilter) isIsolatedMarginDigit(tok model.Token, ctx pageContext) bool {
	if f.config.DisableMarginFilter {
		return false
	}
	text := foldWidth(strings.TrimSpace(tok.Text))
	if text == "" || len(text) > 4 {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	if ctx.pageHeight <= 0 {
		return false
	}
	center := tok.BBox.Center().Y
	margin := ctx.pageHeight * f.config.MarginRatio
	inTopMargin := center <= margin
	inBottomMargin := center >= ctx.pageHeight-margin
	if !inTopMargin && !inBottomMargin {
		return false
	}

	return !f.hasNearbyContent(ctx.index, ctx.tokens)
}

// hasNearbyContent reports whether any other token sits within the
// proximity radius of the candidate. The candidate is excluded by index, so
// a distinct token at the same position still counts as nearby.
func (f *MetadataFilter) hasNearbyContent(idx int, tokens []model.Token) bool {
	c := tokens[idx].BBox.Center()
	for i, other := range tokens {
		if i == idx {
			continue
		}
		if c.Distance(other.BBox.Center()) <= f.config.ProximityRadius {
			return true
		}
	}
	return false
}

func isSectionNumber(text string) bool {
	text = strings.TrimSpace(text)
	for _, p := range sectionPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func isMarkerLike(text string) bool {
	text = strings.TrimSpace(text)
	for _, p := range markerLikePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func isPageNumberPattern(text string) bool {
	text = foldWidth(strings.TrimSpace(text))
	for _, p := range pageNumberPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// foldWidth normalizes full-width digits and punctuation (１２３) to their
// half-width forms so the page-number patterns match Japanese documents.
func foldWidth(s string) string {
	return width.Narrow.String(s)
}
