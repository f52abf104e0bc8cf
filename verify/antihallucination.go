package verify

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/tsawler/reflow/model"
)

// VerifierConfig holds thresholds for anti-hallucination verification
type VerifierConfig struct {
	// MinElementRatio is the required extracted/inventory ratio
	// Default: 0.70
	MinElementRatio float64

	// MinPositionConsistency is the required similarity between the
	// output's and the inventory's top/middle/bottom distribution
	// Default: 0.80
	MinPositionConsistency float64

	// MaxElementRatio flags probable duplication above it
	// Default: 1.5
	MaxElementRatio float64
}

// DefaultVerifierConfig returns sensible default configuration
func DefaultVerifierConfig() VerifierConfig {
	return VerifierConfig{
		MinElementRatio:        0.70,
		MinPositionConsistency: 0.80,
		MaxElementRatio:        1.5,
	}
}

// SignatureRule is one declarative hallucination signature: output content
// matching the pattern with no basis in any source token is fabricated.
type SignatureRule struct {
	// Kind tags the flag records this rule produces
	Kind string

	// Pattern matches candidate spans in the output text
	Pattern *regexp.Regexp

	// Confirm optionally double-checks a candidate span; nil accepts all
	Confirm func(span string) bool

	// Strip removes confirmed spans from the output. Rules that only
	// indicate a problem (broken page sequences) leave text alone.
	Strip bool
}

// signatureRules is the fixed rule table. Every rule only fires for spans
// absent from the source tokens, so legitimate body text that happens to
// contain, say, asterisks is never touched.
var signatureRules = []SignatureRule{
	{Kind: "markdown-bold", Pattern: regexp.MustCompile(`\*\*[^*\n]+\*\*`), Strip: true},
	{Kind: "markdown-bold", Pattern: regexp.MustCompile(`__[^_\n]+__`), Strip: true},
	{Kind: "markdown-italic", Pattern: regexp.MustCompile(`\*[^*\d\n][^*\n]*\*`), Strip: true},
	{Kind: "markdown-heading", Pattern: regexp.MustCompile(`(?m)^#{1,6}\s+[^\n]+$`), Strip: true},
	{Kind: "html-tag", Pattern: regexp.MustCompile(`</?[a-zA-Z][^>\n]*>`), Confirm: isHTMLTag, Strip: true},
	{Kind: "generative-phrase", Pattern: regexp.MustCompile(
		`(?i)\b(?:This (?:section|document|page) (?:describes|contains|shows)|As shown (?:above|below)|Please note that|The following (?:table|section) (?:summarizes|shows))\b[^\n.]*\.?`), Strip: true},
}

// isHTMLTag confirms a candidate span really tokenizes as a single HTML tag
func isHTMLTag(span string) bool {
	tk := html.NewTokenizer(strings.NewReader(span))
	switch tk.Next() {
	case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
		return true
	default:
		return false
	}
}

// pageMarkerPattern finds page boundary markers when a caller has already
// inserted them; gaps in the sequence indicate dropped pages.
var pageMarkerPattern = regexp.MustCompile(`\[page (\d+)\]`)

// Verifier cross-checks finished text against the frozen inventory and the
// hallucination signature table. Detected spans are stripped and recorded
// as flags, never silently kept.
type Verifier struct {
	config VerifierConfig
}

// NewVerifier creates a verifier with default configuration
func NewVerifier() *Verifier {
	return &Verifier{config: DefaultVerifierConfig()}
}

// NewVerifierWithConfig creates a verifier with custom configuration
func NewVerifierWithConfig(config VerifierConfig) *Verifier {
	return &Verifier{config: config}
}

// Input carries everything the verifier compares
type Input struct {
	// PageTexts is the assembled output, one string per page
	PageTexts []string

	// SourceTexts indexes every source token text in the document
	SourceTexts map[string]bool

	// Inventory is the frozen pre-filter baseline
	Inventory model.Inventory

	// ExtractedTotal and ExtractedByRegion census the tokens that made
	// it into the output
	ExtractedTotal    int
	ExtractedByRegion map[model.PositionRegion]int

	// Footnotes is the document's footnote report, for orphan detection
	Footnotes model.FootnoteReport
}

// Verify runs all checks and returns the cleaned page texts plus the
// verification findings. Coverage, status, consistency, flags, and
// pass/fail are filled in; structure rates are the pipeline's to add.
func (v *Verifier) Verify(in Input) ([]string, model.VerificationReport) {
	report := model.VerificationReport{OrderingConsistent: true}

	report.Coverage = Coverage(in.ExtractedTotal, in.Inventory)
	report.Status = model.StatusFor(report.Coverage)

	switch {
	case report.Coverage < 0.5:
		report.Issues = append(report.Issues, fmt.Sprintf(
			"severe content loss: %.0f%% of inventoried elements extracted", report.Coverage*100))
	case report.Coverage < v.config.MinElementRatio:
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"moderate content loss: %.0f%% of inventoried elements extracted", report.Coverage*100))
	case report.Coverage > v.config.MaxElementRatio:
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"possible duplication: %.0f%% of inventoried elements extracted", report.Coverage*100))
	}

	report.PositionConsistency = v.positionConsistency(in)
	if report.PositionConsistency < v.config.MinPositionConsistency {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"position distribution shifted: consistency %.2f", report.PositionConsistency))
	}

	cleaned := make([]string, len(in.PageTexts))
	for i, text := range in.PageTexts {
		cleaned[i] = v.scanPage(text, i+1, in.SourceTexts, &report)
	}

	v.checkOrphanMarkers(in, &report)
	v.checkPageMarkers(strings.Join(cleaned, "\n"), &report)

	report.Passed = len(report.Issues) == 0 &&
		report.Coverage >= v.config.MinElementRatio &&
		report.PositionConsistency >= v.config.MinPositionConsistency
	return cleaned, report
}

// scanPage applies the signature table to one page's text, stripping
// confirmed spans and recording flags.
func (v *Verifier) scanPage(text string, pageNo int, source map[string]bool, report *model.VerificationReport) string {
	for _, rule := range signatureRules {
		matches := rule.Pattern.FindAllString(text, -1)
		for _, span := range matches {
			if hasSourceBasis(span, source) {
				continue
			}
			if rule.Confirm != nil && !rule.Confirm(span) {
				continue
			}
			report.Flags = append(report.Flags, model.HallucinationFlag{
				Kind: rule.Kind,
				Span: span,
				Page: pageNo,
			})
			if rule.Strip {
				text = strings.ReplaceAll(text, span, "")
			}
		}
	}
	return text
}

// hasSourceBasis reports whether the span appears in, or is contained by,
// a source token; such spans are real content, not fabrication.
func hasSourceBasis(span string, source map[string]bool) bool {
	if source[span] {
		return true
	}
	for text := range source {
		if strings.Contains(text, span) {
			return true
		}
	}
	return false
}

// positionConsistency compares the extracted region distribution with the
// inventory's: 1 minus half the total variation distance.
func (v *Verifier) positionConsistency(in Input) float64 {
	invTotal := in.Inventory.Total()
	if invTotal == 0 || in.ExtractedTotal == 0 {
		return 1.0
	}

	var diff float64
	for _, region := range []model.PositionRegion{model.RegionTop, model.RegionMiddle, model.RegionBottom} {
		p := float64(in.Inventory.RegionCount(region)) / float64(invTotal)
		q := float64(in.ExtractedByRegion[region]) / float64(in.ExtractedTotal)
		diff += math.Abs(p - q)
	}
	return 1.0 - diff/2
}

// checkOrphanMarkers flags footnote markers with no matching definition
// anywhere in the document.
func (v *Verifier) checkOrphanMarkers(in Input, report *model.VerificationReport) {
	for _, marker := range in.Footnotes.UnmatchedMarkers {
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"footnote marker %q on page %d has no definition", marker.Marker, marker.Page))
	}
}

// checkPageMarkers verifies that any page boundary markers present form a
// contiguous sequence.
func (v *Verifier) checkPageMarkers(text string, report *model.VerificationReport) {
	matches := pageMarkerPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return
	}

	prev := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if prev > 0 && n != prev+1 {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"page marker sequence broken: %d follows %d", n, prev))
		}
		prev = n
	}
}
