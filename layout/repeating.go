package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/reflow/model"
)

// RegionType indicates whether a repeating element sits in the header or
// footer zone of the page
type RegionType int

const (
	RegionHeader RegionType = iota
	RegionFooter
	RegionBody
)

func (r RegionType) String() string {
	switch r {
	case RegionHeader:
		return "header"
	case RegionFooter:
		return "footer"
	default:
		return "body"
	}
}

// RepeatingConfig holds configuration for cross-page repetition detection
type RepeatingConfig struct {
	// MinOccurrenceRatio is the minimum fraction of pages a (position,
	// text) pair must appear on to count as a repeating element
	// Default: 0.5 (majority of pages)
	MinOccurrenceRatio float64

	// PositionQuantum is the grid size, in page units, used to round
	// positions before grouping; small drifts across pages still match
	// Default: 10
	PositionQuantum float64

	// MinPages is the minimum document length for detection to run at all
	// Default: 2
	MinPages int

	// HeaderZoneRatio and FooterZoneRatio classify a signature's region
	// by its vertical position on the page
	// Defaults: 0.15 each
	HeaderZoneRatio float64
	FooterZoneRatio float64
}

// DefaultRepeatingConfig returns sensible default configuration
func DefaultRepeatingConfig() RepeatingConfig {
	return RepeatingConfig{
		MinOccurrenceRatio: 0.5,
		PositionQuantum:    10.0,
		MinPages:           2,
		HeaderZoneRatio:    0.15,
		FooterZoneRatio:    0.15,
	}
}

// Signature identifies a removable repeating element: its text plus its
// quantized position. Detection only classifies; removal is the metadata
// filter's job.
type Signature struct {
	Text   string
	Region RegionType

	// QX, QY are the quantized top-left position shared by every
	// occurrence of the element
	QX, QY float64

	// PageCount is how many distinct pages carry the element
	PageCount int
}

// SignatureSet is the detector's output, keyed for O(1) lookup during
// filtering
type SignatureSet struct {
	byKey map[string]Signature
}

// Contains reports whether the token matches a removable signature
func (s *SignatureSet) Contains(tok model.Token, quantum float64) bool {
	if s == nil || len(s.byKey) == 0 {
		return false
	}
	_, ok := s.byKey[signatureKey(tok.Text, quantize(tok.BBox.X0, quantum), quantize(tok.BBox.Y0, quantum))]
	return ok
}

// Signatures returns the detected signatures sorted by text then position,
// for stable reporting
func (s *SignatureSet) Signatures() []Signature {
	if s == nil {
		return nil
	}
	out := make([]Signature, 0, len(s.byKey))
	for _, sig := range s.byKey {
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Text != out[j].Text {
			return out[i].Text < out[j].Text
		}
		if out[i].QY != out[j].QY {
			return out[i].QY < out[j].QY
		}
		return out[i].QX < out[j].QX
	})
	return out
}

// Len returns the number of detected signatures
func (s *SignatureSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byKey)
}

// RepeatingElementDetector finds cross-page header/footer candidates by
// positional recurrence: the same text at the same quantized position on a
// sufficient fraction of pages.
type RepeatingElementDetector struct {
	config RepeatingConfig
}

// NewRepeatingElementDetector creates a detector with default configuration
func NewRepeatingElementDetector() *RepeatingElementDetector {
	return &RepeatingElementDetector{config: DefaultRepeatingConfig()}
}

// NewRepeatingElementDetectorWithConfig creates a detector with custom configuration
func NewRepeatingElementDetectorWithConfig(config RepeatingConfig) *RepeatingElementDetector {
	return &RepeatingElementDetector{config: config}
}

// Detect scans all pages and returns the set of removable signatures.
// Nothing is removed here.
func (d *RepeatingElementDetector) Detect(pages []*model.Page) *SignatureSet {
	set := &SignatureSet{byKey: make(map[string]Signature)}
	if len(pages) < d.config.MinPages {
		return set
	}

	type occurrence struct {
		sig   Signature
		pages map[int]bool
	}
	seen := make(map[string]*occurrence)

	for _, page := range pages {
		for _, tok := range page.Tokens {
			if tok.Text == "" {
				continue
			}
			qx := quantize(tok.BBox.X0, d.config.PositionQuantum)
			qy := quantize(tok.BBox.Y0, d.config.PositionQuantum)
			key := signatureKey(tok.Text, qx, qy)

			occ, ok := seen[key]
			if !ok {
				occ = &occurrence{
					sig: Signature{
						Text:   tok.Text,
						Region: d.regionFor(tok, page.Height),
						QX:     qx,
						QY:     qy,
					},
					pages: make(map[int]bool),
				}
				seen[key] = occ
			}
			occ.pages[page.Number] = true
		}
	}

	minPages := int(math.Ceil(d.config.MinOccurrenceRatio * float64(len(pages))))
	if minPages < d.config.MinPages {
		minPages = d.config.MinPages
	}

	for key, occ := range seen {
		if len(occ.pages) < minPages {
			continue
		}
		sig := occ.sig
		sig.PageCount = len(occ.pages)
		set.byKey[key] = sig
	}
	return set
}

func (d *RepeatingElementDetector) regionFor(tok model.Token, pageHeight float64) RegionType {
	if pageHeight <= 0 {
		return RegionBody
	}
	center := tok.BBox.Center().Y
	switch {
	case center <= pageHeight*d.config.HeaderZoneRatio:
		return RegionHeader
	case center >= pageHeight*(1-d.config.FooterZoneRatio):
		return RegionFooter
	default:
		return RegionBody
	}
}

func quantize(v, quantum float64) float64 {
	if quantum <= 0 {
		return v
	}
	return math.Round(v/quantum) * quantum
}

func signatureKey(text string, qx, qy float64) string {
	return fmt.Sprintf("%s\x00%.0f\x00%.0f", text, qx, qy)
}
