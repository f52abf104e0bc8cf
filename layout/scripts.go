package layout

import (
	"math"
	"strings"

	"github.com/tsawler/reflow/model"
)

// ScriptConfig holds configuration for super/subscript attachment
type ScriptConfig struct {
	// SizeRatio: a token smaller than SizeRatio × the band's average font
	// size is a script candidate
	// Default: 0.7
	SizeRatio float64

	// OffsetRatio: the candidate's baseline must differ from the band
	// baseline by more than OffsetRatio × the band font size
	// Default: 0.2
	OffsetRatio float64

	// AttachDistance is the maximum horizontal distance between the
	// candidate and its base token
	// Default: 12
	AttachDistance float64

	// MinSize and MaxSize bound the candidate font size in points
	// Defaults: 4 and 10
	MinSize float64
	MaxSize float64
}

// DefaultScriptConfig returns sensible default configuration
func DefaultScriptConfig() ScriptConfig {
	return ScriptConfig{
		SizeRatio:      0.7,
		OffsetRatio:    0.2,
		AttachDistance: 12.0,
		MinSize:        4.0,
		MaxSize:        10.0,
	}
}

// superscriptRunes maps characters to their canonical superscript form
var superscriptRunes = map[rune]rune{
	'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴',
	'5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹',
	'+': '⁺', '-': '⁻', '=': '⁼', '(': '⁽', ')': '⁾',
	'n': 'ⁿ', 'i': 'ⁱ',
}

// subscriptRunes maps characters to their canonical subscript form
var subscriptRunes = map[rune]rune{
	'0': '₀', '1': '₁', '2': '₂', '3': '₃', '4': '₄',
	'5': '₅', '6': '₆', '7': '₇', '8': '₈', '9': '₉',
	'+': '₊', '-': '₋', '=': '₌', '(': '₍', ')': '₎',
}

// ScriptAttacher merges superscript and subscript tokens onto their base
// token so that chemical formulas (H₂O), exponents (x²) and footnote
// references (*1) survive linearization intact.
type ScriptAttacher struct {
	config ScriptConfig
}

// NewScriptAttacher creates an attacher with default configuration
func NewScriptAttacher() *ScriptAttacher {
	return &ScriptAttacher{config: DefaultScriptConfig()}
}

// NewScriptAttacherWithConfig creates an attacher with custom configuration
func NewScriptAttacherWithConfig(config ScriptConfig) *ScriptAttacher {
	return &ScriptAttacher{config: config}
}

// Attach processes each band, merging script candidates onto the nearest
// preceding base token. Returns new bands; the input is not modified.
func (a *ScriptAttacher) Attach(bands []model.Band) []model.Band {
	out := make([]model.Band, 0, len(bands))
	for _, band := range bands {
		out = append(out, a.attachInBand(band))
	}
	return out
}

func (a *ScriptAttacher) attachInBand(band model.Band) model.Band {
	if len(band.Tokens) < 2 {
		return band
	}

	avgSize := band.AverageFontSize()
	if avgSize <= 0 {
		return band
	}

	result := model.Band{
		Top:      band.Top,
		Bottom:   band.Bottom,
		Baseline: band.Baseline,
	}

	for _, tok := range band.Tokens {
		kind := a.classify(tok, band, avgSize)
		if kind == model.ScriptNone || len(result.Tokens) == 0 {
			result.Tokens = append(result.Tokens, tok)
			continue
		}

		base := &result.Tokens[len(result.Tokens)-1]
		gap := tok.BBox.X0 - base.BBox.X1
		if gap > a.config.AttachDistance || gap < -base.BBox.Width() {
			// Too far from any base; keep as a standalone tagged token
			tok.Script = kind
			result.Tokens = append(result.Tokens, tok)
			continue
		}

		if canonical, ok := canonicalScript(tok.Text, kind); ok {
			// Substitute the canonical representation, no inserted space
			base.Text += canonical
			base.BBox = base.BBox.Union(tok.BBox)
		} else {
			// No canonical form; retain literal text tagged as attached
			base.Text += tok.Text
			base.BBox = base.BBox.Union(tok.BBox)
			base.Script = kind
		}
	}
	return result
}

// classify decides whether a token is a superscript, subscript, or neither,
// from its relative size and baseline offset within the band.
func (a *ScriptAttacher) classify(tok model.Token, band model.Band, avgSize float64) model.ScriptKind {
	if tok.FontSize <= 0 {
		return model.ScriptNone
	}
	if tok.FontSize < a.config.MinSize || tok.FontSize > a.config.MaxSize {
		return model.ScriptNone
	}
	if tok.FontSize >= a.config.SizeRatio*avgSize {
		return model.ScriptNone
	}

	offset := tok.Baseline - band.Baseline
	bandFont := avgSize
	if math.Abs(offset) <= a.config.OffsetRatio*bandFont {
		return model.ScriptNone
	}

	// Y increases downward: a raised baseline means a smaller Y
	if offset < 0 {
		return model.ScriptSuper
	}
	return model.ScriptSub
}

// canonicalScript converts text to its canonical super/subscript form if
// every rune has one.
func canonicalScript(text string, kind model.ScriptKind) (string, bool) {
	table := superscriptRunes
	if kind == model.ScriptSub {
		table = subscriptRunes
	}

	var sb strings.Builder
	for _, r := range text {
		mapped, ok := table[r]
		if !ok {
			return "", false
		}
		sb.WriteRune(mapped)
	}
	return sb.String(), true
}
