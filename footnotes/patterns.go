// Package footnotes finds footnote markers in body text and their
// definitions in the bottom margin region, and pairs them with a scored
// confidence. Unmatched markers and definitions are both reported, never
// silently merged.
package footnotes

import "regexp"

// MarkerStyle tags the notation family a marker belongs to
type MarkerStyle string

const (
	StyleAsterisk      MarkerStyle = "asterisk"       // *1, *
	StyleKome          MarkerStyle = "kome"           // ※, ※1
	StyleChu           MarkerStyle = "chu"            // 注, 注1
	StyleDagger        MarkerStyle = "dagger"         // †, ‡
	StyleBracketed     MarkerStyle = "bracketed"      // [1]
	StyleParenthesized MarkerStyle = "parenthesized"  // (1)
	StyleUnicodeSuper  MarkerStyle = "unicode-super"  // ¹ ² ³
)

// MarkerPattern is one declarative marker rule
type MarkerPattern struct {
	Pattern *regexp.Regexp
	Style   MarkerStyle
}

// MarkerPatterns is the ordered marker rule table. Earlier entries win when
// several match.
var MarkerPatterns = []MarkerPattern{
	{regexp.MustCompile(`^\*\d+$`), StyleAsterisk},
	{regexp.MustCompile(`^\*$`), StyleAsterisk},
	{regexp.MustCompile(`^※\d*$`), StyleKome},
	{regexp.MustCompile(`^注\d*$`), StyleChu},
	{regexp.MustCompile(`^†$`), StyleDagger},
	{regexp.MustCompile(`^‡$`), StyleDagger},
	{regexp.MustCompile(`^\[\d+\]$`), StyleBracketed},
	{regexp.MustCompile(`^\(\d+\)$`), StyleParenthesized},
	{regexp.MustCompile(`^[¹²³⁴⁵⁶⁷⁸⁹⁰]+$`), StyleUnicodeSuper},
}

// definitionPattern matches a definition opener: a marker followed by a
// separator (colon, full-width colon, or whitespace), capturing the marker.
var definitionPattern = regexp.MustCompile(
	`^(\*\d+|\*|※\d*|注\d*|†|‡|\[\d+\]|\(\d+\)|[¹²³⁴⁵⁶⁷⁸⁹⁰]+)[\s:：]`)

// MatchMarker reports whether text is a footnote marker and returns its style
func MatchMarker(text string) (MarkerStyle, bool) {
	for _, mp := range MarkerPatterns {
		if mp.Pattern.MatchString(text) {
			return mp.Style, true
		}
	}
	return "", false
}

// MatchDefinitionStart returns the marker that opens a definition line, if any
func MatchDefinitionStart(line string) (string, bool) {
	m := definitionPattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
