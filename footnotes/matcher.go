package footnotes

import (
	"math"
	"sort"

	"github.com/tsawler/reflow/model"
)

// MatcherConfig holds configuration for marker-definition matching
type MatcherConfig struct {
	// ExactWeight and ProximityWeight combine into the match confidence.
	// Defaults: 0.7 and 0.3.
	ExactWeight     float64
	ProximityWeight float64

	// MinConfidence is the acceptance cutoff; matches at or below it are
	// reported unmatched
	// Default: 0.5
	MinConfidence float64
}

// DefaultMatcherConfig returns sensible default configuration
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		ExactWeight:     0.7,
		ProximityWeight: 0.3,
		MinConfidence:   0.5,
	}
}

// Matcher pairs footnote markers with definitions. Marker text must match
// exactly; confidence then grows with page proximity, so a same-page exact
// match scores 1.0. Anything at or below MinConfidence is rejected.
type Matcher struct {
	config MatcherConfig
}

// NewMatcher creates a matcher with default configuration
func NewMatcher() *Matcher {
	return &Matcher{config: DefaultMatcherConfig()}
}

// NewMatcherWithConfig creates a matcher with custom configuration
func NewMatcherWithConfig(config MatcherConfig) *Matcher {
	return &Matcher{config: config}
}

// Match pairs every marker with its best definition and reports leftovers
// on both sides.
func (m *Matcher) Match(markers []model.FootnoteMarker, definitions []model.FootnoteDefinition) model.FootnoteReport {
	report := model.FootnoteReport{}
	used := make([]bool, len(definitions))

	for _, marker := range markers {
		bestIdx := -1
		bestConf := 0.0

		for i, def := range definitions {
			if def.Marker != marker.Marker {
				continue
			}
			conf := m.confidence(marker, def)
			if conf > bestConf || (conf == bestConf && bestIdx >= 0 && preferEarlier(def, definitions[bestIdx])) {
				bestConf = conf
				bestIdx = i
			}
		}

		if bestIdx < 0 || bestConf <= m.config.MinConfidence {
			report.UnmatchedMarkers = append(report.UnmatchedMarkers, marker)
			continue
		}

		used[bestIdx] = true
		report.Matches = append(report.Matches, model.FootnoteMatch{
			Marker:     marker,
			Definition: definitions[bestIdx],
			Confidence: bestConf,
		})
	}

	for i, def := range definitions {
		if !used[i] {
			report.UnmatchedDefinitions = append(report.UnmatchedDefinitions, def)
		}
	}

	sort.SliceStable(report.Matches, func(i, j int) bool {
		if report.Matches[i].Marker.Page != report.Matches[j].Marker.Page {
			return report.Matches[i].Marker.Page < report.Matches[j].Marker.Page
		}
		return report.Matches[i].Marker.Marker < report.Matches[j].Marker.Marker
	})
	return report
}

// confidence scores an exact-text match by page proximity: same page 1.0,
// adjacent 0.5, then decaying with distance.
func (m *Matcher) confidence(marker model.FootnoteMarker, def model.FootnoteDefinition) float64 {
	distance := math.Abs(float64(marker.Page - def.Page))
	proximity := 1.0 / (1.0 + distance)
	return m.config.ExactWeight + m.config.ProximityWeight*proximity
}

// preferEarlier breaks confidence ties toward the earlier-page, then
// higher-on-page definition, keeping matching deterministic.
func preferEarlier(a, b model.FootnoteDefinition) bool {
	if a.Page != b.Page {
		return a.Page < b.Page
	}
	return a.BBox.Y0 < b.BBox.Y0
}
