package model

// HallucinationFlag records a span of output text with no traceable basis in
// the source tokens. Flagged spans are stripped from the output, never
// silently kept.
type HallucinationFlag struct {
	// Kind names the rule that fired (e.g. "markdown-bold", "html-tag")
	Kind string

	// Span is the offending text
	Span string

	// Page is the 1-based page the span was found on (0 if document-level)
	Page int
}

// RemovalReason is the audit code recorded for every token removed by
// filtering. Uncertain content is kept, not dropped, so every removal must
// name its rule.
type RemovalReason string

const (
	RemovedHeaderFooter  RemovalReason = "repeating-header-footer"
	RemovedPagePattern   RemovalReason = "page-number-pattern"
	RemovedMarginDigit   RemovalReason = "isolated-margin-digit"
	RemovedTableInterior RemovalReason = "table-interior"
	RemovedDuplicate     RemovalReason = "overlapping-duplicate"
)

// Removal is one audited token removal
type Removal struct {
	Text   string
	Page   int
	Reason RemovalReason
}

// VerificationReport is the document-level result of coverage and
// anti-hallucination verification.
type VerificationReport struct {
	// Coverage is extracted tokens / frozen inventory total, in [0,1]
	Coverage float64

	// Status grades the coverage ratio
	Status CoverageStatus

	// PositionConsistency is the similarity between the output's
	// top/middle/bottom distribution and the inventory's, in [0,1]
	PositionConsistency float64

	// Passed is true when coverage and consistency clear their thresholds
	// and no hard issues were found
	Passed bool

	// Flags are detected hallucination spans (already stripped)
	Flags []HallucinationFlag

	// Issues are hard failures; Warnings are degraded-but-kept conditions
	Issues   []string
	Warnings []string

	// FootnoteMatchRate and TableConfidence summarize structure extraction
	FootnoteMatchRate float64
	TableConfidence   float64

	// OrderingConsistent is false when a column's band tops regress
	OrderingConsistent bool

	// Removals is the audit trail of every filtered token
	Removals []Removal
}

// Grade is a letter quality grade
type Grade string

const (
	GradeA Grade = "A" // 90-100, excellent
	GradeB Grade = "B" // 80-89, good
	GradeC Grade = "C" // 70-79, acceptable
	GradeD Grade = "D" // 60-69, poor
	GradeF Grade = "F" // below 60, failed
)

// GradeFor maps a 0-100 score to a letter grade
func GradeFor(score float64) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}

// Dimension is one scored quality dimension
type Dimension struct {
	Name   string
	Score  float64 // 0-100
	Weight float64
	Issues []string
}

// Weighted returns the dimension's contribution to the overall score
func (d Dimension) Weighted() float64 {
	return d.Score * d.Weight
}

// QualityReport is the composite quality assessment for one pipeline run
type QualityReport struct {
	Score      float64 // 0-100
	Grade      Grade
	Dimensions []Dimension
	Issues     []string
}
