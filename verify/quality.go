package verify

import (
	"fmt"

	"github.com/tsawler/reflow/model"
)

// Dimension weights. They sum to 1.0; the composite score is the weighted
// sum of the 0-100 dimension scores.
const (
	WeightCompleteness = 0.30
	WeightStructure    = 0.25
	WeightAccuracy     = 0.20
	WeightFootnotes    = 0.15
	WeightReadability  = 0.10
)

// ScoreInput carries everything the scorer grades
type ScoreInput struct {
	// Verification is the finished anti-hallucination report
	Verification model.VerificationReport

	// Tables are the document's detected tables
	Tables []model.Table

	// Footnotes is the document's footnote report
	Footnotes model.FootnoteReport

	// PageCount and UnextractablePages size the document; an unextractable
	// page yielded no tokens at all
	PageCount          int
	UnextractablePages int

	// EncodingAnomalies counts tokens dominated by replacement characters
	EncodingAnomalies int

	// TokenCount is the number of tokens in the finished output
	TokenCount int
}

// QualityScorer condenses a pipeline run into a 0-100 score with a letter
// grade and per-dimension breakdown. The same input always produces the
// same score.
type QualityScorer struct{}

// NewQualityScorer creates a scorer
func NewQualityScorer() *QualityScorer {
	return &QualityScorer{}
}

// Score grades one document run
func (s *QualityScorer) Score(in ScoreInput) model.QualityReport {
	dims := []model.Dimension{
		s.completeness(in),
		s.structure(in),
		s.accuracy(in),
		s.footnotes(in),
		s.readability(in),
	}

	report := model.QualityReport{Dimensions: dims}
	for _, d := range dims {
		report.Score += d.Weighted()
		report.Issues = append(report.Issues, d.Issues...)
	}
	report.Score = clampScore(report.Score)
	report.Grade = model.GradeFor(report.Score)
	return report
}

// completeness scores coverage against the frozen inventory, penalizing
// unextractable pages.
func (s *QualityScorer) completeness(in ScoreInput) model.Dimension {
	d := model.Dimension{Name: "completeness", Weight: WeightCompleteness}

	coverage := in.Verification.Coverage
	if coverage > 1.0 {
		coverage = 1.0
	}
	d.Score = coverage * 100

	if in.PageCount > 0 && in.UnextractablePages > 0 {
		penalty := float64(in.UnextractablePages) / float64(in.PageCount) * 100
		d.Score -= penalty
		d.Issues = append(d.Issues, fmt.Sprintf(
			"%d of %d pages yielded no tokens", in.UnextractablePages, in.PageCount))
	}
	d.Score = clampScore(d.Score)
	return d
}

// structure scores reading order, position consistency, and table
// detection confidence.
func (s *QualityScorer) structure(in ScoreInput) model.Dimension {
	d := model.Dimension{Name: "structure", Weight: WeightStructure, Score: 100}

	if !in.Verification.OrderingConsistent {
		d.Score -= 40
		d.Issues = append(d.Issues, "reading order regresses within a column")
	}
	if in.Verification.PositionConsistency < 1.0 {
		d.Score -= (1.0 - in.Verification.PositionConsistency) * 50
	}
	if len(in.Tables) > 0 {
		avg := averageTableConfidence(in.Tables)
		// A fully confident table set costs nothing; ambiguous detection
		// pulls the dimension down proportionally
		d.Score -= (1.0 - avg) * 30
		for _, tbl := range in.Tables {
			if tbl.Confidence < 0.5 {
				d.Issues = append(d.Issues, fmt.Sprintf(
					"low-confidence table on page %d (%.2f)", tbl.Page, tbl.Confidence))
			}
		}
	}
	d.Score = clampScore(d.Score)
	return d
}

// accuracy penalizes hallucination flags and encoding anomalies
func (s *QualityScorer) accuracy(in ScoreInput) model.Dimension {
	d := model.Dimension{Name: "accuracy", Weight: WeightAccuracy, Score: 100}

	if n := len(in.Verification.Flags); n > 0 {
		d.Score -= float64(n) * 15
		d.Issues = append(d.Issues, fmt.Sprintf("%d hallucinated spans stripped", n))
	}
	if in.EncodingAnomalies > 0 && in.TokenCount > 0 {
		ratio := float64(in.EncodingAnomalies) / float64(in.TokenCount)
		d.Score -= ratio * 100
		d.Issues = append(d.Issues, fmt.Sprintf(
			"%d tokens dominated by replacement characters", in.EncodingAnomalies))
	}
	d.Score = clampScore(d.Score)
	return d
}

// footnotes scores the marker-to-definition match rate. Documents with no
// markers score full.
func (s *QualityScorer) footnotes(in ScoreInput) model.Dimension {
	d := model.Dimension{Name: "footnotes", Weight: WeightFootnotes}
	d.Score = in.Footnotes.MatchRate() * 100
	if n := len(in.Footnotes.UnmatchedMarkers); n > 0 {
		d.Issues = append(d.Issues, fmt.Sprintf("%d footnote markers unmatched", n))
	}
	return d
}

// readability penalizes accumulated issues and warnings
func (s *QualityScorer) readability(in ScoreInput) model.Dimension {
	d := model.Dimension{Name: "readability", Weight: WeightReadability, Score: 100}
	d.Score -= float64(len(in.Verification.Issues)) * 20
	d.Score -= float64(len(in.Verification.Warnings)) * 5
	d.Score = clampScore(d.Score)
	return d
}

func averageTableConfidence(tables []model.Table) float64 {
	if len(tables) == 0 {
		return 1.0
	}
	var sum float64
	for _, t := range tables {
		sum += t.Confidence
	}
	return sum / float64(len(tables))
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
