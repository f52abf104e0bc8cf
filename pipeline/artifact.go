package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/tsawler/reflow/model"
)

// Artifact is the persisted record of one extraction run: the final text
// plus everything needed to audit it later without re-running the pipeline.
type Artifact struct {
	ID        string    `json:"id"`
	Document  string    `json:"document"`
	CreatedAt time.Time `json:"created_at"`

	Text string `json:"text"`

	Coverage            float64 `json:"coverage"`
	CoverageStatus      string  `json:"coverage_status"`
	PositionConsistency float64 `json:"position_consistency"`
	FootnoteMatchRate   float64 `json:"footnote_match_rate"`
	TableConfidence     float64 `json:"table_confidence"`

	Score    float64 `json:"score"`
	Grade    string  `json:"grade"`
	Attempts int     `json:"attempts"`

	Flags    []FlagRecord    `json:"flags,omitempty"`
	Removals []RemovalRecord `json:"removals,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Issues   []string        `json:"issues,omitempty"`
}

// FlagRecord is one stripped hallucination span
type FlagRecord struct {
	Kind string `json:"kind"`
	Span string `json:"span"`
	Page int    `json:"page"`
}

// RemovalRecord is one audited token removal with its reason code
type RemovalRecord struct {
	Text   string `json:"text"`
	Page   int    `json:"page"`
	Reason string `json:"reason"`
}

// BuildArtifact condenses a finished result into its persistable form
func BuildArtifact(doc *Document, result *Result) *Artifact {
	a := &Artifact{
		ID:        uuid.NewString(),
		Document:  doc.Name,
		CreatedAt: time.Now().UTC(),

		Text: result.Text,

		Coverage:            result.Verification.Coverage,
		CoverageStatus:      result.Verification.Status.String(),
		PositionConsistency: result.Verification.PositionConsistency,
		FootnoteMatchRate:   result.Verification.FootnoteMatchRate,
		TableConfidence:     result.Verification.TableConfidence,

		Score:    result.Quality.Score,
		Grade:    string(result.Quality.Grade),
		Attempts: result.Attempt,

		Warnings: result.Warnings,
		Issues:   result.Quality.Issues,
	}

	for _, f := range result.Verification.Flags {
		a.Flags = append(a.Flags, FlagRecord{Kind: f.Kind, Span: f.Span, Page: f.Page})
	}
	for _, r := range result.Verification.Removals {
		a.Removals = append(a.Removals, RemovalRecord{
			Text:   r.Text,
			Page:   r.Page,
			Reason: string(r.Reason),
		})
	}
	return a
}

// Marshal serializes the artifact as JSON
func (a *Artifact) Marshal() ([]byte, error) {
	data, err := sonic.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal artifact: %w", err)
	}
	return data, nil
}

// WriteArtifact persists the artifact to a file
func WriteArtifact(path string, a *Artifact) error {
	data, err := a.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// ReadArtifact loads a previously written artifact
func ReadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	var a Artifact
	if err := sonic.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse artifact: %w", err)
	}
	return &a, nil
}

// RemovalSummary tallies removals by reason code, for reporting
func RemovalSummary(removals []model.Removal) map[model.RemovalReason]int {
	out := make(map[model.RemovalReason]int)
	for _, r := range removals {
		out[r.Reason]++
	}
	return out
}
