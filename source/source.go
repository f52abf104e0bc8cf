// Package source ingests parsed documents. The pipeline never reads PDFs
// itself; an upstream parser supplies positioned tokens, either through the
// Parser interface or as a JSON token dump.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/pipeline"
)

// Parser is the upstream parser collaborator: anything that can turn a
// source file into positioned tokens.
type Parser interface {
	// Parse reads the file and returns its pages. Coordinates use the
	// top-left origin with Y increasing downward.
	Parse(ctx context.Context, path string) (*pipeline.Document, error)
}

// tokenDump mirrors the JSON token dump format emitted by upstream
// parsers: one document, pages with dimensions, tokens with edge-based
// bounding boxes.
type tokenDump struct {
	Name  string     `json:"name"`
	Pages []pageDump `json:"pages"`
}

type pageDump struct {
	Number   int           `json:"number"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Rotation int           `json:"rotation,omitempty"`
	Tokens   []tokenRecord `json:"tokens"`
	Segments []segmentDump `json:"segments,omitempty"`
}

type tokenRecord struct {
	Text     string  `json:"text"`
	X0       float64 `json:"x0"`
	Y0       float64 `json:"y0"`
	X1       float64 `json:"x1"`
	Y1       float64 `json:"y1"`
	FontSize float64 `json:"font_size"`
	Baseline float64 `json:"baseline,omitempty"`
}

type segmentDump struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// LoadDump reads a JSON token dump from a file
func LoadDump(path string) (*pipeline.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token dump: %w", err)
	}
	doc, err := ParseDump(data)
	if err != nil {
		return nil, err
	}
	if doc.Name == "" {
		doc.Name = filepath.Base(path)
	}
	return doc, nil
}

// ParseDump decodes a JSON token dump
func ParseDump(data []byte) (*pipeline.Document, error) {
	var dump tokenDump
	if err := sonic.Unmarshal(data, &dump); err != nil {
		return nil, fmt.Errorf("failed to parse token dump: %w", err)
	}

	doc := &pipeline.Document{
		ID:    uuid.NewString(),
		Name:  dump.Name,
		Pages: make([]*model.Page, 0, len(dump.Pages)),
	}

	for i, pd := range dump.Pages {
		number := pd.Number
		if number == 0 {
			number = i + 1
		}
		page := &model.Page{
			Number:   number,
			Width:    pd.Width,
			Height:   pd.Height,
			Rotation: pd.Rotation,
		}
		for _, tr := range pd.Tokens {
			text := strings.TrimSpace(tr.Text)
			if text == "" {
				continue
			}
			baseline := tr.Baseline
			if baseline == 0 {
				baseline = tr.Y1
			}
			page.Tokens = append(page.Tokens, model.Token{
				Text:     text,
				BBox:     model.NewBBox(tr.X0, tr.Y0, tr.X1, tr.Y1),
				FontSize: tr.FontSize,
				Baseline: baseline,
				Page:     number,
			})
		}
		for _, sd := range pd.Segments {
			page.Segments = append(page.Segments, model.Segment{
				X0: sd.X0, Y0: sd.Y0, X1: sd.X1, Y1: sd.Y1,
			})
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// DumpParser is a Parser over JSON token dumps, for pipelines fed from
// files rather than a live upstream process.
type DumpParser struct{}

// NewDumpParser creates a dump-file parser
func NewDumpParser() *DumpParser {
	return &DumpParser{}
}

// Parse implements Parser
func (p *DumpParser) Parse(ctx context.Context, path string) (*pipeline.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadDump(path)
}
