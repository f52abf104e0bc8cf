package reflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tsawler/reflow/model"
	"github.com/tsawler/reflow/pipeline"
	"github.com/tsawler/reflow/source"
)

// Extractor provides a fluent interface for reconstructing text from
// parsed documents. Each configuration method returns a new Extractor
// instance, making it safe for concurrent use and allowing method
// chaining.
type Extractor struct {
	// Source: a dump file path or an in-memory document (one is set)
	path string
	doc  *pipeline.Document

	// Configuration
	options ExtractOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Extractor with a deep copy of
// options. This ensures immutability: each chain method returns a new
// instance.
func (e *Extractor) clone() *Extractor {
	return &Extractor{
		path:    e.path,
		doc:     e.doc,
		options: e.options.clone(),
		err:     e.err,
	}
}

// Pages restricts extraction to the given 1-indexed pages, in document
// order. Unknown page numbers are ignored.
func (e *Extractor) Pages(pages ...int) *Extractor {
	newExt := e.clone()
	newExt.options.pages = append([]int(nil), pages...)
	return newExt
}

// PageMarkers inserts "[page N]" boundary lines into the output text
func (e *Extractor) PageMarkers() *Extractor {
	newExt := e.clone()
	newExt.options.pageMarkers = true
	return newExt
}

// WithoutRemediation disables quality-driven retry; the first attempt's
// result is returned regardless of score.
func (e *Extractor) WithoutRemediation() *Extractor {
	newExt := e.clone()
	newExt.options.remediate = false
	return newExt
}

// WithConfig overrides the pipeline parameters for this extraction
func (e *Extractor) WithConfig(config pipeline.Config) *Extractor {
	newExt := e.clone()
	newExt.options.config = &config
	return newExt
}

// WithLogger attaches a logger to the extraction run
func (e *Extractor) WithLogger(logger *zap.Logger) *Extractor {
	newExt := e.clone()
	newExt.options.logger = logger
	return newExt
}

// Text runs the extraction and returns the reconstructed text, any
// non-fatal warnings, and an error if extraction failed.
//
// Example:
//
//	text, warnings, err := reflow.FromDump("tokens.json").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", reflow.FormatWarnings(warnings))
//	}
func (e *Extractor) Text() (string, []Warning, error) {
	result, warnings, err := e.Result()
	if err != nil {
		return "", warnings, err
	}
	return result.Text, warnings, nil
}

// Result runs the extraction and returns the full pipeline result:
// text, verification report, quality score, tables, and footnotes.
func (e *Extractor) Result() (*pipeline.Result, []Warning, error) {
	return e.ResultContext(context.Background())
}

// ResultContext is Result with cancellation
func (e *Extractor) ResultContext(ctx context.Context) (*pipeline.Result, []Warning, error) {
	if e.err != nil {
		return nil, nil, e.err
	}

	doc, err := e.loadDocument(ctx)
	if err != nil {
		return nil, nil, err
	}
	doc = e.selectPages(doc)

	cfg := e.options.pipelineConfig()
	var result *pipeline.Result
	if e.options.remediate {
		controller := pipeline.NewController(cfg, e.options.logger)
		result, err = controller.Run(ctx, doc)
	} else {
		result, err = pipeline.New(cfg, e.options.logger).Run(ctx, doc)
	}
	if err != nil {
		return nil, nil, err
	}

	warnings := make([]Warning, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, Warning{Message: w})
	}
	return result, warnings, nil
}

// loadDocument resolves the extraction source
func (e *Extractor) loadDocument(ctx context.Context) (*pipeline.Document, error) {
	if e.doc != nil {
		return e.doc, nil
	}
	if e.path == "" {
		return nil, fmt.Errorf("no source specified")
	}
	return source.NewDumpParser().Parse(ctx, e.path)
}

// selectPages applies the page selection, keeping document order
func (e *Extractor) selectPages(doc *pipeline.Document) *pipeline.Document {
	if len(e.options.pages) == 0 {
		return doc
	}

	wanted := make(map[int]bool, len(e.options.pages))
	for _, n := range e.options.pages {
		wanted[n] = true
	}

	selected := &pipeline.Document{ID: doc.ID, Name: doc.Name}
	for _, page := range doc.Pages {
		if wanted[page.Number] {
			selected.Pages = append(selected.Pages, page)
		}
	}
	return selected
}

// Tables runs the extraction and returns only the detected tables
func (e *Extractor) Tables() ([]*model.Table, []Warning, error) {
	result, warnings, err := e.Result()
	if err != nil {
		return nil, warnings, err
	}
	return result.Tables, warnings, nil
}

// Quality runs the extraction and returns only the quality report
func (e *Extractor) Quality() (model.QualityReport, []Warning, error) {
	result, warnings, err := e.Result()
	if err != nil {
		return model.QualityReport{}, warnings, err
	}
	return result.Quality, warnings, nil
}
