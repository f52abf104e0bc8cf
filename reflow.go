// Package reflow provides a fluent API for reconstructing deterministic,
// structured plain text from positioned tokens produced by an upstream
// PDF parser.
//
// Basic usage:
//
//	text, warnings, err := reflow.FromDump("tokens.json").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", reflow.FormatWarnings(warnings))
//	}
//
// With options:
//
//	text, _, err := reflow.FromDump("tokens.json").
//	    Pages(1, 2, 3).
//	    PageMarkers().
//	    Text()
//
// For advanced use cases, the lower-level pipeline package is also
// available.
package reflow

import (
	"strings"

	"github.com/tsawler/reflow/pipeline"
)

// FromDump creates an Extractor over a JSON token dump file. The file is
// read lazily, when a terminal operation runs.
//
// Example:
//
//	text, warnings, err := reflow.FromDump("tokens.json").Text()
func FromDump(path string) *Extractor {
	return &Extractor{
		path:    path,
		options: defaultOptions(),
	}
}

// FromTokens creates an Extractor over an already-parsed document. This is
// the entry point when the upstream parser runs in-process.
//
// Example:
//
//	text, warnings, err := reflow.FromTokens(doc).Text()
func FromTokens(doc *pipeline.Document) *Extractor {
	return &Extractor{
		doc:     doc,
		options: defaultOptions(),
	}
}

// Warning is a non-fatal condition encountered during extraction. The
// affected content is degraded or skipped, never silently dropped without
// a record.
type Warning struct {
	Message string
}

// FormatWarnings renders warnings as a single string for logging
func FormatWarnings(warnings []Warning) string {
	parts := make([]string, 0, len(warnings))
	for _, w := range warnings {
		parts = append(parts, w.Message)
	}
	return strings.Join(parts, "; ")
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text() or Result() and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	text := reflow.MustText(reflow.FromDump("tokens.json").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
