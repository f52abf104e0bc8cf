package reflow

import (
	"go.uber.org/zap"

	"github.com/tsawler/reflow/pipeline"
)

// ExtractOptions holds configuration for text extraction.
type ExtractOptions struct {
	// Page selection (1-indexed); nil means all pages
	pages []int

	// Insert "[page N]" boundary markers into the output
	pageMarkers bool

	// Remediation retry on low quality (on by default)
	remediate bool

	// Pipeline parameter overrides; nil uses pipeline.DefaultConfig
	config *pipeline.Config

	// Logger for the run; nil disables logging
	logger *zap.Logger
}

// defaultOptions returns the default extraction options.
func defaultOptions() ExtractOptions {
	return ExtractOptions{
		pages:     nil,
		remediate: true,
	}
}

// clone creates a deep copy of ExtractOptions.
func (o ExtractOptions) clone() ExtractOptions {
	newOpts := ExtractOptions{
		pageMarkers: o.pageMarkers,
		remediate:   o.remediate,
		logger:      o.logger,
	}

	if o.pages != nil {
		newOpts.pages = make([]int, len(o.pages))
		copy(newOpts.pages, o.pages)
	}
	if o.config != nil {
		cfg := *o.config
		newOpts.config = &cfg
	}
	return newOpts
}

// pipelineConfig resolves the effective pipeline configuration
func (o ExtractOptions) pipelineConfig() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	if o.config != nil {
		cfg = *o.config
	}
	if o.pageMarkers {
		cfg.PageMarkers = true
	}
	return cfg
}
