package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PoolConfig holds configuration for batch processing
type PoolConfig struct {
	// Workers bounds the number of documents processed concurrently
	// Default: 4
	Workers int
}

// DefaultPoolConfig returns sensible default configuration
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Workers: 4}
}

// BatchItem is the outcome for one document in a batch
type BatchItem struct {
	Document *Document
	Result   *Result
	Err      error
}

// Pool processes a batch of documents concurrently. Each document gets its
// own remediation controller, so documents share no mutable state and the
// per-document output is identical to a standalone run.
type Pool struct {
	config      PoolConfig
	base        Config
	remediation RemediationConfig
	logger      *zap.Logger
}

// NewPool creates a pool with default worker and remediation settings
func NewPool(base Config, logger *zap.Logger) *Pool {
	return NewPoolWithConfig(base, DefaultPoolConfig(), DefaultRemediationConfig(), logger)
}

// NewPoolWithConfig creates a pool with custom settings
func NewPoolWithConfig(base Config, config PoolConfig, remediation RemediationConfig, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Pool{
		config:      config,
		base:        base,
		remediation: remediation,
		logger:      logger,
	}
}

// Process runs every document through the pipeline with remediation and
// returns one item per document, in input order. A document failure is
// recorded in its item; only context cancellation aborts the batch.
func (p *Pool) Process(ctx context.Context, docs []*Document) ([]BatchItem, error) {
	items := make([]BatchItem, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)

	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			controller := NewControllerWithConfig(p.base, p.remediation, p.logger)
			result, err := controller.Run(ctx, doc)
			items[i] = BatchItem{Document: doc, Result: result, Err: err}
			if err != nil {
				p.logger.Warn("document failed",
					zap.String("document", doc.ID),
					zap.Error(err))
			}
			// Per-document errors stay in the item; the batch goes on
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return items, err
	}
	return items, nil
}
