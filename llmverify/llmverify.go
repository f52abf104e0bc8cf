// Package llmverify is the optional LLM verification collaborator: it
// sends extracted text with a sample of the source tokens to an external
// model endpoint for a consistency opinion. Calls are bounded by timeout
// and retry, audited in the log, and never fatal to extraction — a failed
// call degrades to "no opinion".
package llmverify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tsawler/reflow/pipeline"
)

// Config holds client settings
type Config struct {
	// URL is the verification endpoint; the client POSTs JSON to it
	URL string

	// Headers are added to every request (auth tokens etc.)
	Headers map[string]string

	// Timeout bounds one HTTP round trip
	// Default: 45s
	Timeout time.Duration

	// Retries is the number of re-attempts after a failed call
	// Default: 2
	Retries int

	// MinConfidence is the cutoff below which the model's opinion is
	// discarded as unreliable
	// Default: 0.6
	MinConfidence float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       45 * time.Second,
		Retries:       2,
		MinConfidence: 0.6,
	}
}

// Request is the verification payload
type Request struct {
	DocumentID string `json:"document_id"`

	// Excerpt is the extracted text under review
	Excerpt string `json:"excerpt"`

	// SourceSample is a sample of raw source token texts for grounding
	SourceSample []string `json:"source_sample"`
}

// Response is the endpoint's verdict
type Response struct {
	// Consistent reports whether the excerpt is consistent with the sample
	Consistent bool `json:"consistent"`

	// Confidence is the model's self-reported confidence in [0,1]
	Confidence float64 `json:"confidence"`

	// Findings are free-text inconsistencies the model noticed
	Findings []string `json:"findings,omitempty"`
}

// Assessment is the client's interpretation of a Response
type Assessment struct {
	Response

	// Usable is true when confidence cleared the cutoff; callers must
	// ignore the verdict otherwise
	Usable bool
}

// Client talks to the verification endpoint
type Client struct {
	config Config
	http   *http.Client
	logger *zap.Logger
}

// New creates a client. A nil logger disables logging.
func New(config Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = 45 * time.Second
	}
	return &Client{
		config: config,
		http:   &http.Client{Timeout: config.Timeout},
		logger: logger,
	}
}

// Verify sends one verification request, retrying on failure. Every call
// is logged with a request id for audit.
func (c *Client) Verify(ctx context.Context, req Request) (*Assessment, error) {
	if c.config.URL == "" {
		return nil, fmt.Errorf("llmverify: no endpoint configured")
	}

	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("llmverify: encode request: %w", err)
	}

	reqID := uuid.NewString()
	var lastErr error
	for attempt := 0; attempt <= c.config.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.send(ctx, body, reqID)
		if err != nil {
			lastErr = err
			c.logger.Warn("llm verification attempt failed",
				zap.String("req_id", reqID),
				zap.Int("attempt", attempt+1),
				zap.Int("status", status),
				zap.Error(err))
			continue
		}

		var resp Response
		if err := sonic.Unmarshal(raw, &resp); err != nil {
			lastErr = fmt.Errorf("llmverify: parse response: %w", err)
			continue
		}

		usable := resp.Confidence >= c.config.MinConfidence
		c.logger.Info("llm verification verdict",
			zap.String("req_id", reqID),
			zap.String("document", req.DocumentID),
			zap.Bool("consistent", resp.Consistent),
			zap.Float64("confidence", resp.Confidence),
			zap.Bool("usable", usable))
		return &Assessment{Response: resp, Usable: usable}, nil
	}
	return nil, lastErr
}

var _ pipeline.ConsistencyChecker = (*Client)(nil)

// Check adapts Verify to the pipeline's consistency-checker contract, so a
// Client can be placed directly on a pipeline Config.
func (c *Client) Check(ctx context.Context, documentID, excerpt string, sample []string) (consistent, usable bool, findings []string, err error) {
	assessment, err := c.Verify(ctx, Request{
		DocumentID:   documentID,
		Excerpt:      excerpt,
		SourceSample: sample,
	})
	if err != nil {
		return false, false, nil, err
	}
	return assessment.Consistent, assessment.Usable, assessment.Findings, nil
}

// send performs one HTTP round trip
func (c *Client) send(ctx context.Context, body []byte, reqID string) ([]byte, int, error) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Debug("llm verification response",
		zap.String("req_id", reqID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(raw)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()))

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}
