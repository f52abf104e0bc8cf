package pipeline

import (
	"context"

	"go.uber.org/zap"
)

// RemediationConfig holds configuration for the retry controller
type RemediationConfig struct {
	// Threshold is the quality score at which a result is accepted
	// Default: 70
	Threshold float64

	// MaxRetries bounds the retries after the first attempt, so the
	// controller runs at most MaxRetries+1 attempts
	// Default: 2
	MaxRetries int

	// MinCoverage is the element coverage below which an attempt is never
	// accepted, whatever its score. Zero disables the coverage gate.
	// Default: 0.70
	MinCoverage float64
}

// DefaultRemediationConfig returns sensible default configuration
func DefaultRemediationConfig() RemediationConfig {
	return RemediationConfig{
		Threshold:   70.0,
		MaxRetries:  2,
		MinCoverage: 0.70,
	}
}

// RemediationState is the controller's position in its lifecycle
type RemediationState int

const (
	// StateIdle means no attempt has run yet
	StateIdle RemediationState = iota

	// StateRetrying means the last attempt scored below threshold and a
	// parameter set remains to try
	StateRetrying

	// StateAccepted means an attempt cleared the threshold
	StateAccepted

	// StateExhausted means every parameter set ran without clearing it;
	// the best attempt stands
	StateExhausted
)

func (s RemediationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRetrying:
		return "retrying"
	case StateAccepted:
		return "accepted"
	default:
		return "exhausted"
	}
}

// Controller drives bounded remediation: it steps through the ordered
// parameter sets, re-running the pipeline until a result clears the quality
// threshold or the sets run out. The same document always walks the same
// state sequence, and the best-scoring attempt is returned on exhaustion.
type Controller struct {
	config RemediationConfig
	sets   []Config
	logger *zap.Logger

	state RemediationState
	best  *Result
}

// NewController creates a controller over the parameter sets derived from
// base. A nil logger disables logging.
func NewController(base Config, logger *zap.Logger) *Controller {
	return NewControllerWithConfig(base, DefaultRemediationConfig(), logger)
}

// NewControllerWithConfig creates a controller with custom retry settings
func NewControllerWithConfig(base Config, config RemediationConfig, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	sets := ParameterSets(base)
	if max := config.MaxRetries + 1; len(sets) > max {
		sets = sets[:max]
	}
	return &Controller{
		config: config,
		sets:   sets,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the controller's current state
func (c *Controller) State() RemediationState {
	return c.state
}

// Run executes attempts until acceptance or exhaustion and returns the
// winning result. On context cancellation the best completed attempt is
// returned if one exists.
func (c *Controller) Run(ctx context.Context, doc *Document) (*Result, error) {
	for attempt := 1; attempt <= len(c.sets); attempt++ {
		result, err := New(c.sets[attempt-1], c.logger).Run(ctx, doc)
		if err != nil {
			if ctx.Err() != nil && c.best != nil {
				c.state = StateExhausted
				return c.best, nil
			}
			return nil, err
		}
		result.Attempt = attempt

		switch c.record(attempt, result) {
		case StateAccepted:
			return result, nil
		case StateRetrying:
			c.logger.Info("attempt rejected, retrying",
				zap.String("document", doc.ID),
				zap.Int("attempt", attempt),
				zap.Float64("score", result.Quality.Score),
				zap.Float64("coverage", result.Verification.Coverage),
				zap.Float64("threshold", c.config.Threshold))
		}
	}
	return c.best, nil
}

// record evaluates one finished attempt and advances the state machine.
// Acceptance needs both the score and the element coverage to clear their
// cutoffs; a high score over a lossy extraction still retries.
func (c *Controller) record(attempt int, result *Result) RemediationState {
	if c.best == nil || result.Quality.Score > c.best.Quality.Score {
		c.best = result
	}

	accepted := result.Quality.Score >= c.config.Threshold &&
		result.Verification.Coverage >= c.config.MinCoverage

	switch {
	case accepted:
		c.state = StateAccepted
	case attempt < len(c.sets):
		c.state = StateRetrying
	default:
		c.state = StateExhausted
	}
	return c.state
}
