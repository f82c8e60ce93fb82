package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harun/arena/internal/observability"
	"github.com/rs/zerolog"
)

// ClientConfig holds resilient call client configuration
type ClientConfig struct {
	// MaxAttempts is the per-model retry ceiling (default 3)
	MaxAttempts int

	// BackoffBase is the initial delay before the first retry; the
	// delay doubles on each subsequent attempt (default 1s)
	BackoffBase time.Duration

	// FallbackModels are tried in order after the primary model
	// exhausts its attempts on transient failures
	FallbackModels []string

	Logger zerolog.Logger
}

// Client wraps a Provider with request validation, bounded retries
// with exponential backoff, and model fallback. It holds no per-call
// mutable state and is safe for concurrent use as long as the
// underlying provider is.
type Client struct {
	provider    Provider
	maxAttempts int
	backoffBase time.Duration
	fallbacks   []string
	logger      zerolog.Logger
}

// NewClient creates a new resilient call client
func NewClient(provider Provider, cfg ClientConfig) (*Client, error) {
	observability.EnsureRegistered()

	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}

	return &Client{
		provider:    provider,
		maxAttempts: cfg.MaxAttempts,
		backoffBase: cfg.BackoffBase,
		fallbacks:   cfg.FallbackModels,
		logger:      cfg.Logger,
	}, nil
}

// Send issues one chat request, retrying transient failures up to the
// ceiling per model and falling back to the configured alternate models
// once the primary is exhausted. Client-side errors fail immediately.
func (c *Client) Send(ctx context.Context, req ChatRequest) (*Reply, error) {
	if err := validateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	start := time.Now()
	attempts := 0
	var lastErr error

	for _, model := range c.modelsToTry(req.Model) {
		attempt := req
		attempt.Model = model

		resp, tried, err := c.sendWithRetry(ctx, attempt)
		attempts += tried
		if err == nil {
			return &Reply{
				Content:  resp.Content,
				Model:    model,
				Latency:  time.Since(start),
				Attempts: attempts,
			}, nil
		}

		lastErr = err

		// A request that is certain to repeat its failure gains
		// nothing from another model
		if !isTransient(err) {
			return nil, err
		}

		if ctx.Err() != nil {
			break
		}

		c.logger.Warn().
			Str("model", model).
			Err(err).
			Msg("Model exhausted, trying fallback")
	}

	return nil, fmt.Errorf("%w: all models exhausted after %d attempts: %w", ErrUpstreamUnavailable, attempts, lastErr)
}

// sendWithRetry runs the per-model attempt loop and reports how many
// attempts it consumed.
func (c *Client) sendWithRetry(ctx context.Context, req ChatRequest) (*ChatResponse, int, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		resp, err := c.provider.Call(ctx, req)
		if err == nil {
			observability.RecordCallAttempt(req.Model, true)
			return resp, attempt + 1, nil
		}

		lastErr = err
		observability.RecordCallAttempt(req.Model, false)

		switch classify(err) {
		case classInvalid:
			return nil, attempt + 1, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		case classTransient:
			// fall through to backoff
		default:
			// Unclassified errors are not retried; surface with the
			// cause retained
			return nil, attempt + 1, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
		}

		if attempt == c.maxAttempts-1 {
			break
		}

		delay := c.backoffBase << attempt
		c.logger.Info().
			Str("model", req.Model).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Retrying after transient error")

		select {
		case <-ctx.Done():
			return nil, attempt + 1, fmt.Errorf("%w: aborted during backoff: %w", ErrUpstreamUnavailable, ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, c.maxAttempts, fmt.Errorf("%w: max retries (%d) exceeded: %w", ErrUpstreamUnavailable, c.maxAttempts, lastErr)
}

// modelsToTry returns the primary model followed by fallbacks,
// skipping duplicates of the primary.
func (c *Client) modelsToTry(primary string) []string {
	models := []string{primary}
	for _, m := range c.fallbacks {
		if m != primary {
			models = append(models, m)
		}
	}
	return models
}

// isTransient reports whether an already-wrapped call error may be
// retried against another model.
func isTransient(err error) bool {
	return err != nil && !errors.Is(err, ErrInvalidRequest)
}

func validateRequest(req ChatRequest) error {
	if req.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if len(req.Messages) == 0 {
		return fmt.Errorf("messages cannot be empty")
	}
	if req.Messages[len(req.Messages)-1].Role != RoleUser {
		return fmt.Errorf("messages must end with a user entry")
	}
	if req.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}
