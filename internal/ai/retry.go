package ai

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/logger"
)

// RetryConfig controls how often and how patiently a completion is retried.
type RetryConfig struct {
	MaxAttempts       uint
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig makes up to three attempts per completion.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          5 * time.Second,
		BackoffMultiplier: 2,
	}
}

// RetryingCompleter wraps a Completer and retries failed calls with exponential
// backoff. Authentication failures and cancelled contexts are not retried.
type RetryingCompleter struct {
	next Completer
	cfg  RetryConfig
}

var _ Completer = (*RetryingCompleter)(nil)

func NewRetryingCompleter(next Completer, cfg RetryConfig) *RetryingCompleter {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	return &RetryingCompleter{next: next, cfg: cfg}
}

func (r *RetryingCompleter) ProviderName() string {
	return r.next.ProviderName()
}

func (r *RetryingCompleter) ModelFor(tier Tier) string {
	return r.next.ModelFor(tier)
}

func (r *RetryingCompleter) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	var attempts int

	b := backoff.NewExponentialBackOff()
	if r.cfg.InitialDelay > 0 {
		b.InitialInterval = r.cfg.InitialDelay
	}
	if r.cfg.MaxDelay > 0 {
		b.MaxInterval = r.cfg.MaxDelay
	}
	if r.cfg.BackoffMultiplier > 0 {
		b.Multiplier = r.cfg.BackoffMultiplier
	}

	operation := func() (CompletionResponse, error) {
		attempts++
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		if isPermanent(err) {
			return CompletionResponse{}, backoff.Permanent(err)
		}
		return CompletionResponse{}, err
	}

	notify := func(err error, next time.Duration) {
		log.Warn("completion attempt failed, retrying",
			"session", req.SessionKey,
			"attempt", attempts,
			"next_delay", next.String(),
			"error", err)
	}

	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.cfg.MaxAttempts),
		backoff.WithNotify(notify),
	)
	if err != nil {
		log.Error("completion failed",
			"session", req.SessionKey,
			"attempts", attempts,
			"error", err)
		return CompletionResponse{}, err
	}

	if resp.Usage != nil {
		resp.Usage.Attempts = attempts
		resp.Usage.DurationMs = time.Since(start).Milliseconds()
	}

	log.Debug("completion succeeded",
		"session", req.SessionKey,
		"attempts", attempts,
		"duration_ms", time.Since(start).Milliseconds())

	return resp, nil
}

func isPermanent(err error) bool {
	return errors.Is(err, domainErrors.ErrAIAuth) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
