package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// RetryPolicy bounds a generation call. Timeout applies to each attempt;
// Backoff doubles after every failed attempt.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
	Timeout    time.Duration
}

// DefaultRetryPolicy returns the policy used when nothing is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		Backoff:    time.Second,
		Timeout:    60 * time.Second,
	}
}

type retryTransport struct {
	next   Transport
	policy RetryPolicy
	logger *zap.Logger
}

// WithRetry wraps next so transient failures are retried under policy
func WithRetry(next Transport, policy RetryPolicy, logger *zap.Logger) Transport {
	if policy.MaxRetries < 0 {
		policy.MaxRetries = 0
	}
	return &retryTransport{
		next:   next,
		policy: policy,
		logger: logger,
	}
}

func (r *retryTransport) Generate(ctx context.Context, req Request) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= r.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.policy.Backoff << (attempt - 1)
			r.logger.Warn("Retrying generation",
				zap.String("model", req.Model),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))

			if err := sleepContext(ctx, delay); err != nil {
				return "", fmt.Errorf("%w (last error: %v)", err, lastErr)
			}
		}

		text, err := r.attempt(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil || !Retryable(err) {
			return "", err
		}
	}

	return "", fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (r *retryTransport) attempt(ctx context.Context, req Request) (string, error) {
	if r.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.policy.Timeout)
		defer cancel()
	}
	return r.next.Generate(ctx, req)
}

// Retryable reports whether a failed call is worth repeating: rate limits,
// server errors, attempt timeouts and network faults are; client errors and
// cancellation are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
