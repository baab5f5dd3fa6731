// Package views keeps the per-view request state of the AI screens: whether a
// request is in flight and the last result.
package views

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"industrial-ai-backend/internal/ai"
)

// ErrInFlight is returned by Submit while a previous request is still running
var ErrInFlight = errors.New("a request is already in flight for this view")

// Failure kinds recorded in State.Error
const (
	FailureTransport = "transport"
	FailureParse     = "parse"
	FailureInvalid   = "invalid"
)

// State is what a view renders. A nil Result is the "awaiting input" state.
type State[T any] struct {
	Loading   bool      `json:"loading"`
	Result    *T        `json:"result"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Controller owns one view's state and allows a single request at a time
type Controller[T any] struct {
	name   string
	logger *zap.Logger

	mu    sync.Mutex
	state State[T]
}

// NewController creates an idle controller
func NewController[T any](name string, logger *zap.Logger) *Controller[T] {
	return &Controller[T]{
		name:   name,
		logger: logger.With(zap.String("view", name)),
	}
}

// Name returns the view name
func (c *Controller[T]) Name() string {
	return c.name
}

// State returns a copy of the current state
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit runs fn unless a request is already loading, in which case it
// returns ErrInFlight without calling fn. Input rejected before anything is
// sent leaves the previous state as it was. Transport and parse failures
// clear the result; the error is returned for the caller to report.
func (c *Controller[T]) Submit(ctx context.Context, fn func(context.Context) (*T, error)) (State[T], error) {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		c.logger.Debug("Submit ignored, request in flight")
		return c.State(), ErrInFlight
	}
	c.state.Loading = true
	c.mu.Unlock()

	// a panicking fn must not leave the view stuck loading
	defer func() {
		c.mu.Lock()
		c.state.Loading = false
		c.mu.Unlock()
	}()

	result, err := fn(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil && failureKind(err) == FailureInvalid {
		c.state.Loading = false
		c.logger.Debug("Submit rejected before sending", zap.Error(err))
		return c.state, err
	}

	c.state = State[T]{
		Result:    result,
		UpdatedAt: time.Now(),
	}
	if err != nil {
		c.state.Result = nil
		c.state.Error = failureKind(err)
		c.logger.Warn("View request failed", zap.String("kind", c.state.Error), zap.Error(err))
	}
	return c.state, err
}

// Reset drops the last result. It does not interrupt an in-flight request.
func (c *Controller[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Result = nil
	c.state.Error = ""
	c.state.UpdatedAt = time.Time{}
}

func failureKind(err error) string {
	switch {
	case ai.IsParse(err):
		return FailureParse
	case ai.IsTransport(err):
		return FailureTransport
	default:
		return FailureInvalid
	}
}
