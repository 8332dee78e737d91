// Package retry provides the executor that wraps every single backend call
// with bounded retry, exponential backoff, non-retriable short-circuit, and
// schema validation. Retry decisions are data: the error classification in
// the errors package decides whether an attempt consumes retry budget.
package retry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sretry "github.com/sethvargo/go-retry"

	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/schema"
)

// Call is a single unit of work invoking a backend with a prompt and
// returning its raw response text.
type Call func(ctx context.Context) (string, error)

// Policy parameterizes the executor.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// BaseDelay is the backoff base; the wait before retry n is
	// BaseDelay * 2^n.
	BaseDelay time.Duration
	// CallTimeout bounds each individual attempt (0 = unbounded).
	CallTimeout time.Duration
}

// SleepFunc waits for the given duration or until the context is canceled.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor retries backend calls according to its Policy.
type Executor struct {
	policy Policy
	logger *logging.Logger
	sleep  SleepFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithSleep replaces the sleep function. Intended for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(e *Executor) { e.sleep = sleep }
}

// NewExecutor creates an Executor with the given policy.
func NewExecutor(policy Policy, logger *logging.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = logging.NopLogger()
	}
	e := &Executor{
		policy: policy,
		logger: logger,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the call, parses its response as JSON, and applies the
// validator when one is supplied. A validation failure is treated exactly
// like a transient call failure and retried. Non-retriable errors abort
// immediately without consuming retry budget. After the final attempt
// fails, the error propagates; Execute never returns a degraded result.
func (e *Executor) Execute(ctx context.Context, call Call, validate schema.Validator) (json.RawMessage, error) {
	backoff := sretry.NewExponential(e.policy.BaseDelay)
	attempts := e.policy.MaxRetries + 1

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		raw, err := e.attempt(ctx, call, validate)
		if err == nil {
			return raw, nil
		}

		if errors.IsNonRetriable(err) {
			e.logger.Error("non-retriable backend error, aborting", "error", err)
			return nil, err
		}

		lastErr = err
		e.logger.Warn("backend call failed",
			"attempt", attempt+1, "max_attempts", attempts, "error", err)

		if attempt == attempts-1 {
			break
		}

		delay, stop := backoff.Next()
		if stop {
			break
		}
		e.logger.Debug("retrying backend call", "delay", delay.String())
		if err := e.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", errors.ErrRetriesExhausted, attempts, lastErr)
}

// attempt runs one bounded call including parse and validation.
func (e *Executor) attempt(ctx context.Context, call Call, validate schema.Validator) (json.RawMessage, error) {
	if e.policy.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.policy.CallTimeout)
		defer cancel()
	}

	text, err := call(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := schema.ParseResponse(text)
	if err != nil {
		return nil, err
	}

	if validate != nil {
		if err := validate(raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// sleepContext waits for d or until ctx is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
