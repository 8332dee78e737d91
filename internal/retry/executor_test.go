package retry

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/schema"
)

// recordingSleep captures requested delays without actually sleeping.
type recordingSleep struct {
	delays []time.Duration
}

func (r *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

func newTestExecutor(maxRetries int, base time.Duration) (*Executor, *recordingSleep) {
	rec := &recordingSleep{}
	e := NewExecutor(
		Policy{MaxRetries: maxRetries, BaseDelay: base},
		logging.NopLogger(),
		WithSleep(rec.sleep),
	)
	return e, rec
}

func TestExecuteSucceedsAfterTransientFailures(t *testing.T) {
	base := 10 * time.Millisecond
	e, rec := newTestExecutor(2, base)

	calls := 0
	call := func(ctx context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", errors.NewBackendError(errors.KindNetwork, "fake", "transient", nil)
		}
		return `{"ok": true}`, nil
	}

	raw, err := e.Execute(context.Background(), call, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if string(raw) != `{"ok": true}` {
		t.Errorf("raw = %s", raw)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}

	// Backoff schedule must be base*1 then base*2.
	want := []time.Duration{base, 2 * base}
	if len(rec.delays) != len(want) {
		t.Fatalf("slept %d times, want %d", len(rec.delays), len(want))
	}
	for i, d := range want {
		if rec.delays[i] != d {
			t.Errorf("delay[%d] = %v, want %v", i, rec.delays[i], d)
		}
	}
}

func TestExecuteNonRetriableAbortsImmediately(t *testing.T) {
	e, rec := newTestExecutor(2, time.Second)

	calls := 0
	call := func(ctx context.Context) (string, error) {
		calls++
		return "", errors.NewBackendError(errors.KindAuth, "fake", "invalid key", nil)
	}

	_, err := e.Execute(context.Background(), call, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("slept %d times, want 0", len(rec.delays))
	}

	var be *errors.BackendError
	if !errors.As(err, &be) || be.Kind != errors.KindAuth {
		t.Errorf("expected the auth error to propagate unchanged, got: %v", err)
	}
	if errors.Is(err, errors.ErrRetriesExhausted) {
		t.Error("non-retriable errors must not be wrapped as retries exhausted")
	}
}

func TestExecutePropagatesAfterExhaustion(t *testing.T) {
	e, rec := newTestExecutor(2, time.Millisecond)

	calls := 0
	call := func(ctx context.Context) (string, error) {
		calls++
		return "", errors.NewBackendError(errors.KindServer, "fake", "boom", nil)
	}

	_, err := e.Execute(context.Background(), call, nil)
	if !errors.Is(err, errors.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(rec.delays) != 2 {
		t.Errorf("slept %d times, want 2", len(rec.delays))
	}
}

func TestExecuteRetriesMalformedOutput(t *testing.T) {
	e, _ := newTestExecutor(1, time.Millisecond)

	calls := 0
	call := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "Sure! Here is the JSON you asked for.", nil
		}
		return "```json\n{\"ok\": true}\n```", nil
	}

	raw, err := e.Execute(context.Background(), call, nil)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if string(raw) != `{"ok": true}` {
		t.Errorf("raw = %s", raw)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecuteRetriesValidationFailure(t *testing.T) {
	e, _ := newTestExecutor(1, time.Millisecond)

	calls := 0
	call := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return `{"score": 99}`, nil
		}
		return `{"score": 5}`, nil
	}

	validate := func(raw json.RawMessage) error {
		var out struct {
			Score float64 `json:"score"`
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
		if out.Score > 10 {
			return errors.NewValidationError("score", "must be between 0 and 10")
		}
		return nil
	}

	raw, err := e.Execute(context.Background(), call, schema.Validator(validate))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if string(raw) != `{"score": 5}` {
		t.Errorf("raw = %s", raw)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecuteStopsWhenContextCanceled(t *testing.T) {
	e := NewExecutor(Policy{MaxRetries: 5, BaseDelay: time.Millisecond}, logging.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	call := func(ctx context.Context) (string, error) {
		return "", errors.NewBackendError(errors.KindNetwork, "fake", "transient", nil)
	}

	_, err := e.Execute(ctx, call, nil)
	if err == nil {
		t.Fatal("expected an error when context is canceled")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got: %v", err)
	}
}

func TestExecuteAppliesCallTimeout(t *testing.T) {
	e := NewExecutor(
		Policy{MaxRetries: 0, BaseDelay: time.Millisecond, CallTimeout: 5 * time.Millisecond},
		logging.NopLogger(),
	)

	call := func(ctx context.Context) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the call context")
		}
		return `{}`, nil
	}

	if _, err := e.Execute(context.Background(), call, nil); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
}
