package council

import (
	"context"
	"testing"
	"time"

	"github.com/Iron-Ham/council/internal/backend"
	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/retry"
)

const validAnalysis = `{
	"golden_clause_detected": true,
	"golden_clause_type": "Payment",
	"risk_score": 2,
	"balanced": true,
	"justification": "standard terms",
	"key_risk_indicators": []
}`

func newTestPool(backends map[string]backend.Backend, active []string) *Pool {
	reg := backend.NewRegistryFromBackends(active, active[0], active[0], backends)
	exec := retry.NewExecutor(
		retry.Policy{MaxRetries: 1, BaseDelay: time.Millisecond},
		logging.NopLogger(),
		retry.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }),
	)
	return NewPool(reg, exec, logging.NopLogger())
}

func TestAnalyzeAllSucceed(t *testing.T) {
	backends := map[string]backend.Backend{
		"openai": backend.NewFake("openai", backend.FakeStep{Text: validAnalysis}),
		"claude": backend.NewFake("claude", backend.FakeStep{Text: validAnalysis}),
		"gemini": backend.NewFake("gemini", backend.FakeStep{Text: validAnalysis}),
	}
	pool := newTestPool(backends, []string{"openai", "claude", "gemini"})

	outputs := pool.Analyze(context.Background(), "Invoices due in 30 days.")

	if len(outputs) != 3 {
		t.Fatalf("got %d outputs, want 3", len(outputs))
	}
	for name, out := range outputs {
		if out == nil {
			t.Errorf("assessor %q yielded nil, want output", name)
			continue
		}
		if out.RiskScore != 2 {
			t.Errorf("assessor %q risk score = %v, want 2", name, out.RiskScore)
		}
	}
}

func TestAnalyzeFailedSlotDegradesToNil(t *testing.T) {
	authErr := errors.NewBackendError(errors.KindAuth, "claude", "invalid key", nil)
	backends := map[string]backend.Backend{
		"openai": backend.NewFake("openai", backend.FakeStep{Text: validAnalysis}),
		"claude": backend.NewFake("claude", backend.FakeStep{Err: authErr}),
		"gemini": backend.NewFake("gemini", backend.FakeStep{Text: validAnalysis}),
	}
	pool := newTestPool(backends, []string{"openai", "claude", "gemini"})

	outputs := pool.Analyze(context.Background(), "Vendor shall indemnify.")

	if len(outputs) != 3 {
		t.Fatalf("got %d outputs, want 3 (failed slots must stay present)", len(outputs))
	}
	if outputs["claude"] != nil {
		t.Error("failed assessor should map to nil")
	}
	if outputs["openai"] == nil || outputs["gemini"] == nil {
		t.Error("sibling assessors must be unaffected by one failure")
	}
}

func TestAnalyzeRetriesTransientFailures(t *testing.T) {
	flaky := backend.NewFake("openai",
		backend.FakeStep{Err: errors.NewBackendError(errors.KindRateLimit, "openai", "429", nil)},
		backend.FakeStep{Text: validAnalysis},
	)
	backends := map[string]backend.Backend{"openai": flaky}
	pool := newTestPool(backends, []string{"openai"})

	outputs := pool.Analyze(context.Background(), "clause")

	if outputs["openai"] == nil {
		t.Fatal("assessor should recover after a transient failure")
	}
	if flaky.Calls() != 2 {
		t.Errorf("backend calls = %d, want 2", flaky.Calls())
	}
}

func TestAnalyzeRejectsOutOfVocabularyCategory(t *testing.T) {
	bad := `{
		"golden_clause_detected": true,
		"golden_clause_type": "Limitation of Liability",
		"risk_score": 5,
		"balanced": false,
		"justification": "x",
		"key_risk_indicators": []
	}`
	backends := map[string]backend.Backend{
		"openai": backend.NewFake("openai", backend.FakeStep{Text: bad}),
	}
	pool := newTestPool(backends, []string{"openai"})

	outputs := pool.Analyze(context.Background(), "clause")
	if outputs["openai"] != nil {
		t.Error("an invented category must never pass validation")
	}
}
