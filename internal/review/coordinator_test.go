package review

import (
	"context"
	"testing"
	"time"

	"github.com/Iron-Ham/council/internal/backend"
	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/retry"
	"github.com/Iron-Ham/council/internal/schema"
)

const validReview = `{
	"evaluation": {
		"Response A": {"strengths": "thorough", "weaknesses": "verbose"},
		"Response B": {"strengths": "concise", "weaknesses": "shallow"},
		"Response C": {"strengths": "balanced", "weaknesses": "hedged"}
	},
	"ranking": {"1": "Response B", "2": "Response A", "3": "Response C"}
}`

func newTestCoordinator(backends map[string]backend.Backend, active []string) *Coordinator {
	reg := backend.NewRegistryFromBackends(active, active[0], active[0], backends)
	exec := retry.NewExecutor(
		retry.Policy{MaxRetries: 1, BaseDelay: time.Millisecond},
		logging.NopLogger(),
		retry.WithSleep(func(ctx context.Context, d time.Duration) error { return nil }),
	)
	return NewCoordinator(reg, exec, logging.NopLogger())
}

func threeOutputs() map[string]*schema.AssessorOutput {
	cat := "Indemnity"
	return map[string]*schema.AssessorOutput{
		"openai": {Detected: true, Category: &cat, RiskScore: 8},
		"claude": {RiskScore: 2},
		"gemini": {RiskScore: 5},
	}
}

func TestReviewCollectsAllReviewers(t *testing.T) {
	backends := map[string]backend.Backend{
		"openai": backend.NewFake("openai", backend.FakeStep{Text: validReview}),
		"claude": backend.NewFake("claude", backend.FakeStep{Text: validReview}),
		"gemini": backend.NewFake("gemini", backend.FakeStep{Text: validReview}),
	}
	coord := newTestCoordinator(backends, []string{"openai", "claude", "gemini"})

	result := coord.Review(context.Background(), "Vendor shall indemnify.", threeOutputs())

	if len(result.Reviews) != 3 {
		t.Fatalf("got %d reviews, want 3", len(result.Reviews))
	}
	for _, id := range []string{"Reviewer_1", "Reviewer_2", "Reviewer_3"} {
		review, ok := result.Reviews[id]
		if !ok {
			t.Fatalf("reviewer %q is missing", id)
		}
		if review == nil {
			t.Errorf("reviewer %q yielded nil, want review", id)
			continue
		}
		if review.Ranking["1"] != "Response B" {
			t.Errorf("reviewer %q top rank = %q, want %q", id, review.Ranking["1"], "Response B")
		}
	}
}

func TestReviewFailedAssessorStillLabeled(t *testing.T) {
	backends := map[string]backend.Backend{
		"openai": backend.NewFake("openai", backend.FakeStep{Text: validReview}),
		"claude": backend.NewFake("claude", backend.FakeStep{Text: validReview}),
		"gemini": backend.NewFake("gemini", backend.FakeStep{Text: validReview}),
	}
	coord := newTestCoordinator(backends, []string{"openai", "claude", "gemini"})

	outputs := threeOutputs()
	outputs["claude"] = nil

	result := coord.Review(context.Background(), "clause", outputs)

	if len(result.Responses) != 3 {
		t.Fatalf("got %d labeled responses, want 3 (failed slots keep their label)", len(result.Responses))
	}
	if _, ok := result.Responses["Response B"]; !ok {
		t.Error("failed assessor's label is missing from responses")
	}
}

func TestReviewFailedReviewerDegradesToNil(t *testing.T) {
	authErr := errors.NewBackendError(errors.KindAuth, "gemini", "invalid key", nil)
	backends := map[string]backend.Backend{
		"openai": backend.NewFake("openai", backend.FakeStep{Text: validReview}),
		"claude": backend.NewFake("claude", backend.FakeStep{Text: validReview}),
		"gemini": backend.NewFake("gemini", backend.FakeStep{Err: authErr}),
	}
	coord := newTestCoordinator(backends, []string{"openai", "claude", "gemini"})

	result := coord.Review(context.Background(), "clause", threeOutputs())

	if len(result.Reviews) != 3 {
		t.Fatalf("got %d reviews, want 3", len(result.Reviews))
	}
	if result.Reviews["Reviewer_3"] != nil {
		t.Error("failed reviewer should map to nil")
	}
	if result.Reviews["Reviewer_1"] == nil || result.Reviews["Reviewer_2"] == nil {
		t.Error("sibling reviewers must be unaffected by one failure")
	}
}

func TestReviewRejectsIncompleteRanking(t *testing.T) {
	incomplete := `{
		"evaluation": {"Response A": {"strengths": "x", "weaknesses": "y"}},
		"ranking": {"1": "Response A", "2": "Response B"}
	}`
	backends := map[string]backend.Backend{
		"openai": backend.NewFake("openai", backend.FakeStep{Text: incomplete}),
		"claude": backend.NewFake("claude", backend.FakeStep{Text: validReview}),
		"gemini": backend.NewFake("gemini", backend.FakeStep{Text: validReview}),
	}
	coord := newTestCoordinator(backends, []string{"openai", "claude", "gemini"})

	result := coord.Review(context.Background(), "clause", threeOutputs())

	if result.Reviews["Reviewer_1"] != nil {
		t.Error("a ranking missing a label must never pass validation")
	}
}
