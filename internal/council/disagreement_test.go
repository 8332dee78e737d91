package council

import (
	"testing"

	"github.com/Iron-Ham/council/internal/schema"
)

func strptr(s string) *string { return &s }

func output(score float64, category string, balanced bool) *schema.AssessorOutput {
	var cat *string
	if category != "" {
		cat = strptr(category)
	}
	return &schema.AssessorOutput{
		Detected:  category != "",
		Category:  cat,
		RiskScore: score,
		Balanced:  balanced,
	}
}

func TestShouldProceed(t *testing.T) {
	t.Run("empty map", func(t *testing.T) {
		if ShouldProceed(map[string]*schema.AssessorOutput{}) {
			t.Error("ShouldProceed({}) should be false")
		}
	})

	t.Run("nothing detected", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": {Detected: false},
			"b": nil,
		}
		if ShouldProceed(outputs) {
			t.Error("ShouldProceed should be false when no assessor detects anything")
		}
	})

	t.Run("one detection suffices", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": {Detected: true},
			"b": nil,
		}
		if !ShouldProceed(outputs) {
			t.Error("ShouldProceed should be true when any assessor detects")
		}
	})
}

func TestNeedsReview(t *testing.T) {
	const threshold = 1.0

	t.Run("agreement yields no review", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": output(2.0, "Payment", true),
			"b": output(2.1, "Payment", true),
			"c": output(1.9, "Payment", true),
		}
		if reason, ok := NeedsReview(outputs, threshold); ok {
			t.Errorf("close agreement should not trigger review, got reason %q", reason)
		}
	})

	t.Run("fewer than two valid outputs", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": output(9.0, "Indemnity", false),
			"b": nil,
			"c": nil,
		}
		if _, ok := NeedsReview(outputs, threshold); ok {
			t.Error("a single valid output is insufficient data to judge disagreement")
		}
	})

	t.Run("score variance", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": output(1.0, "Payment", true),
			"b": output(9.0, "Payment", true),
			"c": output(2.0, "Payment", true),
		}
		reason, ok := NeedsReview(outputs, threshold)
		if !ok {
			t.Fatal("high score spread should trigger review")
		}
		if reason != ReasonScoreVariance {
			t.Errorf("reason = %q, want %q", reason, ReasonScoreVariance)
		}
	})

	t.Run("category mismatch", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": output(2.0, "Payment Terms", true),
			"b": output(2.0, "Indemnity", true),
		}
		reason, ok := NeedsReview(outputs, threshold)
		if !ok {
			t.Fatal("category disagreement should trigger review")
		}
		if reason != ReasonTypeMismatch {
			t.Errorf("reason = %q, want %q", reason, ReasonTypeMismatch)
		}
	})

	t.Run("nil category counts as its own value", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": output(2.0, "Payment", true),
			"b": output(2.0, "", true),
		}
		reason, ok := NeedsReview(outputs, threshold)
		if !ok || reason != ReasonTypeMismatch {
			t.Errorf("nil vs non-nil category should mismatch, got (%q, %v)", reason, ok)
		}
	})

	t.Run("balance mismatch", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": output(2.0, "Payment", true),
			"b": output(2.0, "Payment", false),
		}
		reason, ok := NeedsReview(outputs, threshold)
		if !ok {
			t.Fatal("balance disagreement should trigger review")
		}
		if reason != ReasonBalanceMismatch {
			t.Errorf("reason = %q, want %q", reason, ReasonBalanceMismatch)
		}
	})

	t.Run("variance takes priority over category", func(t *testing.T) {
		outputs := map[string]*schema.AssessorOutput{
			"a": output(1.0, "Payment", true),
			"b": output(9.0, "Indemnity", false),
		}
		reason, _ := NeedsReview(outputs, threshold)
		if reason != ReasonScoreVariance {
			t.Errorf("reason = %q, want %q (priority order)", reason, ReasonScoreVariance)
		}
	})
}

func TestPopulationStdDev(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"identical", []float64{2, 2, 2}, 0},
		{"spread", []float64{2, 4}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := populationStdDev(tc.values)
			if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("populationStdDev(%v) = %v, want %v", tc.values, got, tc.want)
			}
		})
	}
}
