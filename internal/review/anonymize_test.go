package review

import (
	"encoding/json"
	"testing"

	"github.com/Iron-Ham/council/internal/schema"
)

func TestLabels(t *testing.T) {
	got := Labels(3)
	want := []string{"Response A", "Response B", "Response C"}
	if len(got) != len(want) {
		t.Fatalf("got %d labels, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("label %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAnonymizeAssignsLabelsInActiveOrder(t *testing.T) {
	one := "Payment"
	outputs := map[string]*schema.AssessorOutput{
		"openai": {Detected: true, Category: &one, RiskScore: 7},
		"claude": {RiskScore: 1},
		"gemini": {RiskScore: 3},
	}

	anonymized, labels := Anonymize([]string{"claude", "openai", "gemini"}, outputs)

	if len(labels) != 3 {
		t.Fatalf("got %d labels, want 3", len(labels))
	}

	var a schema.AssessorOutput
	if err := json.Unmarshal(anonymized["Response A"], &a); err != nil {
		t.Fatalf("Response A did not round-trip: %v", err)
	}
	if a.RiskScore != 1 {
		t.Errorf("Response A risk score = %v, want 1 (claude is first in active order)", a.RiskScore)
	}

	var b schema.AssessorOutput
	if err := json.Unmarshal(anonymized["Response B"], &b); err != nil {
		t.Fatalf("Response B did not round-trip: %v", err)
	}
	if !b.Detected || b.Category == nil || *b.Category != "Payment" {
		t.Errorf("Response B = %+v, want openai's detection", b)
	}
}

func TestAnonymizeKeepsFailedSlots(t *testing.T) {
	outputs := map[string]*schema.AssessorOutput{
		"openai": {RiskScore: 2},
		"claude": nil,
		"gemini": {RiskScore: 4},
	}

	anonymized, labels := Anonymize([]string{"openai", "claude", "gemini"}, outputs)

	if len(anonymized) != 3 || len(labels) != 3 {
		t.Fatalf("failed slots must keep their label: got %d responses, %d labels", len(anonymized), len(labels))
	}

	var slot map[string]string
	if err := json.Unmarshal(anonymized["Response B"], &slot); err != nil {
		t.Fatalf("placeholder is not valid JSON: %v", err)
	}
	if slot["error"] != "Model failed to respond" {
		t.Errorf("placeholder error = %q, want %q", slot["error"], "Model failed to respond")
	}
}

func TestAnonymizeHidesAssessorIdentity(t *testing.T) {
	outputs := map[string]*schema.AssessorOutput{
		"openai": {RiskScore: 2, Justification: "routine terms"},
	}

	anonymized, _ := Anonymize([]string{"openai"}, outputs)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(anonymized["Response A"], &fields); err != nil {
		t.Fatal(err)
	}
	for _, banned := range []string{"openai", "model", "assessor"} {
		if _, ok := fields[banned]; ok {
			t.Errorf("anonymized output leaks field %q", banned)
		}
	}
}
