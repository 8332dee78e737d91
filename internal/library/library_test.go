package library

import (
	"strings"
	"testing"
)

func TestTypes(t *testing.T) {
	types := Types()
	want := []string{"Indemnity", "Payment", "Data Security"}

	if len(types) != len(want) {
		t.Fatalf("Types() returned %d entries, want %d", len(types), len(want))
	}
	for i, name := range want {
		if types[i] != name {
			t.Errorf("Types()[%d] = %q, want %q", i, types[i], name)
		}
	}
}

func TestIsKnownType(t *testing.T) {
	for _, name := range Types() {
		if !IsKnownType(name) {
			t.Errorf("IsKnownType(%q) = false, want true", name)
		}
	}

	for _, name := range []string{"Limitation of Liability", "payment", ""} {
		if IsKnownType(name) {
			t.Errorf("IsKnownType(%q) = true, want false", name)
		}
	}
}

func TestPromptText(t *testing.T) {
	text := PromptText()
	for _, name := range Types() {
		if !strings.Contains(text, name) {
			t.Errorf("PromptText() missing category %q", name)
		}
	}
}
