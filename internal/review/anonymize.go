// Package review runs the blind peer-review round: assessor outputs are
// anonymized under stable labels, every active assessor critiques and ranks
// the labeled responses, and validated rankings are collected for
// arbitration. Anonymization exists to prevent identity-based bias in the
// rankings.
package review

import (
	"encoding/json"
	"fmt"

	"github.com/Iron-Ham/council/internal/schema"
)

// failedSlotPlaceholder stands in for an assessor that produced no output.
// Failed slots keep their label so the label count always equals the
// configured assessor count.
const failedSlotPlaceholder = `{"error": "Model failed to respond"}`

// Labels returns the n anonymization labels in order: "Response A",
// "Response B", ...
func Labels(n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("Response %c", 'A'+i)
	}
	return labels
}

// Anonymize assigns labels to assessor outputs in the stable order of
// active assessor identifiers: one label per slot, including failed slots,
// which receive an error placeholder instead of being dropped. The
// serialized output carries only assessment fields, so reviewers never see
// who authored a response.
func Anonymize(active []string, outputs map[string]*schema.AssessorOutput) (map[string]json.RawMessage, []string) {
	labels := Labels(len(active))

	anonymized := make(map[string]json.RawMessage, len(active))
	for i, name := range active {
		out := outputs[name]
		if out == nil {
			anonymized[labels[i]] = json.RawMessage(failedSlotPlaceholder)
			continue
		}
		raw, err := json.Marshal(out)
		if err != nil {
			anonymized[labels[i]] = json.RawMessage(failedSlotPlaceholder)
			continue
		}
		anonymized[labels[i]] = raw
	}
	return anonymized, labels
}
