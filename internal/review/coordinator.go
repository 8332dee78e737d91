package review

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/council/internal/backend"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/prompt"
	"github.com/Iron-Ham/council/internal/retry"
	"github.com/Iron-Ham/council/internal/schema"
)

// Result holds the outcome of a review round: the anonymized responses the
// reviewers saw, and one validated review (or nil on failure) per reviewer.
type Result struct {
	// Responses maps anonymization label to the anonymized output (or the
	// error placeholder for a failed slot).
	Responses map[string]json.RawMessage
	// Reviews maps generic reviewer ids ("Reviewer_1", ...) to validated
	// cross-evaluations; a failed reviewer maps to nil.
	Reviews map[string]*schema.ReviewOutput
}

// Coordinator runs the blind cross-evaluation round across all active
// assessors.
type Coordinator struct {
	registry *backend.Registry
	executor *retry.Executor
	logger   *logging.Logger
}

// NewCoordinator creates a review Coordinator.
func NewCoordinator(registry *backend.Registry, executor *retry.Executor, logger *logging.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Coordinator{
		registry: registry,
		executor: executor,
		logger:   logger,
	}
}

// Review anonymizes the assessor outputs, asks every active assessor to
// blind-review them, and collects validated rankings. Reviewer identities
// are generic role labels independent of the underlying assessor. A failed
// reviewer degrades to nil without aborting its siblings.
func (c *Coordinator) Review(ctx context.Context, clauseText string, outputs map[string]*schema.AssessorOutput) *Result {
	active := c.registry.Active()

	// The review prompt template is authored for exactly 3 labels. Other
	// council sizes still proceed with dynamically generated labels, but
	// the JSON shape in the template no longer matches what reviewers see.
	if len(active) != prompt.ReviewTemplateLabels {
		c.logger.Warn("review template and label count diverge",
			"active_assessors", len(active),
			"template_labels", prompt.ReviewTemplateLabels)
	}

	anonymized, labels := Anonymize(active, outputs)

	rendered := make(map[string]string, len(anonymized))
	for label, raw := range anonymized {
		rendered[label] = prettyJSON(raw)
	}
	reviewPrompt := prompt.Review(clauseText, prompt.ResponsesBlock(labels, rendered))

	validate := schema.ReviewValidator(labels)
	results := make([]*schema.ReviewOutput, len(active))

	var wg conc.WaitGroup
	for i, name := range active {
		i, name := i, name
		b, ok := c.registry.Get(name)
		if !ok {
			c.logger.Error("active assessor has no backend", "assessor", name)
			continue
		}
		reviewerID := fmt.Sprintf("Reviewer_%d", i+1)

		wg.Go(func() {
			raw, err := c.executor.Execute(ctx, func(ctx context.Context) (string, error) {
				return b.Complete(ctx, reviewPrompt)
			}, validate)
			if err != nil {
				c.logger.Warn("reviewer returned no result during review round",
					"reviewer", reviewerID, "error", err)
				return
			}

			out, err := schema.DecodeReviewOutput(raw)
			if err != nil {
				c.logger.Warn("review output failed to decode",
					"reviewer", reviewerID, "error", err)
				return
			}
			results[i] = out
		})
	}
	wg.Wait()

	reviews := make(map[string]*schema.ReviewOutput, len(active))
	for i := range active {
		reviews[fmt.Sprintf("Reviewer_%d", i+1)] = results[i]
	}

	return &Result{
		Responses: anonymized,
		Reviews:   reviews,
	}
}

// prettyJSON indents raw JSON for prompt readability.
func prettyJSON(raw json.RawMessage) string {
	var buf map[string]any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return string(raw)
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(pretty)
}
