package council

import (
	"context"

	"github.com/sourcegraph/conc"

	"github.com/Iron-Ham/council/internal/backend"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/prompt"
	"github.com/Iron-Ham/council/internal/retry"
	"github.com/Iron-Ham/council/internal/schema"
)

// Pool fans a clause out to every active assessor in parallel, each call
// individually wrapped in the retry executor. An assessor that exhausts its
// retries yields nil for its slot; the other assessors are unaffected.
type Pool struct {
	registry *backend.Registry
	executor *retry.Executor
	logger   *logging.Logger
}

// NewPool creates a Pool over the registry's active assessors.
func NewPool(registry *backend.Registry, executor *retry.Executor, logger *logging.Logger) *Pool {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Pool{
		registry: registry,
		executor: executor,
		logger:   logger,
	}
}

// Active returns the ordered assessor identifiers participating in
// analysis. Anonymization label assignment depends on this order.
func (p *Pool) Active() []string {
	return p.registry.Active()
}

// Analyze invokes every active assessor concurrently with the analysis
// prompt for the clause. The returned map has one entry per active
// assessor; a failed assessor maps to nil rather than aborting the pool
// call. Every failure is logged with the assessor identity.
func (p *Pool) Analyze(ctx context.Context, clauseText string) map[string]*schema.AssessorOutput {
	analysisPrompt := prompt.Analysis(clauseText)
	active := p.registry.Active()

	// Each goroutine writes only its own slot; no shared mutable state.
	results := make([]*schema.AssessorOutput, len(active))

	var wg conc.WaitGroup
	for i, name := range active {
		i, name := i, name
		b, ok := p.registry.Get(name)
		if !ok {
			p.logger.Error("active assessor has no backend", "assessor", name)
			continue
		}

		wg.Go(func() {
			raw, err := p.executor.Execute(ctx, func(ctx context.Context) (string, error) {
				return b.Complete(ctx, analysisPrompt)
			}, schema.ValidateAssessorOutput)
			if err != nil {
				p.logger.Warn("assessor returned no result during initial analysis",
					"assessor", name, "error", err)
				return
			}

			out, err := schema.DecodeAssessorOutput(raw)
			if err != nil {
				p.logger.Warn("assessor output failed to decode",
					"assessor", name, "error", err)
				return
			}
			results[i] = out
		})
	}
	wg.Wait()

	outputs := make(map[string]*schema.AssessorOutput, len(active))
	for i, name := range active {
		outputs[name] = results[i]
	}
	return outputs
}
