// Package arbiter produces the final verdict for a unit. The arbitrator
// backend receives the clause text plus the full council record and must
// speak in a single expert voice; its output is validated against the
// verdict schema before anything downstream may trust it.
package arbiter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Iron-Ham/council/internal/backend"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/prompt"
	"github.com/Iron-Ham/council/internal/retry"
	"github.com/Iron-Ham/council/internal/schema"
)

// Arbiter resolves a unit's council record into a final verdict.
type Arbiter struct {
	registry *backend.Registry
	executor *retry.Executor
	logger   *logging.Logger
}

// New creates an Arbiter.
func New(registry *backend.Registry, executor *retry.Executor, logger *logging.Logger) *Arbiter {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Arbiter{
		registry: registry,
		executor: executor,
		logger:   logger,
	}
}

// Arbitrate asks the configured arbitrator backend for a final verdict over
// the anonymized responses and any collected reviews. Unlike assessor and
// reviewer failures, an arbitration failure propagates: there is no degraded
// form of a final verdict.
func (a *Arbiter) Arbitrate(ctx context.Context, clauseText string, data *schema.CouncilData) (*schema.Verdict, error) {
	b, err := a.registry.Arbitrator()
	if err != nil {
		return nil, err
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding council record: %w", err)
	}
	arbitrationPrompt := prompt.Arbitration(clauseText, string(encoded))

	raw, err := a.executor.Execute(ctx, func(ctx context.Context) (string, error) {
		return b.Complete(ctx, arbitrationPrompt)
	}, schema.ValidateVerdict)
	if err != nil {
		a.logger.Error("arbitration failed", "arbitrator", b.Name(), "error", err)
		return nil, err
	}

	verdict, err := schema.DecodeVerdict(raw)
	if err != nil {
		return nil, err
	}
	a.logger.Info("verdict reached",
		"arbitrator", b.Name(),
		"final_risk_score", verdict.FinalScore,
		"risk_level", verdict.RiskLevel)
	return verdict, nil
}
