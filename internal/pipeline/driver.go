package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/council/internal/arbiter"
	"github.com/Iron-Ham/council/internal/council"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/review"
	"github.com/Iron-Ham/council/internal/schema"
)

// Driver sequences the deliberation stages per unit and batches units to
// bound concurrent backend load. One unit failing terminally never affects
// a sibling unit or the run's completion.
type Driver struct {
	pool        *council.Pool
	coordinator *review.Coordinator
	arbiter     *arbiter.Arbiter
	logger      *logging.Logger

	varianceThreshold float64
	batchSize         int
	interBatchDelay   time.Duration
}

// Options configures a Driver.
type Options struct {
	// VarianceThreshold is the population standard deviation of risk
	// scores above which a peer review round runs.
	VarianceThreshold float64
	// BatchSize is how many units run through the state machine
	// concurrently. Values below 1 are treated as 1.
	BatchSize int
	// InterBatchDelay is an optional pause between batches to respect
	// backend rate limits.
	InterBatchDelay time.Duration
}

// NewDriver creates a Driver over the deliberation stages.
func NewDriver(pool *council.Pool, coordinator *review.Coordinator, arb *arbiter.Arbiter, opts Options, logger *logging.Logger) *Driver {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	return &Driver{
		pool:              pool,
		coordinator:       coordinator,
		arbiter:           arb,
		logger:            logger,
		varianceThreshold: opts.VarianceThreshold,
		batchSize:         opts.BatchSize,
		interBatchDelay:   opts.InterBatchDelay,
	}
}

// Run processes every unit through the full state machine and returns one
// result per unit in original unit order, regardless of completion order.
func (d *Driver) Run(ctx context.Context, units []schema.Unit) []Result {
	results := make([]Result, len(units))

	for start := 0; start < len(units); start += d.batchSize {
		end := min(start+d.batchSize, len(units))
		d.logger.Info("processing batch",
			"from", start, "to", end-1, "total_units", len(units))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			unit := units[i]
			g.Go(func() error {
				results[i] = d.processUnit(gctx, unit)
				return nil
			})
		}
		// Goroutines always return nil; failures become per-unit records.
		_ = g.Wait()

		if end < len(units) && d.interBatchDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(d.interBatchDelay):
			}
		}
	}

	return results
}

// processUnit walks one unit through the state machine. Every exit path,
// including a panic, produces a Result; nothing propagates to siblings.
func (d *Driver) processUnit(ctx context.Context, unit schema.Unit) (result Result) {
	log := d.logger.WithUnit(unit.ID)
	state := StatePending

	defer func() {
		if r := recover(); r != nil {
			log.Error("unit processing panicked", "state", state.String(), "panic", r)
			result = d.failedResult(unit, fmt.Errorf("panic in state %s: %v", state, r))
		}
	}()

	state = StateAnalyzing
	outputs := d.pool.Analyze(ctx, unit.Text)

	if !council.ShouldProceed(outputs) {
		state = StateShortCircuited
		log.Info("no detection by any assessor, skipping arbitration")
		return d.shortCircuitResult(unit)
	}

	data := &schema.CouncilData{}
	if reason, ok := council.NeedsReview(outputs, d.varianceThreshold); ok {
		state = StateReviewPending
		log.Info("assessors disagree, running peer review", "reason", string(reason))

		rev := d.coordinator.Review(ctx, unit.Text, outputs)
		data.Responses = rev.Responses
		data.Reviews = rev.Reviews
		state = StateReviewed
	} else {
		state = StateConsensusReached
		log.Info("assessors agree, skipping peer review")
		data.Responses, _ = review.Anonymize(d.pool.Active(), outputs)
	}

	state = StateArbitrating
	verdict, err := d.arbiter.Arbitrate(ctx, unit.Text, data)
	if err != nil {
		state = StateFailed
		log.Error("unit failed during arbitration", "error", err)
		return d.failedResult(unit, err)
	}

	state = StateDone
	log.Info("unit done",
		"final_risk_score", verdict.FinalScore, "risk_level", verdict.RiskLevel)
	return Result{UnitID: unit.ID, Verdict: *verdict}
}

// shortCircuitResult finalizes a unit no assessor flagged, without any
// arbitration call. The None risk level is a pipeline-only sentinel meaning
// "not evaluated".
func (d *Driver) shortCircuitResult(unit schema.Unit) Result {
	return Result{
		UnitID: unit.ID,
		Verdict: schema.Verdict{
			ClauseText:    unit.Text,
			Detected:      false,
			Category:      nil,
			FinalScore:    0,
			RiskLevel:     schema.RiskNone,
			Justification: unanimousJustification,
		},
	}
}

// failedResult converts a terminal unit error into a degraded verdict-shaped
// record so the run can complete.
func (d *Driver) failedResult(unit schema.Unit, err error) Result {
	return Result{
		UnitID: unit.ID,
		Verdict: schema.Verdict{
			ClauseText:    unit.Text,
			Detected:      false,
			Category:      nil,
			FinalScore:    0,
			RiskLevel:     schema.RiskError,
			Justification: err.Error(),
		},
	}
}
