package council

import (
	"math"

	"github.com/Iron-Ham/council/internal/schema"
)

// Reason explains why assessor outputs warrant a peer review round.
type Reason string

const (
	// ReasonScoreVariance indicates risk scores spread beyond the
	// configured threshold.
	ReasonScoreVariance Reason = "risk_score_variance"
	// ReasonTypeMismatch indicates assessors disagree on the clause
	// category.
	ReasonTypeMismatch Reason = "type_mismatch"
	// ReasonBalanceMismatch indicates assessors disagree on whether the
	// clause is balanced.
	ReasonBalanceMismatch Reason = "balance_mismatch"
)

// ShouldProceed reports whether the clause needs any further processing:
// true iff at least one non-nil output detected a golden clause. When all
// assessors failed or none detected anything the unit is finalized
// immediately without arbitration.
func ShouldProceed(outputs map[string]*schema.AssessorOutput) bool {
	for _, out := range outputs {
		if out != nil && out.Detected {
			return true
		}
	}
	return false
}

// NeedsReview decides whether the outputs disagree enough to warrant a
// blind review round, ignoring nil entries. With fewer than two valid
// outputs there is not enough data to judge disagreement. Checks run in
// fixed priority order: score variance, then category mismatch, then
// balance mismatch; the first condition met determines the reported
// reason.
func NeedsReview(outputs map[string]*schema.AssessorOutput, varianceThreshold float64) (Reason, bool) {
	valid := make([]*schema.AssessorOutput, 0, len(outputs))
	for _, out := range outputs {
		if out != nil {
			valid = append(valid, out)
		}
	}
	if len(valid) < 2 {
		return "", false
	}

	scores := make([]float64, len(valid))
	for i, out := range valid {
		scores[i] = out.RiskScore
	}
	if populationStdDev(scores) > varianceThreshold {
		return ReasonScoreVariance, true
	}

	if categoriesDiffer(valid) {
		return ReasonTypeMismatch, true
	}

	for _, out := range valid[1:] {
		if out.Balanced != valid[0].Balanced {
			return ReasonBalanceMismatch, true
		}
	}

	return "", false
}

// populationStdDev computes the population (not sample) standard deviation.
func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sqDev float64
	for _, v := range values {
		d := v - mean
		sqDev += d * d
	}
	return math.Sqrt(sqDev / float64(len(values)))
}

// categoriesDiffer reports whether the value of Category (nil counting as
// its own value) is not identical across outputs.
func categoriesDiffer(outputs []*schema.AssessorOutput) bool {
	first := outputs[0].Category
	for _, out := range outputs[1:] {
		a, b := first, out.Category
		switch {
		case a == nil && b == nil:
		case a == nil || b == nil:
			return true
		case *a != *b:
			return true
		}
	}
	return false
}
