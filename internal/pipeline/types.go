package pipeline

import "github.com/Iron-Ham/council/internal/schema"

// UnitState represents where a unit stands in the deliberation state machine.
type UnitState string

const (
	// StatePending indicates the unit has not started processing.
	StatePending UnitState = "pending"

	// StateAnalyzing indicates the assessor pool is judging the unit.
	StateAnalyzing UnitState = "analyzing"

	// StateShortCircuited indicates no assessor detected anything and the
	// unit is finalized without arbitration.
	StateShortCircuited UnitState = "short_circuited"

	// StateReviewPending indicates the assessors disagree and a peer review
	// round is running.
	StateReviewPending UnitState = "review_pending"

	// StateReviewed indicates the review round completed.
	StateReviewed UnitState = "reviewed"

	// StateConsensusReached indicates the assessors agree and reviews are
	// skipped.
	StateConsensusReached UnitState = "consensus_reached"

	// StateArbitrating indicates the arbitrator is producing the verdict.
	StateArbitrating UnitState = "arbitrating"

	// StateDone indicates the unit carries a final verdict.
	StateDone UnitState = "done"

	// StateFailed indicates the unit terminated with an error record.
	StateFailed UnitState = "failed"
)

// String returns the string representation of the state.
func (s UnitState) String() string {
	return string(s)
}

// IsTerminal returns true if this state represents a final state.
func (s UnitState) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Result is the final record for one unit: its identifier plus the verdict
// fields, in the unit's original position.
type Result struct {
	UnitID string `json:"clause_id"`
	schema.Verdict
}

// unanimousJustification is the fixed justification for units no assessor
// flagged.
const unanimousJustification = "No golden clause detected by any council member."
