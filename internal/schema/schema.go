// Package schema defines the structured outputs exchanged with council
// backends and the validators applied to them before any output is trusted.
// JSON field names follow the wire shape the prompts instruct backends to
// produce.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/library"
)

// Risk levels a verdict may carry. None and Error are pipeline-only
// sentinels: None means the council unanimously detected nothing and the
// unit was never arbitrated, Error means the unit failed terminally.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
	RiskNone     = "None"
	RiskError    = "Error"
)

// Unit is one atomic clause routed independently through the pipeline.
type Unit struct {
	ID   string `json:"clause_id"`
	Text string `json:"clause_text"`
}

// AssessorOutput is one assessor's structured judgment about a unit.
type AssessorOutput struct {
	Detected       bool     `json:"golden_clause_detected"`
	Category       *string  `json:"golden_clause_type"`
	RiskScore      float64  `json:"risk_score"`
	Balanced       bool     `json:"balanced"`
	Justification  string   `json:"justification"`
	RiskIndicators []string `json:"key_risk_indicators"`
}

// Critique is one reviewer's assessment of a single labeled response.
type Critique struct {
	Strengths  string `json:"strengths"`
	Weaknesses string `json:"weaknesses"`
}

// ReviewOutput is one reviewer's blind cross-evaluation: a critique per
// label plus a complete ranking (best=1) covering every label exactly once.
type ReviewOutput struct {
	Evaluation map[string]Critique `json:"evaluation"`
	Ranking    map[string]string   `json:"ranking"`
}

// Verdict is the final, immutable judgment for one unit.
type Verdict struct {
	ClauseText          string  `json:"clause_text"`
	Detected            bool    `json:"golden_clause_detected"`
	Category            *string `json:"golden_clause_type"`
	FinalScore          float64 `json:"final_risk_score"`
	RiskLevel           string  `json:"risk_level"`
	BusinessImpact      string  `json:"business_risk_if_ignored"`
	SuggestedCorrection *string `json:"suggested_correction"`
	Justification       string  `json:"justification"`
	Confidence          float64 `json:"confidence"`
}

// CouncilData is the sole input to arbitration beyond the unit text:
// anonymized responses keyed by label, and reviews keyed by reviewer id.
// Reviews is null when no review round ran.
type CouncilData struct {
	Responses map[string]json.RawMessage `json:"responses"`
	Reviews   map[string]*ReviewOutput   `json:"reviews"`
}

// Validator checks raw backend output against a target schema. A failure is
// treated by the retry executor exactly like a transient call failure.
type Validator func(raw json.RawMessage) error

// requireFields rejects raw output missing any of the named top-level keys.
func requireFields(raw json.RawMessage, fields ...string) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.NewBackendError(errors.KindMalformedOutput, "", "output is not a JSON object", err)
	}
	for _, f := range fields {
		if _, ok := obj[f]; !ok {
			return nil, errors.NewValidationError(f, "required field is missing")
		}
	}
	return obj, nil
}

// validateCategory enforces the closed vocabulary: a category outside the
// golden clause library is always a validation failure, and a non-detected
// output must carry a null category.
func validateCategory(detected bool, category *string) error {
	if !detected {
		if category != nil {
			return errors.NewValidationError("golden_clause_type", "must be null when no golden clause is detected")
		}
		return nil
	}
	if category == nil {
		return errors.NewValidationError("golden_clause_type", "required when a golden clause is detected")
	}
	if !library.IsKnownType(*category) {
		return errors.NewValidationError("golden_clause_type",
			fmt.Sprintf("%q is not in the golden clause library", *category))
	}
	return nil
}

// ValidateAssessorOutput validates raw analysis output against the
// AssessorOutput schema: field presence, types, score range, and category
// vocabulary.
func ValidateAssessorOutput(raw json.RawMessage) error {
	if _, err := requireFields(raw,
		"golden_clause_detected", "golden_clause_type", "risk_score",
		"balanced", "justification", "key_risk_indicators"); err != nil {
		return err
	}

	var out AssessorOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return errors.NewBackendError(errors.KindMalformedOutput, "", "output does not match the analysis schema", err)
	}

	if out.RiskScore < 0 || out.RiskScore > 10 {
		return errors.NewValidationError("risk_score", "must be between 0 and 10")
	}
	return validateCategory(out.Detected, out.Category)
}

// DecodeAssessorOutput validates and decodes raw analysis output.
func DecodeAssessorOutput(raw json.RawMessage) (*AssessorOutput, error) {
	if err := ValidateAssessorOutput(raw); err != nil {
		return nil, err
	}
	var out AssessorOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.NewBackendError(errors.KindMalformedOutput, "", "output does not match the analysis schema", err)
	}
	return &out, nil
}

// ReviewValidator returns a Validator for cross-evaluation output against
// the exact label set in play for a unit. The ranking must be a bijection:
// ranks 1..N each appearing once, every label appearing exactly once.
func ReviewValidator(labels []string) Validator {
	labelSet := make(map[string]bool, len(labels))
	for _, l := range labels {
		labelSet[l] = true
	}

	return func(raw json.RawMessage) error {
		if _, err := requireFields(raw, "evaluation", "ranking"); err != nil {
			return err
		}

		var out ReviewOutput
		if err := json.Unmarshal(raw, &out); err != nil {
			return errors.NewBackendError(errors.KindMalformedOutput, "", "output does not match the review schema", err)
		}

		if len(out.Evaluation) == 0 {
			return errors.NewValidationError("evaluation", "must critique at least one labeled response")
		}
		for label := range out.Evaluation {
			if !labelSet[label] {
				return errors.NewValidationError("evaluation",
					fmt.Sprintf("%q is not a label in play for this unit", label))
			}
		}

		if len(out.Ranking) != len(labels) {
			return errors.NewValidationError("ranking",
				fmt.Sprintf("must rank exactly %d responses, got %d", len(labels), len(out.Ranking)))
		}
		ranked := make(map[string]bool, len(labels))
		for i := 1; i <= len(labels); i++ {
			rank := fmt.Sprintf("%d", i)
			label, ok := out.Ranking[rank]
			if !ok {
				return errors.NewValidationError("ranking", fmt.Sprintf("rank %s is missing", rank))
			}
			if !labelSet[label] {
				return errors.NewValidationError("ranking",
					fmt.Sprintf("rank %s names unknown label %q", rank, label))
			}
			if ranked[label] {
				return errors.NewValidationError("ranking",
					fmt.Sprintf("label %q appears more than once", label))
			}
			ranked[label] = true
		}
		return nil
	}
}

// DecodeReviewOutput decodes raw review output. ReviewValidator must have
// accepted it first.
func DecodeReviewOutput(raw json.RawMessage) (*ReviewOutput, error) {
	var out ReviewOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.NewBackendError(errors.KindMalformedOutput, "", "output does not match the review schema", err)
	}
	return &out, nil
}

// ValidateVerdict validates raw arbitration output against the Verdict
// schema: field presence, score and confidence ranges, risk level enum
// membership, and category vocabulary.
func ValidateVerdict(raw json.RawMessage) error {
	if _, err := requireFields(raw,
		"clause_text", "golden_clause_detected", "golden_clause_type",
		"final_risk_score", "risk_level", "business_risk_if_ignored",
		"justification", "confidence"); err != nil {
		return err
	}

	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return errors.NewBackendError(errors.KindMalformedOutput, "", "output does not match the verdict schema", err)
	}

	if v.FinalScore < 0 || v.FinalScore > 10 {
		return errors.NewValidationError("final_risk_score", "must be between 0 and 10")
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return errors.NewValidationError("confidence", "must be between 0 and 1")
	}
	switch v.RiskLevel {
	case RiskLow, RiskModerate, RiskHigh:
	default:
		return errors.NewValidationError("risk_level",
			fmt.Sprintf("%q is not one of Low, Moderate, High", v.RiskLevel))
	}
	return validateCategory(v.Detected, v.Category)
}

// DecodeVerdict validates and decodes raw arbitration output.
func DecodeVerdict(raw json.RawMessage) (*Verdict, error) {
	if err := ValidateVerdict(raw); err != nil {
		return nil, err
	}
	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.NewBackendError(errors.KindMalformedOutput, "", "output does not match the verdict schema", err)
	}
	return &v, nil
}
