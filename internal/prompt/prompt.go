// Package prompt builds the instructions sent to council backends for each
// pipeline stage. Prompts demand strictly valid JSON; the response parser
// strips code fences anyway because backends do not always comply.
package prompt

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/council/internal/library"
)

const segmentationTemplate = `You are an expert legal contract parser.

Your task:
- Identify complete logical clauses.
- Preserve clause integrity.
- Merge subparagraphs properly.

Return strictly valid JSON list:

[
  {
    "clause_id": "1",
    "clause_heading": "...",
    "clause_text": "..."
  }
]

Contract:
%s`

// Segmentation builds the prompt that splits a contract into clauses.
func Segmentation(contractText string) string {
	return fmt.Sprintf(segmentationTemplate, contractText)
}

const analysisTemplate = `You are an expert legal risk analyst.

Golden Clause Library (Authoritative List):
%s

IMPORTANT RULES:

1. You MUST only classify a clause as a golden clause if it clearly matches EXACTLY one of the types in the Golden Clause Library.
2. You MUST NOT invent new clause types.
3. If the clause does NOT match one of the listed golden clauses, you MUST set:
   - "golden_clause_detected": false
   - "golden_clause_type": null
4. Do NOT create additional categories such as "Limitation of Liability" unless it exists in the Golden Clause Library.
5. Only use the clause types exactly as written in the Golden Clause Library.

Instructions:
- Determine if this clause matches one of the listed golden clauses.
- If yes, identify the type exactly as written.
- Score legal and commercial risk from 0 to 10.
- Identify imbalance.
- Identify key risk phrases.

Return strictly valid JSON and NOTHING ELSE:

{
  "golden_clause_detected": true/false,
  "golden_clause_type": "Indemnity" | "Payment" | "Data Security" | null,
  "risk_score": float,
  "balanced": true/false,
  "justification": "...",
  "key_risk_indicators": ["..."]
}

Clause:
%s`

// Analysis builds the prompt asking one assessor to judge a clause against
// the golden clause library.
func Analysis(clauseText string) string {
	return fmt.Sprintf(analysisTemplate, library.PromptText(), clauseText)
}

// reviewTemplate is authored for exactly 3 labels. The caller generates the
// correct number of dynamic labels for other council sizes and warns that
// template and label count diverge.
const reviewTemplate = `You are blind-reviewing peer legal risk analyses. The analyses are anonymized; do not speculate about their authors.

Clause:
%s

Anonymized analyses:
%s

Instructions:
- Critique every labeled response: name its strengths and weaknesses.
- Produce a complete ranking from best (1) to worst, covering every label exactly once.

Return strictly valid JSON:
{
  "evaluation": {
    "Response A": {"strengths": "...", "weaknesses": "..."},
    "Response B": {"strengths": "...", "weaknesses": "..."},
    "Response C": {"strengths": "...", "weaknesses": "..."}
  },
  "ranking": {
    "1": "Response ...",
    "2": "Response ...",
    "3": "Response ..."
  }
}`

// Review builds the blind cross-evaluation prompt from the clause and the
// pre-rendered anonymized responses block.
func Review(clauseText, responsesText string) string {
	return fmt.Sprintf(reviewTemplate, clauseText, responsesText)
}

// ReviewTemplateLabels is the number of labels the review template is
// authored for.
const ReviewTemplateLabels = 3

const arbitrationTemplate = `You are the final legal arbitrator.

Clause:
%s

Council data (anonymized analyses and, when present, peer reviews):
%s

Produce the final consolidated judgment. Reconcile all inputs into one
authoritative opinion: your justification must read as a single expert voice
and must not mention responses, reviewers, rankings, or that
multiple analyses exist.

Risk level guidance: Low for scores around 0-3, Moderate for 4-6,
High for 7-10. Use your own judgment.

Return strictly valid JSON:
{
  "clause_text": "...",
  "golden_clause_detected": true/false,
  "golden_clause_type": "Indemnity" | "Payment" | "Data Security" | null,
  "final_risk_score": float,
  "risk_level": "Low" | "Moderate" | "High",
  "business_risk_if_ignored": "...",
  "suggested_correction": "...",
  "justification": "...",
  "confidence": float
}`

// Arbitration builds the prompt asking the arbitrator role for the final
// verdict from the clause text and serialized council data.
func Arbitration(clauseText, councilData string) string {
	return fmt.Sprintf(arbitrationTemplate, clauseText, councilData)
}

// ResponsesBlock renders labeled anonymized responses as the text block
// embedded in the review prompt, in label order.
func ResponsesBlock(labels []string, rendered map[string]string) string {
	var sb strings.Builder
	for _, label := range labels {
		sb.WriteString(label)
		sb.WriteString(":\n")
		sb.WriteString(rendered[label])
		sb.WriteString("\n\n")
	}
	return sb.String()
}
