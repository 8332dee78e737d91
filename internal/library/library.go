// Package library holds the golden clause vocabulary: the closed set of
// clause categories the council is allowed to detect. Assessors must never
// invent categories outside this set, and validators reject any output that
// does.
package library

import (
	"fmt"
	"slices"
	"strings"
)

// Clause describes one golden clause category.
type Clause struct {
	// Definition explains what the category covers.
	Definition string
	// Example is a representative clause of this category.
	Example string
}

// clauseOrder fixes the presentation order of the vocabulary in prompts.
var clauseOrder = []string{"Indemnity", "Payment", "Data Security"}

var goldenClauses = map[string]Clause{
	"Indemnity": {
		Definition: "Clause defining indemnification obligations and liability shifting.",
		Example:    "Vendor shall indemnify and hold harmless the Client against all claims arising from negligence.",
	},
	"Payment": {
		Definition: "Clause governing payment timelines, late fees, and invoicing structure.",
		Example:    "Invoices must be paid within 30 days of receipt.",
	},
	"Data Security": {
		Definition: "Clause defining data protection, breach notification, and cybersecurity obligations.",
		Example:    "Service provider must implement industry-standard encryption.",
	},
}

// Types returns the category names in stable presentation order.
func Types() []string {
	return slices.Clone(clauseOrder)
}

// IsKnownType reports whether name is a member of the closed category set.
func IsKnownType(name string) bool {
	_, ok := goldenClauses[name]
	return ok
}

// Lookup returns the clause description for a category name.
func Lookup(name string) (Clause, bool) {
	c, ok := goldenClauses[name]
	return c, ok
}

// PromptText renders the vocabulary as the authoritative list block embedded
// in the analysis prompt.
func PromptText() string {
	var sb strings.Builder
	for _, name := range clauseOrder {
		c := goldenClauses[name]
		sb.WriteString(fmt.Sprintf("- %s: %s Example: %q\n", name, c.Definition, c.Example))
	}
	return sb.String()
}
