package schema

import (
	"encoding/json"
	"strings"

	"github.com/Iron-Ham/council/internal/errors"
)

// CleanJSON strips markdown code fences from a backend JSON response.
// Backends frequently wrap JSON in ```json fences despite instructions
// not to.
func CleanJSON(raw string) string {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.ReplaceAll(cleaned, "```json", "")
		cleaned = strings.ReplaceAll(cleaned, "```", "")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}

// ParseResponse strips formatting noise from raw backend text and parses it
// as JSON. An unparseable response is a malformed-output error, which the
// retry executor treats as retriable.
func ParseResponse(raw string) (json.RawMessage, error) {
	cleaned := CleanJSON(raw)
	if !json.Valid([]byte(cleaned)) {
		return nil, errors.NewBackendError(errors.KindMalformedOutput, "", "response is not valid JSON", nil)
	}
	return json.RawMessage(cleaned), nil
}
