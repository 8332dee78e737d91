package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "batch.size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidBackendNames returns the list of supported backend identifiers
func ValidBackendNames() []string {
	return []string{"openai", "claude", "gemini"}
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Council validation
	if len(c.Council.Active) == 0 {
		errors = append(errors, ValidationError{
			Field:   "council.active",
			Value:   c.Council.Active,
			Message: "at least one active assessor is required",
		})
	}
	seen := make(map[string]bool)
	for _, name := range c.Council.Active {
		if !slices.Contains(ValidBackendNames(), name) {
			errors = append(errors, ValidationError{
				Field:   "council.active",
				Value:   name,
				Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackendNames(), ", ")),
			})
		}
		if seen[name] {
			errors = append(errors, ValidationError{
				Field:   "council.active",
				Value:   name,
				Message: "duplicate assessor identifier",
			})
		}
		seen[name] = true
	}
	if !slices.Contains(ValidBackendNames(), c.Council.Segmenter) {
		errors = append(errors, ValidationError{
			Field:   "council.segmenter",
			Value:   c.Council.Segmenter,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackendNames(), ", ")),
		})
	}
	if !slices.Contains(ValidBackendNames(), c.Council.Arbitrator) {
		errors = append(errors, ValidationError{
			Field:   "council.arbitrator",
			Value:   c.Council.Arbitrator,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidBackendNames(), ", ")),
		})
	}

	// Backend validation: every active assessor (and both roles) needs a model
	for _, name := range c.Council.Active {
		bc, ok := c.Backend(name)
		if !ok {
			continue
		}
		if bc.Model == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("backends.%s.model", name),
				Value:   bc.Model,
				Message: "model identifier is required for an active assessor",
			})
		}
		if bc.APIKeyEnv == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("backends.%s.api_key_env", name),
				Value:   bc.APIKeyEnv,
				Message: "credential environment variable is required for an active assessor",
			})
		}
	}

	// Disagreement validation
	if c.Disagreement.VarianceThreshold < 0 {
		errors = append(errors, ValidationError{
			Field:   "disagreement.variance_threshold",
			Value:   c.Disagreement.VarianceThreshold,
			Message: "must be non-negative",
		})
	}

	// Retry validation
	if c.Retry.MaxRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "retry.max_retries",
			Value:   c.Retry.MaxRetries,
			Message: "must be non-negative",
		})
	}
	if c.Retry.BaseDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "retry.base_delay_ms",
			Value:   c.Retry.BaseDelayMs,
			Message: "must be non-negative",
		})
	}
	if c.Retry.CallTimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "retry.call_timeout_seconds",
			Value:   c.Retry.CallTimeoutSeconds,
			Message: "must be non-negative (0 disables the timeout)",
		})
	}

	// Batch validation
	if c.Batch.Size < 1 {
		errors = append(errors, ValidationError{
			Field:   "batch.size",
			Value:   c.Batch.Size,
			Message: "must be at least 1",
		})
	}
	if c.Batch.InterBatchDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "batch.inter_batch_delay_ms",
			Value:   c.Batch.InterBatchDelayMs,
			Message: "must be non-negative",
		})
	}

	// Logging validation
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
