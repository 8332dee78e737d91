// Package errors provides centralized error definitions and error handling
// utilities for the council codebase. It defines backend call errors with an
// explicit failure kind, semantic error types, and classification helpers
// that drive the retry executor's decisions.
//
// # Error Types
//
// BackendError wraps any failure of a single assessor/arbitrator call and
// carries a Kind describing the failure class. Retry decisions are made on
// the Kind, never on error message text:
//   - KindAuth, KindPermission, KindBadRequest, KindNotFound: non-retriable
//   - KindRateLimit, KindNetwork, KindServer: retriable
//   - KindMalformedOutput, KindValidation: retriable (a repeated call may
//     yield conformant output)
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewBackendError(errors.KindRateLimit, "openai", "rate limited", cause)
//
// Checking errors:
//
//	if errors.IsRetryable(err) { ... }
//
//	var be *errors.BackendError
//	if errors.As(err, &be) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Kind classifies a backend call failure.
type Kind int

const (
	// KindUnknown is an unclassified failure. Treated as retriable.
	KindUnknown Kind = iota
	// KindAuth indicates missing or invalid credentials.
	KindAuth
	// KindPermission indicates the credential lacks access to the resource.
	KindPermission
	// KindBadRequest indicates a malformed request the backend rejected.
	KindBadRequest
	// KindNotFound indicates the requested model or endpoint does not exist.
	KindNotFound
	// KindRateLimit indicates the backend throttled the call.
	KindRateLimit
	// KindNetwork indicates a transport-level failure.
	KindNetwork
	// KindServer indicates a backend-side server error.
	KindServer
	// KindMalformedOutput indicates the backend's response could not be
	// parsed as JSON.
	KindMalformedOutput
	// KindValidation indicates parsed output failed schema validation.
	KindValidation
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindPermission:
		return "permission"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindRateLimit:
		return "rate_limit"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	case KindMalformedOutput:
		return "malformed_output"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Retryable reports whether this failure class may succeed on a repeated
// call. Auth, permission, bad-request and not-found failures are
// configuration problems retrying cannot fix.
func (k Kind) Retryable() bool {
	switch k {
	case KindAuth, KindPermission, KindBadRequest, KindNotFound:
		return false
	default:
		return true
	}
}

// Sentinel errors for council configuration and pipeline flow.
var (
	// ErrUnknownBackend indicates a configured backend name is unsupported.
	ErrUnknownBackend = New("unknown backend")
	// ErrNoActiveAssessors indicates the council has no enabled assessors.
	ErrNoActiveAssessors = New("no active assessors configured")
	// ErrMissingCredential indicates a required API key was not resolvable.
	ErrMissingCredential = New("missing backend credential")
	// ErrNoValidUnits indicates segmentation produced no usable clauses.
	ErrNoValidUnits = New("segmentation produced no valid clause units")
	// ErrRetriesExhausted indicates a call failed after all retry attempts.
	ErrRetriesExhausted = New("retries exhausted")
)

// -----------------------------------------------------------------------------
// BackendError
// -----------------------------------------------------------------------------

// BackendError represents the failure of a single backend call. It carries
// the failure Kind and the backend name for observability.
type BackendError struct {
	Kind    Kind
	Backend string
	message string
	cause   error
}

// NewBackendError creates a BackendError with the given classification.
func NewBackendError(kind Kind, backend, message string, cause error) *BackendError {
	return &BackendError{
		Kind:    kind,
		Backend: backend,
		message: message,
		cause:   cause,
	}
}

// Error returns the formatted error message.
func (e *BackendError) Error() string {
	prefix := fmt.Sprintf("backend error [%s, kind=%s]", e.Backend, e.Kind)
	if e.Backend == "" {
		prefix = fmt.Sprintf("backend error [kind=%s]", e.Kind)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.cause
}

// Is reports whether this error matches the target error.
func (e *BackendError) Is(target error) bool {
	if other, ok := target.(*BackendError); ok {
		return e.Kind == other.Kind
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// IsRetryable reports whether the failure class is transient.
func (e *BackendError) IsRetryable() bool {
	return e.Kind.Retryable()
}

// KindFromStatus maps an HTTP status code to a failure Kind.
func KindFromStatus(status int) Kind {
	switch {
	case status == 401:
		return KindAuth
	case status == 403:
		return KindPermission
	case status == 404:
		return KindNotFound
	case status == 429:
		return KindRateLimit
	case status >= 400 && status < 500:
		return KindBadRequest
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// -----------------------------------------------------------------------------
// ValidationError
// -----------------------------------------------------------------------------

// ValidationError represents a schema or range validation failure on
// structured backend output. It is retriable: a repeated call may yield
// conformant output.
type ValidationError struct {
	Field   string
	message string
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, message: message}
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error [%s]: %s", e.Field, e.message)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

// Is reports whether the target is also a ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// -----------------------------------------------------------------------------
// Classification helpers
// -----------------------------------------------------------------------------

// IsRetryable returns true if the error represents a transient condition
// that may succeed on retry. Validation failures count as retryable
// because the backend may produce conformant output on a repeated call.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var be *BackendError
	if As(err, &be) {
		return be.IsRetryable()
	}

	var ve *ValidationError
	if As(err, &ve) {
		return true
	}

	// Unclassified errors default to retriable; only explicit
	// configuration-class kinds short-circuit the retry budget.
	return true
}

// IsNonRetriable is the inverse of IsRetryable for nil-safe call sites.
func IsNonRetriable(err error) bool {
	return err != nil && !IsRetryable(err)
}
