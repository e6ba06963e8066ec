// Package errors provides the standardized error taxonomy for the
// outreach engine. Every failure surfaced to a caller is a *StandardError
// so consoles can distinguish "generation failed, try again" from
// "already sent" from "someone else is already generating this one".
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidation        ErrorCode = "VALIDATION_FAILED"
	ErrCodeConflict          ErrorCode = "STATE_CONFLICT"
	ErrCodeGenerationTimeout ErrorCode = "GENERATION_TIMEOUT"
	ErrCodeGenerationService ErrorCode = "GENERATION_SERVICE_ERROR"
	ErrCodeLockContention    ErrorCode = "ALREADY_GENERATING"
	ErrCodePersistence       ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeProspectNotFound  ErrorCode = "PROSPECT_NOT_FOUND"
	ErrCodeOfferingNotFound  ErrorCode = "OFFERING_NOT_FOUND"
)

// StandardError is a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewValidationError creates a non-retryable input validation error.
// Rejected before any state mutation.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Prospect or offering data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConflictError creates a non-retryable state machine violation error.
// The caller should re-fetch current state before retrying.
func NewConflictError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConflict,
		Message:   "Attempted transition violates the outreach lifecycle",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a retryable generation timeout error.
func NewGenerationTimeoutError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Generation service call exceeded timeout",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationServiceError creates a retryable generation service error.
// Transport failures, non-2xx responses and unusable bodies all map here.
func NewGenerationServiceError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationService,
		Message:   "Generation service returned an unusable response",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLockContentionError signals that a generation request is already in
// flight for this prospect. Callers treat it as "already in progress",
// not a hard failure.
func NewLockContentionError(prospectID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLockContention,
		Message:   "A draft generation is already in flight for this prospect",
		Details:   fmt.Sprintf("prospectId: %s", prospectID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceError creates a retryable persistence error. No partial
// prospect state is ever visible behind one of these.
func NewPersistenceError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistence,
		Message:   "Underlying store unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProspectNotFoundError creates a non-retryable not-found error.
func NewProspectNotFoundError(prospectID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProspectNotFound,
		Message:   "Prospect not found",
		Details:   fmt.Sprintf("prospectId: %s", prospectID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewOfferingNotFoundError creates a non-retryable not-found error.
func NewOfferingNotFoundError(offeringID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeOfferingNotFound,
		Message:   "Offering not found",
		Details:   fmt.Sprintf("offeringId: %s", offeringID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf extracts the error code from err, or "" if err is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// IsRetryable reports whether err is a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// IsNotFound reports whether err is one of the not-found codes.
func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeProspectNotFound || code == ErrCodeOfferingNotFound
}
