// Package errors provides standardized error handling for the automation pipeline.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnsupportedAction         ErrorCode = "UNSUPPORTED_ACTION"
	ErrCodeActionNotImplemented      ErrorCode = "ACTION_NOT_IMPLEMENTED"
	ErrCodeMissingRequiredParameters ErrorCode = "MISSING_REQUIRED_PARAMETERS"

	ErrCodeResolutionFailed  ErrorCode = "RESOLUTION_FAILED"
	ErrCodeResolutionTimeout ErrorCode = "RESOLUTION_TIMEOUT"

	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"

	ErrCodeAssistantUnavailable ErrorCode = "ASSISTANT_UNAVAILABLE"
	ErrCodeAssistantTimeout     ErrorCode = "ASSISTANT_TIMEOUT"

	ErrCodePlatformUnavailable ErrorCode = "PLATFORM_UNAVAILABLE"
	ErrCodePlatformTimeout     ErrorCode = "PLATFORM_TIMEOUT"

	ErrCodeSessionStoreFailed ErrorCode = "SESSION_STORE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewUnsupportedActionError creates a non-retryable error for actions
// missing from the registry.
func NewUnsupportedActionError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnsupportedAction,
		Message:   fmt.Sprintf("Unsupported action '%s'", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActionNotImplementedError creates a non-retryable configuration error
// for actions registered but absent from the dispatch layer.
func NewActionNotImplementedError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionNotImplemented,
		Message:   fmt.Sprintf("Action '%s' is not implemented", action),
		Details:   "registered action has no dispatch entry",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingParametersError creates a non-retryable validation error naming
// the missing required parameter keys.
func NewMissingParametersError(action string, missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingRequiredParameters,
		Message:   fmt.Sprintf("Missing required parameters for '%s'", action),
		Details:   fmt.Sprintf("missing: %v", missing),
		Retryable: false,
		Metadata:  map[string]interface{}{"missing": missing},
		Timestamp: time.Now().UTC(),
	}
}

// NewResolutionTimeoutError creates a retryable timeout error for the
// workspace-listing lookup.
func NewResolutionTimeoutError(parameter string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResolutionTimeout,
		Message:   "Timed out resolving parameter",
		Details:   fmt.Sprintf("parameter: %s", parameter),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDispatchFailedError wraps an error from a dispatched action callable.
func NewDispatchFailedError(action string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDispatchFailed,
		Message:   fmt.Sprintf("Action '%s' failed", action),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantUnavailableError creates a retryable remote assistant error.
func NewAssistantUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantUnavailable,
		Message:   "Assistant endpoint unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAssistantTimeoutError creates a retryable remote assistant timeout error.
func NewAssistantTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAssistantTimeout,
		Message:   "Assistant request timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlatformUnavailableError creates a retryable backend error.
func NewPlatformUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePlatformUnavailable,
		Message:   fmt.Sprintf("Platform operation '%s' failed", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPlatformTimeoutError creates a retryable backend timeout error.
func NewPlatformTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodePlatformTimeout,
		Message:   fmt.Sprintf("Platform operation '%s' timed out", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionStoreError wraps a session storage failure.
func NewSessionStoreError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionStoreFailed,
		Message:   "Session store error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// GetErrorCategory groups codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUnsupportedAction, ErrCodeActionNotImplemented, ErrCodeMissingRequiredParameters:
		return "validation"
	case ErrCodeResolutionFailed, ErrCodeResolutionTimeout:
		return "resolution"
	case ErrCodeAssistantUnavailable, ErrCodeAssistantTimeout:
		return "assistant"
	case ErrCodePlatformUnavailable, ErrCodePlatformTimeout, ErrCodeDispatchFailed:
		return "dispatch"
	case ErrCodeSessionStoreFailed:
		return "session"
	default:
		return "internal"
	}
}
