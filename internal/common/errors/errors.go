// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputParsingFailed   ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeCredentialsNotFound  ErrorCode = "CREDENTIALS_NOT_FOUND"
	ErrCodeInvalidAPIKey        ErrorCode = "INVALID_API_KEY"
	ErrCodeRateLimitExceeded    ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeBadRequest           ErrorCode = "BAD_REQUEST"
	ErrCodeQuickEnrichAPIError  ErrorCode = "QUICKENRICH_API_ERROR"
	ErrCodeTransportError       ErrorCode = "TRANSPORT_ERROR"
	ErrCodeCredentialStoreError ErrorCode = "CREDENTIAL_STORE_ERROR"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
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

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputParsingError is raised when job variables cannot be decoded.
func NewInputParsingError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse job variables", err.Error(), false)
}

// NewValidationError carries the failing item index so a batch can attribute it.
func NewValidationError(message string, itemIndex int, field string) *StandardError {
	e := newError(ErrCodeValidationFailed, message, fmt.Sprintf("item %d: field %s", itemIndex, field), false)
	e.Metadata = map[string]interface{}{
		"itemIndex": itemIndex,
		"field":     field,
	}
	return e
}

// NewInputValidationError reports job variables that do not match the input schema.
func NewInputValidationError(messages []string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", strings.Join(messages, "; "), false)
}

func NewCredentialsNotFoundError(name string) *StandardError {
	return newError(ErrCodeCredentialsNotFound, "QuickEnrich credentials not found", fmt.Sprintf("credential %q has no apiKey", name), false)
}

func NewCredentialStoreError(err error) *StandardError {
	return newError(ErrCodeCredentialStoreError, "Credential store unavailable", err.Error(), true)
}

func NewInvalidAPIKeyError(description string) *StandardError {
	return newError(ErrCodeInvalidAPIKey, "Invalid API key", description, false)
}

func NewRateLimitError(description string) *StandardError {
	return newError(ErrCodeRateLimitExceeded, "Rate limit exceeded", description, true)
}

func NewBadRequestError(message, description string) *StandardError {
	return newError(ErrCodeBadRequest, message, description, false)
}

func NewAPIError(message, description string) *StandardError {
	return newError(ErrCodeQuickEnrichAPIError, message, description, true)
}

func NewTransportError(err error) *StandardError {
	return newError(ErrCodeTransportError, "QuickEnrich API unreachable", err.Error(), true)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the retry budget handed to the engine for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeRateLimitExceeded,
		ErrCodeQuickEnrichAPIError,
		ErrCodeTransportError:
		return 3
	case ErrCodeCredentialStoreError:
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInputParsingFailed, ErrCodeValidationFailed:
		return "VALIDATION"
	case ErrCodeCredentialsNotFound, ErrCodeInvalidAPIKey, ErrCodeCredentialStoreError:
		return "AUTH"
	case ErrCodeRateLimitExceeded, ErrCodeBadRequest, ErrCodeQuickEnrichAPIError:
		return "API"
	case ErrCodeTransportError:
		return "NETWORK"
	default:
		return "INTERNAL"
	}
}
