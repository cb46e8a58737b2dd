// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidRequest           ErrorCode = "INVALID_REQUEST"
	ErrCodeKnowledgeBaseUnavailable ErrorCode = "KNOWLEDGE_BASE_UNAVAILABLE"
	ErrCodeDocumentNotFound         ErrorCode = "DOCUMENT_NOT_FOUND"
	ErrCodeModelCallFailed          ErrorCode = "MODEL_CALL_FAILED"
	ErrCodeMalformedModelOutput     ErrorCode = "MALFORMED_MODEL_OUTPUT"
	ErrCodeTimeout                  ErrorCode = "TIMEOUT"
	ErrCodeConfiguration            ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeExternalService          ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the error shape shared by the HTTP boundary, the workflow
// job handler and the collaborators.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches another StandardError by code, so sentinel values such as
// ErrKnowledgeBaseUnavailable work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns the error with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is checks.
var (
	ErrKnowledgeBaseUnavailable = &StandardError{Code: ErrCodeKnowledgeBaseUnavailable}
	ErrDocumentNotFound         = &StandardError{Code: ErrCodeDocumentNotFound}
	ErrModelCallFailed          = &StandardError{Code: ErrCodeModelCallFailed}
	ErrMalformedModelOutput     = &StandardError{Code: ErrCodeMalformedModelOutput}
	ErrInvalidRequest           = &StandardError{Code: ErrCodeInvalidRequest}
	ErrTimeout                  = &StandardError{Code: ErrCodeTimeout}
)

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Invalid request", details, false, nil)
}

func NewKnowledgeBaseUnavailableError(source string, err error) *StandardError {
	details := fmt.Sprintf("source: %s", source)
	if err != nil {
		details = fmt.Sprintf("source: %s, error: %s", source, err.Error())
	}
	return newError(ErrCodeKnowledgeBaseUnavailable, "Knowledge base unavailable", details, true, err)
}

func NewDocumentNotFoundError(sectionID string) *StandardError {
	return newError(ErrCodeDocumentNotFound, "Document not found", fmt.Sprintf("sectionId: %s", sectionID), false, nil)
}

func NewModelCallFailedError(provider string, err error) *StandardError {
	return newError(ErrCodeModelCallFailed, fmt.Sprintf("Model call to '%s' failed", provider), err.Error(), true, err)
}

func NewMalformedModelOutputError(purpose, details string) *StandardError {
	return newError(ErrCodeMalformedModelOutput, fmt.Sprintf("Malformed %s output from model", purpose), details, false, nil)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewConfigurationError(details string) *StandardError {
	return newError(ErrCodeConfiguration, "Invalid configuration", details, false, nil)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Internal error", err.Error(), false, err)
}

// AsStandardError extracts a StandardError from err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// GetRetryCount is the number of workflow retries granted per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeKnowledgeBaseUnavailable, ErrCodeModelCallFailed, ErrCodeExternalService:
		return 3
	case ErrCodeTimeout:
		return 2
	default:
		return 0
	}
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeInvalidRequest:
		return "input"
	case ErrCodeKnowledgeBaseUnavailable, ErrCodeDocumentNotFound:
		return "repository"
	case ErrCodeModelCallFailed, ErrCodeMalformedModelOutput, ErrCodeTimeout:
		return "model"
	case ErrCodeConfiguration:
		return "configuration"
	case ErrCodeExternalService:
		return "external"
	default:
		return "internal"
	}
}
