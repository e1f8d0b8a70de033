// Package errors provides standardized error handling for the chatbot service.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCatalogLoadFailed ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeArticleLoadFailed ErrorCode = "ARTICLE_LOAD_FAILED"

	ErrCodeSessionLoadFailed ErrorCode = "SESSION_LOAD_FAILED"
	ErrCodeSessionSaveFailed ErrorCode = "SESSION_SAVE_FAILED"

	ErrCodeModelCallFailed ErrorCode = "MODEL_CALL_FAILED"
	ErrCodeModelTimeout    ErrorCode = "MODEL_TIMEOUT"
	ErrCodeEmptyReply      ErrorCode = "EMPTY_MODEL_REPLY"
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

// NewCatalogLoadFailedError creates a non-retryable catalog load error.
// The loader degrades to an empty catalog instead of propagating this.
func NewCatalogLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Failed to load product catalog",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArticleLoadFailedError creates a non-retryable article load error.
func NewArticleLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArticleLoadFailed,
		Message:   "Failed to load company article",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionLoadFailedError creates a retryable session read error.
func NewSessionLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionLoadFailed,
		Message:   "Failed to read session state",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionSaveFailedError creates a retryable session write error.
func NewSessionSaveFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionSaveFailed,
		Message:   "Failed to persist session state",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelCallFailedError creates a retryable model API error.
func NewModelCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelCallFailed,
		Message:   "Generative model API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelTimeoutError creates a retryable model timeout error.
func NewModelTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeModelTimeout,
		Message:   "Generative model call timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyReplyError creates a non-retryable malformed response error.
func NewEmptyReplyError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyReply,
		Message:   "Generative model returned no text",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
