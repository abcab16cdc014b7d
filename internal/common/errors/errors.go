// Package errors provides standardized error handling for the directory dashboard and its API.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeEntityNotFound              ErrorCode = "ENTITY_NOT_FOUND"
	ErrCodeEntityValidationFailed      ErrorCode = "ENTITY_VALIDATION_FAILED"
	ErrCodeDuplicateEntity             ErrorCode = "DUPLICATE_ENTITY"
	ErrCodeInvalidModerationTransition ErrorCode = "INVALID_MODERATION_TRANSITION"
	ErrCodeInvalidRequest              ErrorCode = "INVALID_REQUEST"

	ErrCodeSectionLoadFailed ErrorCode = "SECTION_LOAD_FAILED"
	ErrCodeSectionTimeout    ErrorCode = "SECTION_TIMEOUT"
	ErrCodeTemplateNotFound  ErrorCode = "TEMPLATE_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeRateLimited   ErrorCode = "RATE_LIMITED"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
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

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewEntityNotFoundError creates a non-retryable lookup miss.
func NewEntityNotFoundError(entityID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityNotFound,
		Message:   "Company not found",
		Details:   fmt.Sprintf("id: %d", entityID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEntityValidationFailedError creates a non-retryable validation error.
func NewEntityValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEntityValidationFailed,
		Message:   "Company data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateEntityError creates a non-retryable conflict error.
func NewDuplicateEntityError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateEntity,
		Message:   "Company already exists",
		Details:   fmt.Sprintf("name: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidModerationTransitionError rejects a status change the moderation flow does not allow.
func NewInvalidModerationTransitionError(from, to string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidModerationTransition,
		Message:   "Moderation status change not allowed",
		Details:   fmt.Sprintf("from: %s, to: %s", from, to),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidRequestError creates a non-retryable malformed request error.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Invalid request",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSectionLoadFailedError wraps a section handler failure.
func NewSectionLoadFailedError(section string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSectionLoadFailed,
		Message:   "Section failed to load",
		Details:   fmt.Sprintf("section: %s, error: %s", section, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSectionTimeoutError reports a watchdog expiry.
func NewSectionTimeoutError(section string, timeout time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeSectionTimeout,
		Message:   "Section load timed out",
		Details:   fmt.Sprintf("section: %s, timeout: %s", section, timeout),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", queryName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("query: %s", queryName),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(query string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("query: %s, error: %s", query, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError is returned when a client exceeds its request budget.
func NewRateLimitedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

var httpStatusMapping = map[ErrorCode]int{
	ErrCodeEntityNotFound:                http.StatusNotFound,
	ErrCodeTemplateNotFound:              http.StatusNotFound,
	ErrCodeIndexNotFound:                 http.StatusNotFound,
	ErrCodeEntityValidationFailed:        http.StatusUnprocessableEntity,
	ErrCodeInvalidRequest:                http.StatusBadRequest,
	ErrCodeDuplicateEntity:               http.StatusConflict,
	ErrCodeInvalidModerationTransition:   http.StatusConflict,
	ErrCodeSectionTimeout:                http.StatusGatewayTimeout,
	ErrCodeQueryTimeout:                  http.StatusGatewayTimeout,
	ErrCodeDatabaseConnectionFailed:      http.StatusServiceUnavailable,
	ErrCodeElasticsearchConnectionFailed: http.StatusServiceUnavailable,
	ErrCodeCacheUnavailable:              http.StatusServiceUnavailable,
	ErrCodeRateLimited:                   http.StatusTooManyRequests,
	ErrCodeNotificationSendFailed:        http.StatusBadGateway,
}

// HTTPStatus returns the response status for an error code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeCacheUnavailable:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSectionTimeout,
		ErrCodeSectionLoadFailed:
		return 1

	default:
		return 0
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SECTION") || strings.Contains(codeStr, "TEMPLATE"):
		return "PANEL"
	case strings.Contains(codeStr, "MODERATION"):
		return "MODERATION"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY_"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "DUPLICATE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "ENTITY"):
		return "ENTITY"
	default:
		return "OTHER"
	}
}
