package errors

import (
	"fmt"
	"strings"
	"time"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a business rule violation
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainInfrastructureError indicates an infrastructure-level failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"

	// DomainAuthorizationError indicates insufficient permissions
	DomainAuthorizationError DomainErrorType = "AUTHORIZATION_ERROR"

	// DomainAuthenticationError indicates authentication failure
	DomainAuthenticationError DomainErrorType = "AUTHENTICATION_ERROR"

	// DomainContractError indicates a response-shape contract violation
	DomainContractError DomainErrorType = "CONTRACT_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Retryable:  false,
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// clone copies the error so the shared sentinels stay immutable
func (e *DomainError) clone() *DomainError {
	c := *e
	c.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		c.Details[k] = v
	}
	return &c
}

// WithCause returns a copy of the error carrying a cause
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetail returns a copy of the error carrying an extra detail
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	c := e.clone()
	c.Details[key] = value
	return c
}

// WithRetryable returns a copy with the retryable flag set
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	c := e.clone()
	c.Retryable = retryable
	return c
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// domainErrorTypeToStatusCode maps error types to HTTP status codes
func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return 400
	case DomainBusinessRuleError:
		return 422
	case DomainNotFoundError:
		return 404
	case DomainConflictError:
		return 409
	case DomainAuthenticationError:
		return 401
	case DomainAuthorizationError:
		return 403
	case DomainInfrastructureError, DomainContractError:
		return 500
	default:
		return 500
	}
}

// Common domain errors - pre-defined errors that can be reused

var (
	// Node errors
	ErrNodeNotFound = NewDomainError(
		DomainNotFoundError,
		"NODE_NOT_FOUND",
		"The requested timeline node does not exist",
	)

	ErrUnknownNodeType = NewDomainError(
		DomainValidationError,
		"UNKNOWN_NODE_TYPE",
		"Node type is not a registered timeline node type",
	)

	ErrEmptyMeta = NewDomainError(
		DomainValidationError,
		"EMPTY_META",
		"Node metadata must contain at least one key on creation",
	)

	ErrInvalidParentID = NewDomainError(
		DomainValidationError,
		"INVALID_PARENT_ID",
		"Parent ID must be a valid UUID",
	)

	ErrTypeImmutable = NewDomainError(
		DomainBusinessRuleError,
		"NODE_TYPE_IMMUTABLE",
		"A node's type cannot change after creation",
	)

	// Hierarchy errors
	ErrDepthOutOfRange = NewDomainError(
		DomainValidationError,
		"DEPTH_OUT_OF_RANGE",
		"Query depth must be an integer between 1 and 20",
	)

	ErrCyclicParent = NewDomainError(
		DomainBusinessRuleError,
		"CYCLIC_PARENT",
		"Re-parenting would create a cycle in the hierarchy",
	)

	ErrSelfParent = NewDomainError(
		DomainBusinessRuleError,
		"SELF_PARENT",
		"A node cannot be its own parent",
	)

	// Sharing errors
	ErrGrantNotFound = NewDomainError(
		DomainNotFoundError,
		"GRANT_NOT_FOUND",
		"The requested share grant does not exist",
	)

	ErrDuplicateGrant = NewDomainError(
		DomainConflictError,
		"DUPLICATE_GRANT",
		"A share grant for this user already exists",
	)

	ErrGrantLimitExceeded = NewDomainError(
		DomainBusinessRuleError,
		"GRANT_LIMIT_EXCEEDED",
		"Maximum number of share grants per node exceeded",
	).WithDetail("limit", 100)

	// User errors
	ErrUserNotFound = NewDomainError(
		DomainNotFoundError,
		"USER_NOT_FOUND",
		"The requested user does not exist",
	)

	ErrUserNotAuthorized = NewDomainError(
		DomainAuthorizationError,
		"USER_NOT_AUTHORIZED",
		"User is not authorized to perform this action",
	)

	// Contract errors
	ErrResponseShapeDrift = NewDomainError(
		DomainContractError,
		"RESPONSE_SHAPE_DRIFT",
		"Response contains fields outside the documented contract",
	)

	// Infrastructure errors
	ErrConcurrentModification = NewDomainError(
		DomainConflictError,
		"CONCURRENT_MODIFICATION",
		"The resource was modified by another process",
	).WithRetryable(true)

	ErrDatabaseConnection = NewDomainError(
		DomainInfrastructureError,
		"DATABASE_CONNECTION_ERROR",
		"Failed to connect to database",
	).WithRetryable(true)

	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish domain event",
	).WithRetryable(true)
)

// ValidationErrors aggregates multiple validation errors so that callers can
// attribute each failure to a specific field
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

// NewValidationErrors creates a new validation errors collection
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]*DomainError, 0),
	}
}

// Add adds a validation error for a field
func (v *ValidationErrors) Add(field string, message string) {
	err := NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field)
	v.Errors = append(v.Errors, err)
}

// AddError adds a pre-existing domain error
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

// HasErrors returns true if there are validation errors
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Error implements the error interface
func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}

	messages := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		messages[i] = err.Message
	}
	return fmt.Sprintf("Validation failed: %s", strings.Join(messages, "; "))
}

// ToMap converts validation errors to a field -> messages map for JSON
// serialization; UI code keys inline form errors off these field paths
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string)

	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}

		if _, exists := result[field]; !exists {
			result[field] = make([]string, 0)
		}
		result[field] = append(result[field], err.Message)
	}

	return result
}

// DomainErrorResponse represents the API error response format for domain errors
type DomainErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      DomainErrorType        `json:"type"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// NewDomainErrorResponse creates an error response from a domain error
func NewDomainErrorResponse(err *DomainError, requestID string) *DomainErrorResponse {
	return &DomainErrorResponse{
		Error:     true,
		Type:      err.Type,
		Code:      err.Code,
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		RequestID: requestID,
		Timestamp: fmt.Sprintf("%d", timeNow().Unix()),
	}
}

// Helper function for testing (can be mocked)
var timeNow = func() time.Time {
	return time.Now()
}
