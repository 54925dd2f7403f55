package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies application errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeInfrastructure ErrorType = "INFRASTRUCTURE_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

// Error codes carried by infrastructure errors
const (
	CodeSeedFetchFailed   = "SEED_FETCH_FAILED"
	CodePersistenceFailed = "PERSISTENCE_FAILED"
	CodeInvalidCredential = "INVALID_CREDENTIALS"
)

// Common application errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Back-office specific errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownEntity  = errors.New("unknown entity")
	ErrSeedFetch      = errors.New("seed fetch failed")
	ErrPersistence    = errors.New("cache write failed")
)

// AppError represents an application error with context
type AppError struct {
	Type      ErrorType              `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	HTTPCode  int                    `json:"-"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Cause     error                  `json:"-"`
	Component string                 `json:"component,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, httpCode int) *AppError {
	return &AppError{
		Type:     errorType,
		Message:  message,
		HTTPCode: httpCode,
		Details:  make(map[string]interface{}),
	}
}

// WithCode adds an error code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithComponent adds the component name
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component
	return e
}

// WithDetail adds a detail field
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrorTypeValidation, message, http.StatusBadRequest)
}

// NewInfrastructureError creates an infrastructure error
func NewInfrastructureError(message string) *AppError {
	return NewAppError(ErrorTypeInfrastructure, message, http.StatusInternalServerError)
}

// NewAuthenticationError creates an authentication error
func NewAuthenticationError(message string) *AppError {
	return NewAppError(ErrorTypeAuthentication, message, http.StatusUnauthorized)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrorTypeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, message, http.StatusInternalServerError)
}

// NewSeedFetchError reports a failed remote seed; recovered locally by callers.
func NewSeedFetchError(source string, cause error) *AppError {
	return NewInfrastructureError(fmt.Sprintf("failed to fetch seed from %s", source)).
		WithCode(CodeSeedFetchFailed).
		WithCause(errors.Join(ErrSeedFetch, cause))
}

// NewPersistenceError reports a failed cache write for key.
func NewPersistenceError(key string, cause error) *AppError {
	return NewInfrastructureError("failed to persist collection").
		WithCode(CodePersistenceFailed).
		WithDetail("key", key).
		WithCause(errors.Join(ErrPersistence, cause))
}

// NewInvalidCredentialsError reports a failed login.
func NewInvalidCredentialsError() *AppError {
	return NewAuthenticationError("invalid email or password").
		WithCode(CodeInvalidCredential).
		WithCause(ErrInvalidCredentials)
}

// ValidationError represents a validation failure on one field
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors collects field validation failures
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", ve.Errors[0].Message)
}

// NewValidationErrors creates a new validation errors instance
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}

// Add adds a validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) *ValidationErrors {
	ve.Errors = append(ve.Errors, ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
	return ve
}

// HasErrors returns true if there are validation errors
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Fields returns the names of the failing fields in order.
func (ve *ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		fields = append(fields, e.Field)
	}
	return fields
}

// ToAppError converts validation errors to an AppError
func (ve *ValidationErrors) ToAppError() *AppError {
	if !ve.HasErrors() {
		return nil
	}

	appErr := NewValidationError(ve.Error())
	appErr.Details["validation_errors"] = ve.Errors
	return appErr.WithCause(ErrInvalidInput)
}

// WrapError wraps an error with context unless it already is an AppError
func WrapError(err error, message string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}

// HTTPStatus returns the HTTP status associated with err.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.HTTPCode != 0 {
		return appErr.HTTPCode
	}
	return http.StatusInternalServerError
}

func isType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return isType(err, ErrorTypeNotFound) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrRecordNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	var ve *ValidationErrors
	return isType(err, ErrorTypeValidation) || errors.As(err, &ve)
}

// IsAuthentication checks if an error is an authentication error
func IsAuthentication(err error) bool {
	return isType(err, ErrorTypeAuthentication) ||
		errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrInvalidCredentials)
}

// IsPersistence checks if an error is a cache write failure
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsSeedFetch checks if an error is a seed fetch failure
func IsSeedFetch(err error) bool {
	return errors.Is(err, ErrSeedFetch)
}
