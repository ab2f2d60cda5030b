package errors

import (
	"net/http"

	"pentrack/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// User-related errors
	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"No account found with this email address.",
		"",
	)

	ErrUserAlreadyExists = NewBaseError(
		http.StatusConflict,
		"USER_ALREADY_EXISTS",
		"An account with this email or phone already exists.",
		"",
	)

	ErrUserCreationFailed = NewBaseError(
		http.StatusInternalServerError,
		"USER_CREATION_FAILED",
		"Failed to create user account.",
		"",
	)

	ErrAccountSuspended = NewBaseError(
		http.StatusUnauthorized,
		"ACCOUNT_SUSPENDED",
		"This account is suspended.",
		"",
	)

	ErrAccountDeleted = NewBaseError(
		http.StatusUnauthorized,
		"ACCOUNT_DELETED",
		"This account has been deleted.",
		"",
	)

	ErrAccountNotActive = NewBaseError(
		http.StatusUnauthorized,
		"ACCOUNT_NOT_ACTIVE",
		"This account is not active.",
		"",
	)

	// One-time-code errors. Invalid and expired share a deliberately vague
	// message so callers cannot tell which half of (email, code) was wrong.
	ErrCodeInvalid = NewBaseError(
		http.StatusUnauthorized,
		"OTP_INVALID",
		"Invalid or expired code.",
		"",
	)

	ErrCodeExpired = NewBaseError(
		http.StatusUnauthorized,
		"OTP_EXPIRED",
		"The code has expired. Please request a new one.",
		"",
	)

	ErrCodeMaxAttempts = NewBaseError(
		http.StatusUnauthorized,
		"OTP_MAX_ATTEMPTS",
		"Too many failed attempts. Please request a new code.",
		"",
	)

	ErrCodeRateLimited = NewBaseError(
		http.StatusTooManyRequests,
		"OTP_RATE_LIMITED",
		"Too many code requests. Please try again in a few minutes.",
		"",
	)

	ErrCodeNotAllowedForRole = NewBaseError(
		http.StatusForbidden,
		"OTP_NOT_ALLOWED_FOR_ROLE",
		"This role must sign in with the company identity provider.",
		"",
	)

	ErrEmailDeliveryFailed = NewBaseError(
		http.StatusBadGateway,
		"EMAIL_DELIVERY_FAILED",
		"Failed to send the code email. Please try again.",
		"",
	)

	// Session errors
	ErrSessionMissing = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_MISSING",
		"No session token found. Please log in.",
		"",
	)

	ErrSessionInvalid = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_INVALID",
		"Invalid session. Please log in again.",
		"",
	)

	ErrSessionExpired = NewBaseError(
		http.StatusUnauthorized,
		"SESSION_EXPIRED",
		"Session expired. Please log in again.",
		"",
	)

	// Federated-login errors
	ErrOAuthRoleNotAllowed = NewBaseError(
		http.StatusForbidden,
		"OAUTH_ROLE_NOT_ALLOWED",
		"Federated login is not available for this role.",
		"",
	)

	ErrOAuthStateInvalid = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_STATE_INVALID",
		"Invalid or expired login state. Please start over.",
		"",
	)

	ErrOAuthStateExpired = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_STATE_EXPIRED",
		"The login attempt expired. Please start over.",
		"",
	)

	ErrOAuthExchangeFailed = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_EXCHANGE_FAILED",
		"Could not verify the provider response. Please try again.",
		"",
	)

	ErrOAuthDomainNotAllowed = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_DOMAIN_NOT_ALLOWED",
		"This email domain is not allowed for the requested role.",
		"",
	)

	ErrOAuthRoleMismatch = NewBaseError(
		http.StatusUnauthorized,
		"OAUTH_ROLE_MISMATCH",
		"This account is registered under a different role.",
		"",
	)

	ErrProviderAlreadyLinked = NewBaseError(
		http.StatusConflict,
		"PROVIDER_ALREADY_LINKED",
		"This provider identity is already linked to another account.",
		"",
	)

	// Validation-related errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Input validation failed.",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error.",
		"",
	)

	ErrForbidden = NewBaseError(
		http.StatusForbidden,
		"FORBIDDEN",
		"Access denied.",
		"",
	)

	ErrNotFound = NewBaseError(
		http.StatusNotFound,
		"NOT_FOUND",
		"Resource not found.",
		"",
	)

	ErrConflict = NewBaseError(
		http.StatusConflict,
		"CONFLICT",
		"Resource conflict.",
		"",
	)
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Database execution failed."
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
