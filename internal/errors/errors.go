// Package errors defines the application error taxonomy shared by services and transport.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a referenced job, user or application does not exist.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeConflict indicates a uniqueness conflict (e.g. a duplicate application).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates malformed input.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeForbidden indicates the actor's role or ownership does not permit the action.
	ErrCodeForbidden ErrorCode = "forbidden"
	// ErrCodeInvalidTransition indicates a status change that the lifecycle does not allow.
	ErrCodeInvalidTransition ErrorCode = "invalid_transition"
	// ErrCodePreconditionFailed indicates the resource is not yet in the state an operation requires.
	ErrCodePreconditionFailed ErrorCode = "precondition_failed"
	// ErrCodeRateLimited indicates the caller exceeded a configured request budget.
	ErrCodeRateLimited ErrorCode = "rate_limited"
	// ErrCodeForeignKey indicates a foreign key constraint violation.
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
	// Field names the offending input field for validation errors.
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newErr(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError { return newErr(ErrCodeNotFound, message) }

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return newErr(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError { return newErr(ErrCodeConflict, message) }

// Validation creates a new Validation error.
func Validation(message string) *AppError { return newErr(ErrCodeValidation, message) }

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return newErr(ErrCodeValidation, fmt.Sprintf(format, args...))
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Field:   field,
	}
}

// Forbidden creates a new Forbidden error.
func Forbidden(message string) *AppError { return newErr(ErrCodeForbidden, message) }

// InvalidTransition creates a new InvalidTransition error.
func InvalidTransition(message string) *AppError { return newErr(ErrCodeInvalidTransition, message) }

// PreconditionFailed creates a new PreconditionFailed error.
func PreconditionFailed(message string) *AppError { return newErr(ErrCodePreconditionFailed, message) }

// RateLimited creates a new RateLimited error.
func RateLimited(message string) *AppError { return newErr(ErrCodeRateLimited, message) }

// ForeignKey creates a new ForeignKey error.
func ForeignKey(message string) *AppError { return newErr(ErrCodeForeignKey, message) }

// Internal creates a new Internal error.
func Internal(message string) *AppError { return newErr(ErrCodeInternal, message) }

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsForbidden checks if an error is a Forbidden error.
func IsForbidden(err error) bool { return isCode(err, ErrCodeForbidden) }

// IsInvalidTransition checks if an error is an InvalidTransition error.
func IsInvalidTransition(err error) bool { return isCode(err, ErrCodeInvalidTransition) }

// IsPreconditionFailed checks if an error is a PreconditionFailed error.
func IsPreconditionFailed(err error) bool { return isCode(err, ErrCodePreconditionFailed) }

// IsRateLimited checks if an error is a RateLimited error.
func IsRateLimited(err error) bool { return isCode(err, ErrCodeRateLimited) }

// IsForeignKey checks if an error is a ForeignKey error.
func IsForeignKey(err error) bool { return isCode(err, ErrCodeForeignKey) }

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
