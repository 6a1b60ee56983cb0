package errors

import "fmt"

type baseError struct {
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ValidationError is bad user input. Its message is safe to show in chat.
type ValidationError struct {
	baseError
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{baseError{message: message}}
}

func NewValidationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{baseError{message: fmt.Sprintf(format, args...)}}
}

// UnauthorizedError marks a remote session that can no longer be used.
type UnauthorizedError struct {
	baseError
}

func NewUnauthorizedErrorf(format string, args ...interface{}) *UnauthorizedError {
	return &UnauthorizedError{baseError{message: fmt.Sprintf(format, args...)}}
}

// PermissionError is returned when the caller lacks the owner or admin role.
type PermissionError struct {
	baseError
}

func NewPermissionError(message string) *PermissionError {
	return &PermissionError{baseError{message: message}}
}

type NotFoundError struct {
	baseError
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{baseError{message: message}}
}

// ConflictError covers duplicates and limit violations (phone already added,
// account cap reached, task already running).
type ConflictError struct {
	baseError
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{baseError{message: message}}
}

type InternalError struct {
	baseError
}

// WrapInternal keeps cause reachable through errors.Is / errors.As.
func WrapInternal(cause error, message string) *InternalError {
	return &InternalError{baseError{message: message, cause: cause}}
}

// ServiceUnavailableError means a backing store or broker is not reachable.
type ServiceUnavailableError struct {
	baseError
}

func WrapServiceUnavailable(cause error, message string) *ServiceUnavailableError {
	return &ServiceUnavailableError{baseError{message: message, cause: cause}}
}
