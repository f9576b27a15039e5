// Package domain defines core types, interfaces, and errors for the extract service.
package domain

import "fmt"

// NotFoundError indicates a resource was not found. For extracts this also
// covers "exists but not visible to the caller" — the two causes are
// deliberately indistinguishable so callers cannot probe for existence.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// AccessDeniedError indicates insufficient permissions.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a conflict (e.g., duplicate resource).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// CompileError indicates an extract definition could not be compiled into a
// statement — typically a dangling catalog field or operator reference.
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return e.Message }

// ExecutionError indicates the member store rejected a generated statement.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string { return e.Message }

// UnavailableError indicates a transient store failure (pool exhaustion,
// dropped connection). The operation may succeed on retry.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string { return e.Message }

// TimeoutError indicates a query exceeded its execution deadline.
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrCompile creates a CompileError with a formatted message.
func ErrCompile(format string, args ...interface{}) *CompileError {
	return &CompileError{Message: fmt.Sprintf(format, args...)}
}

// ErrExecution creates an ExecutionError with a formatted message.
func ErrExecution(format string, args ...interface{}) *ExecutionError {
	return &ExecutionError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnavailable creates an UnavailableError with a formatted message.
func ErrUnavailable(format string, args ...interface{}) *UnavailableError {
	return &UnavailableError{Message: fmt.Sprintf(format, args...)}
}

// ErrTimeout creates a TimeoutError with a formatted message.
func ErrTimeout(format string, args ...interface{}) *TimeoutError {
	return &TimeoutError{Message: fmt.Sprintf(format, args...)}
}
