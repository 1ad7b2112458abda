/*
Package shared - domain layer shared contracts and errors.

Design principles:
 1. The domain layer defines sentinel errors for type-safe errors.Is() checks.
 2. DomainError captures its stack at creation but formats it lazily.
 3. Domain errors carry no transport concepts (HTTP status codes live in the
    API layer).
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Sentinel errors for errors.Is() checks.
var (
	// ErrNotFound Resource does not exist
	ErrNotFound = errors.New("not found")

	// ErrConflict Resource conflict (concurrent modification, unique constraint)
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput Input validation failure
	ErrInvalidInput = errors.New("invalid input")

	// ErrSerialization Event payload cannot be (de)serialized.
	// Fatal for the affected outbox record: retrying would fail forever, so
	// the dispatcher rejects the record instead of re-queueing it.
	ErrSerialization = errors.New("serialization failure")
)

// DomainError Structured error carrying business context and the stack of the
// point where it was raised. Supports errors.Is() and errors.As() through
// Unwrap.
type DomainError struct {
	// Err Underlying sentinel, for errors.Is() checks
	Err error

	// Entity Name of the entity the error relates to (e.g. "company")
	Entity string

	// Message Human-readable description
	Message string

	// Field Optional field name for validation errors
	Field string

	// stack Raw frames captured at creation, formatted on demand
	stack []uintptr
}

// Error Implement the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap Support errors.Is() and errors.As()
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Stack Format the captured stack (called only when logging)
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// CaptureStack Capture the current call stack.
// skip counts the frames to drop (usually 3: Callers, CaptureStack, the
// constructor).
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack Format stack frames, filtering runtime internals, max 10 frames
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// NewNotFoundError Create a "not found" domain error
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

// NewConflictError Create a "conflict" domain error
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError Create a "validation failed" domain error
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// Stacker Error that can provide the stack of its origin
type Stacker interface {
	Stack() []string
}
