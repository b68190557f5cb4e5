package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the caller supplied invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates the current state forbids the operation.
	ErrConflict = errors.New("state conflict")
	// ErrCapacity indicates a bounded pool is exhausted.
	ErrCapacity = errors.New("capacity exhausted")
)

// Error is a domain failure tagged with a category and a stable code.
type Error struct {
	kind error
	code string
	msg  string
}

// Error implements error.
func (e *Error) Error() string { return e.msg }

// Code returns the machine readable failure code.
func (e *Error) Code() string { return e.code }

// Is matches the category sentinel.
func (e *Error) Is(target error) bool { return target == e.kind }

// Validation builds a validation error.
func Validation(code, msg string) *Error { return &Error{kind: ErrValidation, code: code, msg: msg} }

// NotFound builds a not-found error.
func NotFound(code, msg string) *Error { return &Error{kind: ErrNotFound, code: code, msg: msg} }

// Conflict builds a state-conflict error.
func Conflict(code, msg string) *Error { return &Error{kind: ErrConflict, code: code, msg: msg} }

// Capacity builds a capacity error.
func Capacity(code, msg string) *Error { return &Error{kind: ErrCapacity, code: code, msg: msg} }

// ErrorCode extracts the code of a domain error, or "" when err carries none.
func ErrorCode(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.code
	}
	return ""
}
