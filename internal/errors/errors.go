// Package errors provides coded error types for gaplace.
//
// Codes group failures by how a caller should react:
//   - INVALID_CONFIG: a run configuration was rejected before any population was built
//   - GEOMETRY_INVARIANT: a genome no longer matches the component catalog (a defect)
//   - NOT_FOUND: a stored configuration or run does not exist
//   - INVALID_FORMAT: a configuration file could not be read
//   - INTERNAL: storage and other unexpected failures
//
// # Usage
//
//	err := errors.InvalidConfig("cxpb", "must be in [0,1], got %g", v)
//	if errors.Is(err, errors.CodeInvalidConfig) {
//	    // report FieldOf(err) to the user
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

const (
	CodeInvalidConfig     Code = "INVALID_CONFIG"
	CodeGeometryInvariant Code = "GEOMETRY_INVARIANT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeInvalidFormat     Code = "INVALID_FORMAT"
	CodeInternal          Code = "INTERNAL"
)

// Error is a coded error with an optional offending field and cause.
type Error struct {
	Code    Code
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// InvalidConfig reports a configuration error naming the offending field.
func InvalidConfig(field, format string, args ...any) *Error {
	return &Error{Code: CodeInvalidConfig, Field: field, Message: fmt.Sprintf(format, args...)}
}

// GeometryInvariant reports a genome that does not fit the catalog.
func GeometryInvariant(format string, args ...any) *Error {
	return New(CodeGeometryInvariant, format, args...)
}

// NotFound reports a missing stored record.
func NotFound(kind, name string) *Error {
	return New(CodeNotFound, "%s %q not found", kind, name)
}

// Is reports whether any error in err's chain is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the code of the first *Error in err's chain.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// FieldOf returns the offending field of a configuration error, or "".
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// UserMessage returns the message without the code prefix.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}
		return e.Message
	}
	return err.Error()
}
