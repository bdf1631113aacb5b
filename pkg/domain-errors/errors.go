// Package domainerrors carries coded errors from services to transports.
//
// Services return these errors (optionally wrapping a cause) so the HTTP layer can
// translate them into status codes without knowing about stores or providers.
// Stores should return pkg/platform/sentinel errors instead; the service decides
// which domain code a store fact maps to.
package domainerrors

import (
	"errors"
	"fmt"
	"maps"
)

// Code classifies a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvariantViolation Code = "invariant_violation"
	CodeModel              Code = "model_error"
	CodeTimeout            Code = "timeout"
	CodeRateLimited        Code = "rate_limited"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error. Fields holds per-field messages for validation failures.
type Error struct {
	Code    Code
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a domain error without an underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation builds a CodeValidation error from per-field messages.
func Validation(message string, fields map[string]string) *Error {
	e := &Error{Code: CodeValidation, Message: message}
	if len(fields) > 0 {
		e.Fields = maps.Clone(fields)
	}
	return e
}

// WithField returns a copy of e with an extra field message.
func (e *Error) WithField(field, message string) *Error {
	out := *e
	out.Fields = maps.Clone(e.Fields)
	if out.Fields == nil {
		out.Fields = make(map[string]string, 1)
	}
	out.Fields[field] = message
	return &out
}

// CodeOf returns the code of the outermost domain error in err's chain,
// or CodeInternal when there is none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// FieldsOf returns validation field messages, if any.
func FieldsOf(err error) map[string]string {
	var de *Error
	if errors.As(err, &de) {
		return de.Fields
	}
	return nil
}

// Is is errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
