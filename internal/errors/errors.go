// Package errors provides a coded error type for topviews failures.
// Import it as perr to keep the stdlib errors package reachable.
package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies a failure. Values are stable; add sparingly.
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodeInvalidArgument is for bad caller input (flags, request params)
	ErrorCodeInvalidArgument

	// ErrorCodeInvalidProject is raised by the local known-sites check before any fetch
	ErrorCodeInvalidProject

	// ErrorCodeFetchFailure is for an unreachable or malformed ranking source
	ErrorCodeFetchFailure

	// ErrorCodeNamespaceLookup is for the secondary page-metadata stage only
	ErrorCodeNamespaceLookup

	// ErrorCodeMalformedLinkState is for unparseable query-string fields
	ErrorCodeMalformedLinkState

	// ErrorCodeCache is for session cache failures
	ErrorCodeCache
)

// String returns a short name for the code
func (c ErrorCode) String() string {
	switch c {
	case ErrorCodeInvalidArgument:
		return "invalid_argument"
	case ErrorCodeInvalidProject:
		return "invalid_project"
	case ErrorCodeFetchFailure:
		return "fetch_failure"
	case ErrorCodeNamespaceLookup:
		return "namespace_lookup"
	case ErrorCodeMalformedLinkState:
		return "malformed_link_state"
	case ErrorCodeCache:
		return "cache"
	default:
		return "unknown"
	}
}

// HTTPStatusCode turns an ErrorCode into an http status code
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeInvalidArgument, ErrorCodeMalformedLinkState:
		return http.StatusBadRequest
	case ErrorCodeInvalidProject:
		return http.StatusUnprocessableEntity
	case ErrorCodeFetchFailure, ErrorCodeNamespaceLookup:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a machine code, a developer message and an optional cause.
// field names the offending input when there is one.
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
}

// Wire is the JSON form returned by the HTTP surface
type Wire struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// Message returns the message without the wrapped cause
func (e *Error) Message() string { return e.msg }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire { return Wire{Code: e.code.String(), Message: e.Error(), Field: e.field} }

// WireFrom converts any error into a Wire payload
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown.String(), Message: err.Error()}
}

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return err != nil && CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WithField attaches a field to an *Error (copy-on-write). Foreign errors pass through.
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// Flatten splits an errors.Join result into its parts. Any other error comes
// back as a one-element slice, nil as nil.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// InvalidProjectf returns an invalid project error
func InvalidProjectf(format string, a ...any) error {
	return Newf(ErrorCodeInvalidProject, format, a...)
}

// FetchFailuref returns a fetch failure error
func FetchFailuref(format string, a ...any) error { return Newf(ErrorCodeFetchFailure, format, a...) }

// Malformedf returns a malformed link state error for field
func Malformedf(field, format string, a ...any) error {
	return &Error{code: ErrorCodeMalformedLinkState, msg: fmt.Sprintf(format, a...), field: field}
}
