// Package apperr defines the error taxonomy shared by the service and
// transport layers. Every error a service returns carries a kind and a
// stable code so the HTTP layer can map it to a status and response
// envelope without inspecting service internals.
package apperr

import "errors"

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindInvalid is a client mistake in the request payload
	// (bad percentages, missing fields). Maps to 400.
	KindInvalid Kind = iota + 1

	// KindUnauthorized means missing or bad credentials. Maps to 401.
	KindUnauthorized

	// KindForbidden means the authenticated user is not allowed to act
	// on the resource (not a group member). Maps to 403.
	KindForbidden

	// KindNotFound means the referenced entity does not exist. Maps to 404.
	KindNotFound

	// KindInternal is a storage or other server-side failure. Maps to 500.
	KindInternal
)

// Stable response codes, carried over from the original API envelope.
const (
	CodeInvalid      = "VF"
	CodeUnauthorized = "UA"
	CodeForbidden    = "FD"
	CodeNotFound     = "NF"
	CodeInternal     = "DBE"
)

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid returns a bad-request error with the given reason.
func Invalid(msg string) *Error {
	return &Error{Kind: KindInvalid, Code: CodeInvalid, Message: msg}
}

// Unauthorized returns an authentication error with the given reason.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: msg}
}

// Forbidden returns an authorization error with the given reason.
func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: msg}
}

// NotFound returns a missing-entity error with the given reason.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: msg}
}

// Internal wraps a server-side failure. The wrapped error is preserved
// for logging but never shown to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "internal server error", Err: err}
}

// KindOf extracts the Kind from err, defaulting to KindInternal for
// unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// As is a convenience wrapper around errors.As for *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
