// Package goerror pairs an underlying cause with the message a caller is
// allowed to see and the HTTP class the failure belongs to.
package goerror

import (
	"errors"
	"net/http"
)

// Kind is the class of a failure as seen by the caller.
type Kind uint8

const (
	// KindInternal is a failure the caller cannot fix.
	KindInternal Kind = iota
	// KindInvalid is a malformed or incomplete request.
	KindInvalid
	// KindConflict is a request that collides with one already accepted.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

const (
	msgInternal = "Internal server error"
	msgInvalid  = "Invalid request body"
)

// Error is returned by usecases and rendered by the router. Msg is public,
// the cause is only logged.
type Error struct {
	kind  Kind
	msg   string
	cause error
}

// Error joins the public message with the cause so log lines carry both.
func (e *Error) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

// Msg is the text safe to return to the caller.
func (e *Error) Msg() string { return e.msg }

// StatusCode maps the kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Internal hides cause behind msg, or behind the generic message when msg is empty.
func Internal(cause error, msg string) error {
	if msg == "" {
		msg = msgInternal
	}
	return &Error{kind: KindInternal, msg: msg, cause: cause}
}

// Invalid reports a bad request. An empty msg means the body itself could not be read.
func Invalid(cause error, msg string) error {
	if msg == "" {
		msg = msgInvalid
	}
	return &Error{kind: KindInvalid, msg: msg, cause: cause}
}

// Conflict reports a request that was already accepted or is being processed.
func Conflict(cause error, msg string) error {
	return &Error{kind: KindConflict, msg: msg, cause: cause}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}
