package server

import (
	"errors"
	"fmt"
)

type ErrorCode uint

const (
	ErrUnknown ErrorCode = iota
	ErrBadRequest
	ErrNotFound
	// ErrUnknownNode: a referenced node is absent from the graph. Propagated
	// immediately, never recovered.
	ErrUnknownNode
	// ErrNoPathFound: the graph has no route between start and goal. An
	// expected outcome callers must handle, not a fatal condition.
	ErrNoPathFound
	// ErrSearchAborted: the optional expansion limit was exceeded.
	ErrSearchAborted
	// ErrInvalidGraph: malformed input network rejected at construction.
	ErrInvalidGraph
	ErrInternalServerError
)

// Error carries an application error code alongside the wrapped cause.
type Error struct {
	orig error
	msg  string
	code ErrorCode
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		code: code,
		msg:  fmt.Sprintf(format, a...),
	}
}

func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		orig: orig,
		code: code,
		msg:  fmt.Sprintf(format, a...),
	}
}

// ErrorCodeOf unwraps err looking for an application error code.
func ErrorCodeOf(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code()
	}
	return ErrUnknown
}
