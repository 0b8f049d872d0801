package apperrors

import (
	"errors"
)

// appError is the concrete implementation of Error. Derived errors keep a
// reference to the error they were created from so errors.Is matches anywhere
// in the chain.
type appError struct {
	msg           string  // primary error message
	base          error   // base error for errors.Is/As compatibility
	wrappedErrors []error // additional wrapped errors
	statuscode    int     // HTTP status code
}

// New creates a root-level error with the given message. This is the entry
// point for declaring error taxonomy roots.
func New(msg string) Error {
	return &appError{
		msg: msg,
	}
}

func (e *appError) Error() string {
	return e.msg
}

// Unwrap returns the base error for compatibility with errors.Is / errors.As.
func (e *appError) Unwrap() error {
	return e.base
}

// UnwrapAll returns all wrapped errors in the order they were added.
func (e *appError) UnwrapAll() []error {
	return e.wrappedErrors
}

// New creates a fresh error using the current error as a template.
// The new error inherits the status code but starts with a new message.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

// Msg creates a new error with a new message and wraps the original error.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: append([]error{e}, e.wrappedErrors...),
		statuscode:    e.statuscode,
	}
}

// MsgErr creates a new error with a message and wraps additional errors.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	all := append([]error{e}, errs...)
	return &appError{
		msg:           msg,
		base:          e,
		wrappedErrors: all,
		statuscode:    e.statuscode,
	}
}

// Err creates a new error by attaching additional errors to the current
// error. The message and status code are preserved.
func (e *appError) Err(errs ...error) Error {
	all := append([]error{e}, errs...)
	return &appError{
		msg:           e.msg,
		base:          e,
		wrappedErrors: all,
		statuscode:    e.statuscode,
	}
}

// SetStatusCode returns a shallow copy with an updated status code.
// The original error remains unchanged.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

// StatusCode returns the current HTTP status code.
func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is checks the base error and every wrapped error against the target.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrappedErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
