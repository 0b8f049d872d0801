// Package apperrors provides the application's error type. It extends the
// standard error interface with error chaining and an associated status code,
// while staying compatible with errors.Is and errors.As.
package apperrors

// Error is the interface implemented by all application errors. Methods that
// derive a new error return Error so calls can be chained.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetStatusCode(int) Error               // sets HTTP status code for the error
	StatusCode() int                       // returns the current status code
	UnwrapAll() []error                    // returns all wrapped errors
}
