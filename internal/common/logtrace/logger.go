// Package logtrace provides logging utilities for the application.
// It configures zerolog for structured logging and carries request IDs
// through contexts so client calls can be correlated in the log.
package logtrace

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with Unix timestamp format.
// Configures zerolog to output to stderr with timestamps.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// SetQuiet raises the global log level so only warnings and errors are
// emitted. Used by the CLI so structured logs don't interleave with
// command output.
func SetQuiet() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or carries no request ID.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIDKey{}).(string)
	if !ok {
		return ""
	}
	return r
}
