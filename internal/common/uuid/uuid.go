// Package uuid provides UUID generation with a focus on UUIDv7
// (time-ordered UUIDs). It wraps github.com/google/uuid and sets version 7
// as the default. Request IDs attached to outgoing API calls use these so
// they sort by creation time in server logs.
package uuid

import (
	"github.com/google/uuid"
)

// UUID represents a UUID, aliased from github.com/google/uuid.UUID
type UUID = uuid.UUID

// Nil is the zero UUID.
var Nil = uuid.Nil

// New returns a new UUIDv7. Panics if UUID generation fails.
func New() UUID {
	uuidv7, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return uuidv7
}

// NewString returns a new UUIDv7 in canonical string form.
func NewString() string {
	return New().String()
}

// Parse parses a UUID from its string form.
func Parse(s string) (UUID, error) {
	return uuid.Parse(s)
}
