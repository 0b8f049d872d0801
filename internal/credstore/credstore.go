// Package credstore persists the small set of named credentials the client
// owns: the auth token, cached profile, push token, and onboarding flag.
// Two backends implement the CredentialStore strategy: SecureStore keeps
// values encrypted at rest with an age identity, FallbackStore is a plain
// sqlite key-value table. The backend is probed and selected once at
// process start.
//
// Store operations never return errors to callers. Internal failures are
// logged and reported as false / absent, since every caller treats storage
// as best-effort.
package credstore

import (
	"github.com/rs/zerolog/log"
)

// Keys known to the store. Only KeyAuthToken is read on the hot path;
// the rest are cleared together at logout.
const (
	KeyAuthToken           = "authToken"
	KeyUserProfile         = "userProfile"
	KeyPushToken           = "pushToken"
	KeyOnboardingCompleted = "onboardingCompleted"
)

// KnownKeys lists every key the store manages. ClearAll removes each of
// these before wiping the fallback namespace.
var KnownKeys = []string{
	KeyAuthToken,
	KeyUserProfile,
	KeyPushToken,
	KeyOnboardingCompleted,
}

// CredentialStore is the storage strategy interface. Get reports absence
// via its second return value; write operations report success.
type CredentialStore interface {
	Name() string
	Save(key, value string) bool
	Get(key string) (string, bool)
	Remove(key string) bool
	ClearAll() bool
}

// Select probes backend availability once and returns the store to use for
// the life of the process: the secure backend when an age identity can be
// created or loaded under dir, otherwise the sqlite fallback.
func Select(dir string) (CredentialStore, error) {
	s, err := NewSecureStore(dir)
	if err == nil {
		log.Debug().Str("backend", s.Name()).Msg("credential store selected")
		return s, nil
	}
	log.Warn().Err(err).Msg("secure credential store unavailable, using fallback")

	f, err := NewFallbackStore(dir)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("backend", f.Name()).Msg("credential store selected")
	return f, nil
}
