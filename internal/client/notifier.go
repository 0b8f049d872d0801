package client

import (
	"github.com/rs/zerolog/log"
)

// NoticeKind classifies a user-facing notice raised by the client.
type NoticeKind int

const (
	// NoticeError is a blocking notice for a failed call.
	NoticeError NoticeKind = iota
	// NoticeGuest is a blocking notice explaining a guest-mode restriction.
	NoticeGuest
	// NoticeConnectivity is a blocking notice for a transport failure.
	NoticeConnectivity
)

// String returns the notice kind label used in logs.
func (k NoticeKind) String() string {
	switch k {
	case NoticeGuest:
		return "guest"
	case NoticeConnectivity:
		return "connectivity"
	default:
		return "error"
	}
}

// ConnectivityMessage is the generic notice shown when the server cannot
// be reached at all.
const ConnectivityMessage = "Unable to reach the server. Please check your connection and try again."

// Notifier presents blocking notices to the user. The CLI supplies a
// terminal implementation; tests supply a recorder.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// LogNotifier is the default Notifier. It writes notices to the log,
// for callers that embed the client without a user-facing surface.
type LogNotifier struct{}

// Notify logs the notice at warn level.
func (LogNotifier) Notify(kind NoticeKind, message string) {
	log.Warn().Str("kind", kind.String()).Str("message", message).Msg("user notice")
}
