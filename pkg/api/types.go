// Package api defines the wire types exchanged with the Advisio platform.
// Every endpoint responds with the same JSON envelope; the data payload
// varies per endpoint and is decoded on demand into the typed structs below.
package api

import (
	"github.com/mitchellh/mapstructure"
)

// Envelope status values with defined meaning to the client. Any other
// status string is a generic failure the caller inspects itself.
const (
	StatusOK     = "ok"
	StatusLogout = "logout"
	StatusGuest  = "guest"
)

// Envelope is the response envelope returned by every platform endpoint.
type Envelope struct {
	Status       string      `json:"status"`
	Data         any         `json:"data,omitempty"`
	MessageHTML  string      `json:"message_html,omitempty"`
	MessagePlain string      `json:"message_plain,omitempty"`
	Pagination   *Pagination `json:"pagination,omitempty"`

	// Message is the normalized user-facing message, populated by the
	// client for guest responses. Not part of the wire format.
	Message string `json:"-"`

	// Raw is the response body as received. Callers use it for loose
	// single-field extraction where a typed decode is overkill.
	Raw []byte `json:"-"`
}

// OK reports whether the call succeeded.
func (e *Envelope) OK() bool {
	return e != nil && e.Status == StatusOK
}

// IsGuest reports whether the server restricted the call to guest mode.
func (e *Envelope) IsGuest() bool {
	return e != nil && e.Status == StatusGuest
}

// ErrorMessage returns the user-facing message for a failed call:
// message_html, falling back to message_plain, falling back to a generic
// server-error string.
func (e *Envelope) ErrorMessage() string {
	if e == nil {
		return GenericServerError
	}
	if e.MessageHTML != "" {
		return e.MessageHTML
	}
	if e.MessagePlain != "" {
		return e.MessagePlain
	}
	return GenericServerError
}

// GenericServerError is shown when the server gives no usable message.
const GenericServerError = "The server reported an error. Please try again later."

// DecodeData decodes the envelope's data payload into out. JSON field
// names are honored, and scalar types are coerced where the server is
// loose about numbers-as-strings.
func (e *Envelope) DecodeData(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(e.Data)
}

// Pagination describes the window of a paginated list response.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// Message is a single chat message in an advisory or appointment thread.
type Message struct {
	ID        string `json:"id"`
	ThreadID  string `json:"thread_id,omitempty"`
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	Mine      bool   `json:"mine,omitempty"`
}

// EntryID makes Message usable with the feed synchronizer.
func (m Message) EntryID() string { return m.ID }

// Notification is a single entry in the user's notification list.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// EntryID makes Notification usable with the feed synchronizer.
func (n Notification) EntryID() string { return n.ID }

// Entitlements are the server-derived feature flags for the current user.
type Entitlements struct {
	HasServicesEnabled bool `json:"has_services_enabled"`
	HasAdvisory        bool `json:"has_advisory"`
	IsGuest            bool `json:"is_guest"`
}

// Profile is the user's account profile as returned by the dashboard.
type Profile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	PictureURL string `json:"profile_picture_url,omitempty"`
}

// Appointment is a scheduled advisory appointment.
type Appointment struct {
	ID        string `json:"id"`
	Advisor   string `json:"advisor"`
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	StartsAt  string `json:"starts_at"`
	CreatedAt string `json:"created_at"`
}

// DashboardSummary is the landing-screen payload.
type DashboardSummary struct {
	Profile             Profile       `json:"profile"`
	UpcomingAppointment *Appointment  `json:"upcoming_appointment,omitempty"`
	UnreadNotifications int           `json:"unread_notifications"`
	Entitlements        *Entitlements `json:"entitlements,omitempty"`
}
