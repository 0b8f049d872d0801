// Package advisory provides typed operations over the platform API client:
// the public authentication flows and the authenticated screen endpoints
// (dashboard, chats, notifications, services status).
//
// Operations return nil data with a nil error when the call produced
// nothing to act on: either the server ended the session (the expiry
// handler has already run) or the failure was already surfaced to the user
// by the client. Callers branch on the data, not on sentinel errors.
package advisory

import (
	"context"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/advisio/advisio/internal/client"
	"github.com/advisio/advisio/internal/common/apperrors"
	"github.com/advisio/advisio/internal/feed"
	"github.com/advisio/advisio/pkg/api"
)

var (
	// ErrAuthFailed reports a public auth flow rejected by the server.
	// The message carries the server's user-facing text.
	ErrAuthFailed = apperrors.New("authentication failed")

	// ErrSubmitFailed reports a message submit that produced no entry.
	// The caller restores the composer draft on this error.
	ErrSubmitFailed = apperrors.New("submit failed")

	// ErrStatusUnavailable reports that the entitlements could not be
	// refreshed; callers reset the flags to their safe defaults.
	ErrStatusUnavailable = apperrors.New("services status unavailable")
)

// Service exposes the platform's endpoints as typed operations.
type Service struct {
	c *client.Client
}

// NewService wraps the given API client.
func NewService(c *client.Client) *Service {
	return &Service{c: c}
}

// Login authenticates with email and password and returns the new auth
// token. The caller hands the token to the session manager; this call
// itself persists nothing.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	fields := url.Values{}
	fields.Set("email", email)
	fields.Set("password", password)

	env, err := s.c.FetchPublic(ctx, "login", fields)
	if err != nil {
		return "", err
	}
	return extractToken(env)
}

// Register creates a new account. The envelope is returned so the caller
// can present field-level errors from the message fields.
func (s *Service) Register(ctx context.Context, fields url.Values) (*api.Envelope, error) {
	return s.c.FetchPublic(ctx, "register", fields)
}

// RecoverPassword starts the password-recovery flow for the given email.
func (s *Service) RecoverPassword(ctx context.Context, email string) (*api.Envelope, error) {
	fields := url.Values{}
	fields.Set("email", email)
	return s.c.FetchPublic(ctx, "recover-password", fields)
}

// Activate redeems an activation code and returns the auth token created
// by the server.
func (s *Service) Activate(ctx context.Context, code string) (string, error) {
	fields := url.Values{}
	fields.Set("code", code)

	env, err := s.c.FetchPublic(ctx, "activate", fields)
	if err != nil {
		return "", err
	}
	return extractToken(env)
}

// extractToken pulls the auth token out of a public auth envelope.
func extractToken(env *api.Envelope) (string, error) {
	if !env.OK() {
		return "", ErrAuthFailed.New(env.ErrorMessage())
	}
	token := gjson.GetBytes(env.Raw, "data.auth_token").String()
	if token == "" {
		token = gjson.GetBytes(env.Raw, "auth_token").String()
	}
	if token == "" {
		return "", ErrAuthFailed.Msg("no token in response")
	}
	return token, nil
}

// Dashboard fetches the landing-screen summary.
func (s *Service) Dashboard(ctx context.Context, opts ...client.RequestOption) (*api.DashboardSummary, error) {
	env, err := s.c.FetchWithAuth(ctx, "app-dashboard", nil, opts...)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, nil
	}
	var summary api.DashboardSummary
	if err := env.DecodeData(&summary); err != nil {
		return nil, client.ErrServer.Err(err)
	}
	return &summary, nil
}

// ServicesStatus fetches the server-derived entitlements. Always silent:
// it runs as a background refresh. Any failure returns
// ErrStatusUnavailable so the caller can fall back to safe defaults.
func (s *Service) ServicesStatus(ctx context.Context) (api.Entitlements, error) {
	env, err := s.c.FetchWithAuth(ctx, "services-status", nil, client.Silent())
	if err != nil {
		return api.Entitlements{}, ErrStatusUnavailable.Err(err)
	}
	if !env.OK() {
		return api.Entitlements{}, ErrStatusUnavailable
	}
	var ent api.Entitlements
	if err := env.DecodeData(&ent); err != nil {
		return api.Entitlements{}, ErrStatusUnavailable.Err(err)
	}
	return ent, nil
}

// ProfilePictureURL fetches the user's profile picture URL. Silent; used
// as a best-effort decoration after login and bootstrap.
func (s *Service) ProfilePictureURL(ctx context.Context) (string, error) {
	env, err := s.c.FetchWithAuth(ctx, "profile", nil, client.Silent())
	if err != nil {
		return "", err
	}
	if !env.OK() {
		return "", nil
	}
	return gjson.GetBytes(env.Raw, "data.profile_picture_url").String(), nil
}

// UploadProfilePicture uploads a new profile picture as multipart data.
func (s *Service) UploadProfilePicture(ctx context.Context, filename string, data []byte) (*api.Envelope, error) {
	body := client.Multipart(
		client.Part{Field: "picture", Filename: filename, Data: data},
	)
	return s.c.FetchWithAuth(ctx, "profile-picture", body)
}

// Appointments lists the user's appointments.
func (s *Service) Appointments(ctx context.Context, opts ...client.RequestOption) ([]api.Appointment, error) {
	env, err := s.c.FetchWithAuth(ctx, "appointments", nil, opts...)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, nil
	}
	var appts []api.Appointment
	if err := env.DecodeData(&appts); err != nil {
		return nil, client.ErrServer.Err(err)
	}
	return appts, nil
}

// ChatMessages fetches the general advisory chat thread, oldest first.
func (s *Service) ChatMessages(ctx context.Context, opts ...client.RequestOption) ([]api.Message, error) {
	return s.fetchMessages(ctx, "advisory-chat", nil, opts...)
}

// SendChatMessage submits a message to the advisory chat. On success it
// returns the optimistic entry to append locally: a client-side Message
// with a locally generated ID and the current timestamp, shown until the
// next reconciling fetch supersedes it.
func (s *Service) SendChatMessage(ctx context.Context, body string) (*api.Message, error) {
	return s.sendMessage(ctx, "advisory-chat-send", "", body)
}

// AppointmentMessages fetches the chat thread of one appointment.
func (s *Service) AppointmentMessages(ctx context.Context, appointmentID string, opts ...client.RequestOption) ([]api.Message, error) {
	fields := url.Values{}
	fields.Set("appointment_id", appointmentID)
	return s.fetchMessages(ctx, "appointment-chat", fields, opts...)
}

// SendAppointmentMessage submits a message to an appointment chat,
// returning the optimistic entry on success.
func (s *Service) SendAppointmentMessage(ctx context.Context, appointmentID, body string) (*api.Message, error) {
	return s.sendMessage(ctx, "appointment-chat-send", appointmentID, body)
}

func (s *Service) fetchMessages(ctx context.Context, endpoint string, fields url.Values, opts ...client.RequestOption) ([]api.Message, error) {
	var body client.RequestBody
	if fields != nil {
		body = client.Form(fields)
	}
	env, err := s.c.FetchWithAuth(ctx, endpoint, body, opts...)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, nil
	}
	var msgs []api.Message
	if err := env.DecodeData(&msgs); err != nil {
		return nil, client.ErrServer.Err(err)
	}
	return msgs, nil
}

func (s *Service) sendMessage(ctx context.Context, endpoint, appointmentID, body string) (*api.Message, error) {
	fields := url.Values{}
	fields.Set("message", body)
	if appointmentID != "" {
		fields.Set("appointment_id", appointmentID)
	}

	env, err := s.c.FetchWithAuth(ctx, endpoint, client.Form(fields))
	if err != nil {
		return nil, ErrSubmitFailed.Err(err)
	}
	if !env.OK() {
		return nil, ErrSubmitFailed
	}

	return &api.Message{
		ID:        feed.NewLocalID(),
		ThreadID:  appointmentID,
		Sender:    "me",
		Body:      body,
		CreatedAt: time.Now().Format(time.RFC3339),
		Mine:      true,
	}, nil
}

// Notifications lists the user's notifications, oldest first.
func (s *Service) Notifications(ctx context.Context, opts ...client.RequestOption) ([]api.Notification, error) {
	env, err := s.c.FetchWithAuth(ctx, "notifications", nil, opts...)
	if err != nil {
		return nil, err
	}
	if !env.OK() {
		return nil, nil
	}
	var list []api.Notification
	if err := env.DecodeData(&list); err != nil {
		return nil, client.ErrServer.Err(err)
	}
	return list, nil
}

// MarkNotificationRead marks a single notification as read. Silent; the
// caller refetches the list to reconcile.
func (s *Service) MarkNotificationRead(ctx context.Context, id string) error {
	fields := url.Values{}
	fields.Set("notification_id", id)
	_, err := s.c.FetchWithAuth(ctx, "notification-read", client.Form(fields), client.Silent())
	return err
}

// RegisterPush registers a push-notification token for this account.
// Silent; the session layer calls it fire-and-forget after login.
func (s *Service) RegisterPush(ctx context.Context, pushToken string) error {
	fields := url.Values{}
	fields.Set("push_token", pushToken)
	env, err := s.c.FetchWithAuth(ctx, "push-register", client.Form(fields), client.Silent())
	if err != nil {
		return err
	}
	if env != nil && !env.OK() {
		return ErrSubmitFailed.New("push registration rejected")
	}
	return nil
}
