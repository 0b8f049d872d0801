package advisory_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisio/advisio/internal/advisory"
	"github.com/advisio/advisio/internal/client"
	"github.com/advisio/advisio/internal/clienttest"
	"github.com/advisio/advisio/internal/credstore"
	"github.com/advisio/advisio/pkg/api"
)

func newService(srv *clienttest.Server) (*advisory.Service, *clienttest.MemStore) {
	store := clienttest.NewMemStore()
	store.Save(credstore.KeyAuthToken, "T123")
	c := client.New(srv.URL, store, client.WithNotifier(&clienttest.NoticeRecorder{}))
	return advisory.NewService(c), store
}

func TestLogin(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("login", api.Envelope{
		Status: api.StatusOK,
		Data:   map[string]any{"auth_token": "T123"},
	})

	svc, _ := newService(srv)
	token, err := svc.Login(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "T123", token)

	reqs := srv.Requests("login")
	require.Len(t, reqs, 1)
	assert.Equal(t, "a@b.com", reqs[0].Form.Get("email"))
}

func TestLoginRejected(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("login", api.Envelope{
		Status:       "invalid_credentials",
		MessagePlain: "wrong password",
	})

	svc, _ := newService(srv)
	_, err := svc.Login(context.Background(), "a@b.com", "bad")
	require.ErrorIs(t, err, advisory.ErrAuthFailed)
	assert.Contains(t, err.Error(), "wrong password")
}

func TestActivate(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("activate", api.Envelope{
		Status: api.StatusOK,
		Data:   map[string]any{"auth_token": "T-activated"},
	})

	svc, _ := newService(srv)
	token, err := svc.Activate(context.Background(), "CODE1")
	require.NoError(t, err)
	assert.Equal(t, "T-activated", token)
}

func TestDashboard(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("app-dashboard", api.Envelope{
		Status: api.StatusOK,
		Data: map[string]any{
			"profile":              map[string]any{"name": "Ana", "email": "a@b.com"},
			"unread_notifications": 3,
		},
	})

	svc, _ := newService(srv)
	summary, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "Ana", summary.Profile.Name)
	assert.Equal(t, 3, summary.UnreadNotifications)
}

func TestDashboardFailureReturnsNoData(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("app-dashboard", api.Envelope{Status: "error", MessagePlain: "nope"})

	svc, _ := newService(srv)
	summary, err := svc.Dashboard(context.Background(), client.Silent())
	require.NoError(t, err)
	assert.Nil(t, summary)
}

func TestServicesStatus(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("services-status", api.Envelope{
		Status: api.StatusOK,
		Data: map[string]any{
			"has_services_enabled": true,
			"has_advisory":         true,
			"is_guest":             false,
		},
	})

	svc, _ := newService(srv)
	ent, err := svc.ServicesStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, ent.HasServicesEnabled)
	assert.True(t, ent.HasAdvisory)
}

func TestServicesStatusUnavailable(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("services-status", api.Envelope{Status: "error"})

	svc, _ := newService(srv)
	_, err := svc.ServicesStatus(context.Background())
	assert.ErrorIs(t, err, advisory.ErrStatusUnavailable)
}

func TestChatThreadRefreshAndSend(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("advisory-chat", api.Envelope{
		Status: api.StatusOK,
		Data: []any{
			map[string]any{"id": "m1", "sender": "advisor", "body": "hello"},
		},
	})
	srv.HandleStatic("advisory-chat-send", api.Envelope{Status: api.StatusOK})

	svc, _ := newService(srv)
	thread := svc.ChatThread()

	require.NoError(t, thread.Refresh(context.Background(), true))
	require.Len(t, thread.Messages(), 1)

	require.NoError(t, thread.Send(context.Background(), "hi there"))
	msgs := thread.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi there", msgs[1].Body)
	assert.True(t, msgs[1].Mine)
	assert.NotEmpty(t, msgs[1].ID)
	assert.Empty(t, thread.Draft())
}

func TestChatThreadReconcileSupersedesOptimistic(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	// the server list never catches up with the optimistic entry
	srv.HandleStatic("advisory-chat", api.Envelope{
		Status: api.StatusOK,
		Data: []any{
			map[string]any{"id": "m1", "sender": "advisor", "body": "hello"},
		},
	})
	srv.HandleStatic("advisory-chat-send", api.Envelope{Status: api.StatusOK})

	svc, _ := newService(srv)
	thread := svc.ChatThread()
	require.NoError(t, thread.Refresh(context.Background(), true))
	require.NoError(t, thread.Send(context.Background(), "pending"))
	require.Len(t, thread.Messages(), 2)

	// full-replace semantics: the unconfirmed entry disappears
	require.NoError(t, thread.Refresh(context.Background(), true))
	msgs := thread.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "m1", msgs[0].ID)
}

func TestChatThreadSendFailureRestoresDraft(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("advisory-chat-send", api.Envelope{
		Status:       "error",
		MessagePlain: "message too long",
	})

	svc, _ := newService(srv)
	thread := svc.ChatThread()

	err := thread.Send(context.Background(), "my long message")
	require.ErrorIs(t, err, advisory.ErrSubmitFailed)
	assert.Empty(t, thread.Messages())
	assert.Equal(t, "my long message", thread.Draft())
}

func TestAppointmentThread(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.Handle("appointment-chat", func(r *http.Request) any {
		if r.PostFormValue("appointment_id") != "appt-7" {
			return api.Envelope{Status: "error", MessagePlain: "unknown appointment"}
		}
		return api.Envelope{
			Status: api.StatusOK,
			Data: []any{
				map[string]any{"id": "m1", "thread_id": "appt-7", "sender": "advisor", "body": "see you at 10"},
			},
		}
	})
	srv.HandleStatic("appointment-chat-send", api.Envelope{Status: api.StatusOK})

	svc, _ := newService(srv)
	thread := svc.AppointmentThread("appt-7")
	require.NoError(t, thread.Refresh(context.Background(), false))
	require.Len(t, thread.Messages(), 1)

	require.NoError(t, thread.Send(context.Background(), "confirmed"))
	msgs := thread.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "appt-7", msgs[1].ThreadID)

	sendReqs := srv.Requests("appointment-chat-send")
	require.Len(t, sendReqs, 1)
	assert.Equal(t, "appt-7", sendReqs[0].Form.Get("appointment_id"))
	assert.Equal(t, "confirmed", sendReqs[0].Form.Get("message"))
}

func TestNotifications(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("notifications", api.Envelope{
		Status: api.StatusOK,
		Data: []any{
			map[string]any{"id": "n1", "title": "Welcome", "read": false},
			map[string]any{"id": "n2", "title": "Reminder", "read": true},
		},
	})

	svc, _ := newService(srv)
	list, err := svc.Notifications(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.False(t, list[0].Read)
	assert.True(t, list[1].Read)
}

func TestMarkNotificationRead(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("notification-read", api.Envelope{Status: api.StatusOK})

	svc, _ := newService(srv)
	require.NoError(t, svc.MarkNotificationRead(context.Background(), "n1"))

	reqs := srv.Requests("notification-read")
	require.Len(t, reqs, 1)
	assert.Equal(t, "n1", reqs[0].Form.Get("notification_id"))
}

func TestUploadProfilePicture(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.Handle("profile-picture", func(r *http.Request) any {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return api.Envelope{Status: "error", MessagePlain: err.Error()}
		}
		if len(r.MultipartForm.File["picture"]) != 1 {
			return api.Envelope{Status: "error", MessagePlain: "missing picture"}
		}
		return api.Envelope{Status: api.StatusOK}
	})

	svc, _ := newService(srv)
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	env, err := svc.UploadProfilePicture(context.Background(), "avatar.png", png)
	require.NoError(t, err)
	assert.True(t, env.OK())
}

func TestRegisterPush(t *testing.T) {
	srv := clienttest.New()
	defer srv.Close()
	srv.HandleStatic("push-register", api.Envelope{Status: api.StatusOK})

	svc, _ := newService(srv)
	require.NoError(t, svc.RegisterPush(context.Background(), "PT-1"))

	reqs := srv.Requests("push-register")
	require.Len(t, reqs, 1)
	assert.Equal(t, "PT-1", reqs[0].Form.Get("push_token"))
}
