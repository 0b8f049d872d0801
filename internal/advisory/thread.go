package advisory

import (
	"context"

	"github.com/advisio/advisio/internal/client"
	"github.com/advisio/advisio/internal/feed"
	"github.com/advisio/advisio/pkg/api"
)

// Thread binds a chat endpoint pair to a feed: the reconciling fetch that
// runs on every screen focus, and the submit that appends an optimistic
// entry on success. The same shape serves the advisory chat and each
// appointment chat.
type Thread struct {
	feed     *feed.Feed[api.Message]
	composer feed.Composer
	fetch    func(ctx context.Context, opts ...client.RequestOption) ([]api.Message, error)
	send     func(ctx context.Context, body string) (*api.Message, error)
}

// ChatThread returns the general advisory chat thread.
func (s *Service) ChatThread() *Thread {
	return &Thread{
		feed:  feed.New[api.Message](),
		fetch: s.ChatMessages,
		send:  s.SendChatMessage,
	}
}

// AppointmentThread returns the chat thread of one appointment.
func (s *Service) AppointmentThread(appointmentID string) *Thread {
	return &Thread{
		feed: feed.New[api.Message](),
		fetch: func(ctx context.Context, opts ...client.RequestOption) ([]api.Message, error) {
			return s.AppointmentMessages(ctx, appointmentID, opts...)
		},
		send: func(ctx context.Context, body string) (*api.Message, error) {
			return s.SendAppointmentMessage(ctx, appointmentID, body)
		},
	}
}

// Refresh performs the reconciling fetch and replaces the thread contents
// with server truth. Silent refreshes never raise user notices; the
// focus-triggered reload uses them.
func (t *Thread) Refresh(ctx context.Context, silent bool) error {
	var opts []client.RequestOption
	if silent {
		opts = append(opts, client.Silent())
	}
	msgs, err := t.fetch(ctx, opts...)
	if err != nil {
		return err
	}
	if msgs == nil {
		// nothing to reconcile: the call failed or the session ended
		return nil
	}
	t.feed.Reconcile(msgs)
	return nil
}

// Send submits the given text. On success the optimistic entry is
// appended immediately; on failure the text is restored to the composer
// and the error returned.
func (t *Thread) Send(ctx context.Context, text string) error {
	t.composer.Set(text)
	draft := t.composer.Take()

	msg, err := t.send(ctx, draft)
	if err != nil {
		t.composer.Restore(draft)
		return err
	}
	t.feed.Append(*msg)
	return nil
}

// Messages returns a snapshot of the thread, oldest first.
func (t *Thread) Messages() []api.Message {
	return t.feed.Entries()
}

// Draft returns the unsent composer text, restored there by a failed Send.
func (t *Thread) Draft() string {
	return t.composer.Draft()
}

// Subscribe exposes the feed's change notifications, used by chat views
// to scroll to the newest entry after the layout settles.
func (t *Thread) Subscribe() (<-chan feed.Change, func()) {
	return t.feed.Subscribe()
}
