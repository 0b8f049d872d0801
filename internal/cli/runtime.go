package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/advisio/advisio/internal/advisory"
	"github.com/advisio/advisio/internal/client"
	"github.com/advisio/advisio/internal/credstore"
	"github.com/advisio/advisio/internal/session"
)

// runtime is the wired-up application: credential store, API client,
// session manager, and advisory service sharing one expiry path.
type runtime struct {
	store credstore.CredentialStore
	mgr   *session.Manager
	svc   *advisory.Service
}

// terminalNotifier prints user notices to stderr with a severity color.
type terminalNotifier struct{}

func (terminalNotifier) Notify(kind client.NoticeKind, message string) {
	switch kind {
	case client.NoticeGuest:
		noticeLabel.Fprintf(os.Stderr, "Notice: %s\n", message)
	case client.NoticeConnectivity:
		errorLabel.Fprintf(os.Stderr, "Offline: %s\n", message)
	default:
		errorLabel.Fprintf(os.Stderr, "Error: %s\n", message)
	}
}

// newRuntime probes the credential store once, wires the client's expiry
// handler to the session manager, and resolves the persisted session.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg := GetConfig()
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}

	store, err := credstore.Select(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	// The manager does not exist yet when the client is built, so the
	// expiry handler closes over the variable rather than the value.
	var mgr *session.Manager
	c := client.New(cfg.GetServerURL(), store,
		client.WithNotifier(terminalNotifier{}),
		client.WithExpiryHandler(func() {
			if mgr != nil {
				mgr.HandleSessionExpiry()
			}
		}))

	svc := advisory.NewService(c)
	mgr = session.New(store, svc)
	mgr.Bootstrap(ctx)

	return &runtime{store: store, mgr: mgr, svc: svc}, nil
}

// fetchOpts maps the --silent flag to per-request options.
func fetchOpts() []client.RequestOption {
	if silentFetch {
		return []client.RequestOption{client.Silent()}
	}
	return nil
}
