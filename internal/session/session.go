// Package session owns the process-wide authentication state: the token's
// presence, readiness of the initial load, and the server-derived
// entitlements. It is the only writer of the credential store's token key;
// the API client re-reads the token per request.
//
// The client's logout sentinel reaches this package through the expiry
// capability handed to the client at startup, so no screen needs its own
// session-expiry handling.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/advisio/advisio/internal/common/apperrors"
	"github.com/advisio/advisio/internal/credstore"
	"github.com/advisio/advisio/pkg/api"
)

// ErrTokenPersist reports that the credential store rejected the token
// write at login.
var ErrTokenPersist = apperrors.New("unable to persist auth token")

// State is the lifecycle state of the session.
type State int

const (
	// StateUnknown holds until the initial token load resolves.
	StateUnknown State = iota
	// StateUnauthenticated means no token is held.
	StateUnauthenticated
	// StateAuthenticated means a token is held and attached to requests.
	StateAuthenticated
)

// String returns the state label used in logs.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// PlatformAPI is the slice of the advisory service the manager depends on.
type PlatformAPI interface {
	ServicesStatus(ctx context.Context) (api.Entitlements, error)
	ProfilePictureURL(ctx context.Context) (string, error)
	RegisterPush(ctx context.Context, pushToken string) error
}

// Snapshot is a copy of the session state for consumers. Authenticated UI
// must not render before Ready.
type Snapshot struct {
	State             State
	Authenticated     bool
	Ready             bool
	Entitlements      api.Entitlements
	ProfilePictureURL string
}

// Manager is the session lifecycle state machine.
type Manager struct {
	mu                sync.Mutex
	state             State
	ready             bool
	entitlements      api.Entitlements
	profilePictureURL string

	store     credstore.CredentialStore
	api       PlatformAPI
	registrar Registrar
}

// Option configures a Manager at construction.
type Option func(*Manager)

// WithRegistrar replaces the push-notification registrar.
func WithRegistrar(r Registrar) Option {
	return func(m *Manager) {
		m.registrar = r
	}
}

// New creates a manager in StateUnknown. Call Bootstrap to resolve the
// initial state from the credential store.
func New(store credstore.CredentialStore, platform PlatformAPI, opts ...Option) *Manager {
	m := &Manager{
		state: StateUnknown,
		store: store,
		api:   platform,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registrar == nil {
		m.registrar = NewPushRegistrar(platform)
	}
	return m
}

// Bootstrap resolves the initial state from the stored token. With a token
// present the session becomes authenticated and the profile picture and
// entitlements are fetched best-effort; failures are logged and do not
// block the transition. Ready flips true exactly once, after this attempt
// completes either way.
func (m *Manager) Bootstrap(ctx context.Context) {
	token, ok := m.store.Get(credstore.KeyAuthToken)
	if !ok || token == "" {
		m.setState(StateUnauthenticated)
		m.setReady()
		return
	}

	m.setState(StateAuthenticated)
	m.decorate(ctx)
	m.setReady()
}

// Login persists the token and transitions to authenticated. The profile
// picture and entitlements fetches are best-effort, and push registration
// runs fire-and-forget in the background.
func (m *Manager) Login(ctx context.Context, token string) error {
	if !m.store.Save(credstore.KeyAuthToken, token) {
		return ErrTokenPersist
	}
	m.setState(StateAuthenticated)
	m.setReady()
	m.decorate(ctx)

	if pushToken, ok := m.store.Get(credstore.KeyPushToken); ok && pushToken != "" {
		go func() {
			if err := m.registrar.Register(context.Background(), pushToken); err != nil {
				log.Warn().Err(err).Msg("push registration failed")
			}
		}()
	}
	return nil
}

// Logout wipes all stored credentials and clears in-memory profile and
// entitlement state. Also invoked by the client's logout sentinel through
// the expiry capability.
func (m *Manager) Logout() {
	m.store.ClearAll()

	m.mu.Lock()
	m.state = StateUnauthenticated
	m.ready = true
	m.entitlements = api.Entitlements{}
	m.profilePictureURL = ""
	m.mu.Unlock()

	log.Info().Msg("session ended")
}

// HandleSessionExpiry is the capability handed to the API client at
// startup. The server declared the session over; locally it is a logout.
func (m *Manager) HandleSessionExpiry() {
	m.Logout()
}

// RefreshServicesStatus refetches the entitlements. Idempotent and
// callable at any time while authenticated; on failure all three flags
// reset to their safe defaults rather than keeping stale values.
func (m *Manager) RefreshServicesStatus(ctx context.Context) {
	if !m.Authenticated() {
		m.setEntitlements(api.Entitlements{})
		return
	}

	ent, err := m.api.ServicesStatus(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("entitlements refresh failed, resetting to defaults")
		m.setEntitlements(api.Entitlements{})
		return
	}
	m.setEntitlements(ent)
}

// decorate runs the best-effort post-authentication fetches.
func (m *Manager) decorate(ctx context.Context) {
	if url, err := m.api.ProfilePictureURL(ctx); err == nil && url != "" {
		m.mu.Lock()
		m.profilePictureURL = url
		m.mu.Unlock()
	} else if err != nil {
		log.Warn().Err(err).Msg("profile picture fetch failed")
	}

	m.RefreshServicesStatus(ctx)
}

// Authenticated reports whether a session is active.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated
}

// Ready reports whether the initial token load has resolved.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ready
}

// Snapshot returns a copy of the session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:             m.state,
		Authenticated:     m.state == StateAuthenticated,
		Ready:             m.ready,
		Entitlements:      m.entitlements,
		ProfilePictureURL: m.profilePictureURL,
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	old := m.state
	m.state = s
	m.mu.Unlock()
	if old != s {
		log.Debug().Str("from", old.String()).Str("to", s.String()).Msg("session state changed")
	}
}

func (m *Manager) setReady() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = true
}

func (m *Manager) setEntitlements(ent api.Entitlements) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entitlements = ent
}
