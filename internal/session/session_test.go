package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advisio/advisio/internal/clienttest"
	"github.com/advisio/advisio/internal/credstore"
	"github.com/advisio/advisio/pkg/api"
)

// fakePlatform is a canned PlatformAPI for manager tests.
type fakePlatform struct {
	ent        api.Entitlements
	entErr     error
	pictureURL string
	pictureErr error
	pushErr    error
	registered chan string
}

func (f *fakePlatform) ServicesStatus(ctx context.Context) (api.Entitlements, error) {
	return f.ent, f.entErr
}

func (f *fakePlatform) ProfilePictureURL(ctx context.Context) (string, error) {
	return f.pictureURL, f.pictureErr
}

func (f *fakePlatform) RegisterPush(ctx context.Context, pushToken string) error {
	if f.registered != nil {
		f.registered <- pushToken
	}
	return f.pushErr
}

func TestBootstrapWithoutToken(t *testing.T) {
	m := New(clienttest.NewMemStore(), &fakePlatform{})
	assert.Equal(t, StateUnknown, m.Snapshot().State)
	assert.False(t, m.Ready())

	m.Bootstrap(context.Background())

	snap := m.Snapshot()
	assert.Equal(t, StateUnauthenticated, snap.State)
	assert.False(t, snap.Authenticated)
	assert.True(t, snap.Ready)
}

func TestBootstrapWithToken(t *testing.T) {
	store := clienttest.NewMemStore()
	store.Save(credstore.KeyAuthToken, "T123")

	platform := &fakePlatform{
		ent:        api.Entitlements{HasServicesEnabled: true, HasAdvisory: true},
		pictureURL: "https://cdn.example.com/p.png",
	}
	m := New(store, platform)
	m.Bootstrap(context.Background())

	snap := m.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.True(t, snap.Ready)
	assert.True(t, snap.Entitlements.HasServicesEnabled)
	assert.Equal(t, "https://cdn.example.com/p.png", snap.ProfilePictureURL)
}

func TestBootstrapToleratesDecorationFailure(t *testing.T) {
	store := clienttest.NewMemStore()
	store.Save(credstore.KeyAuthToken, "T123")

	platform := &fakePlatform{
		entErr:     errors.New("status down"),
		pictureErr: errors.New("picture down"),
	}
	m := New(store, platform)
	m.Bootstrap(context.Background())

	// failures are tolerated and do not block the transition
	snap := m.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.True(t, snap.Ready)
	assert.Equal(t, api.Entitlements{}, snap.Entitlements)
}

func TestLoginLogout(t *testing.T) {
	store := clienttest.NewMemStore()
	m := New(store, &fakePlatform{ent: api.Entitlements{HasAdvisory: true}})
	m.Bootstrap(context.Background())
	require.False(t, m.Authenticated())

	require.NoError(t, m.Login(context.Background(), "T123"))
	assert.True(t, m.Authenticated())
	got, ok := store.Get(credstore.KeyAuthToken)
	require.True(t, ok)
	assert.Equal(t, "T123", got)
	assert.True(t, m.Snapshot().Entitlements.HasAdvisory)

	m.Logout()
	assert.False(t, m.Authenticated())
	_, ok = store.Get(credstore.KeyAuthToken)
	assert.False(t, ok)
	assert.Equal(t, api.Entitlements{}, m.Snapshot().Entitlements)
}

type failingStore struct {
	*clienttest.MemStore
}

func (f *failingStore) Save(key, value string) bool { return false }

func TestLoginPersistFailure(t *testing.T) {
	m := New(&failingStore{clienttest.NewMemStore()}, &fakePlatform{})
	m.Bootstrap(context.Background())

	err := m.Login(context.Background(), "T123")
	require.ErrorIs(t, err, ErrTokenPersist)
	assert.False(t, m.Authenticated())
}

func TestRefreshServicesStatusResetsOnFailure(t *testing.T) {
	store := clienttest.NewMemStore()
	store.Save(credstore.KeyAuthToken, "T123")

	platform := &fakePlatform{ent: api.Entitlements{HasServicesEnabled: true, HasAdvisory: true}}
	m := New(store, platform)
	m.Bootstrap(context.Background())
	require.True(t, m.Snapshot().Entitlements.HasAdvisory)

	// no stale values survive a failed refresh
	platform.entErr = errors.New("status down")
	m.RefreshServicesStatus(context.Background())
	assert.Equal(t, api.Entitlements{}, m.Snapshot().Entitlements)
}

func TestHandleSessionExpiry(t *testing.T) {
	store := clienttest.NewMemStore()
	store.Save(credstore.KeyAuthToken, "T123")
	m := New(store, &fakePlatform{})
	m.Bootstrap(context.Background())
	require.True(t, m.Authenticated())

	m.HandleSessionExpiry()
	assert.False(t, m.Authenticated())
	_, ok := store.Get(credstore.KeyAuthToken)
	assert.False(t, ok)
}

func TestLoginRegistersPushToken(t *testing.T) {
	store := clienttest.NewMemStore()
	store.Save(credstore.KeyPushToken, "PT-9")

	platform := &fakePlatform{registered: make(chan string, 1)}
	m := New(store, platform)
	m.Bootstrap(context.Background())

	require.NoError(t, m.Login(context.Background(), "T123"))
	select {
	case token := <-platform.registered:
		assert.Equal(t, "PT-9", token)
	case <-time.After(2 * time.Second):
		t.Fatal("push registration never happened")
	}
}

func TestLoginWithoutPushTokenSkipsRegistration(t *testing.T) {
	platform := &fakePlatform{registered: make(chan string, 1)}
	m := New(clienttest.NewMemStore(), platform)
	m.Bootstrap(context.Background())

	require.NoError(t, m.Login(context.Background(), "T123"))
	select {
	case <-platform.registered:
		t.Fatal("unexpected push registration")
	case <-time.After(100 * time.Millisecond):
	}
}
