package session

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

// Registrar registers a push-notification token with the platform after
// login. Registration is fire-and-forget: the session never blocks on it
// and failures are logged, not surfaced.
type Registrar interface {
	Register(ctx context.Context, pushToken string) error
}

// pushRegistrar registers through the platform API with a few bounded
// retries before giving up.
type pushRegistrar struct {
	api PlatformAPI
}

// NewPushRegistrar returns the default registrar over the platform API.
func NewPushRegistrar(platform PlatformAPI) Registrar {
	return &pushRegistrar{api: platform}
}

// Register attempts the registration up to three times.
func (r *pushRegistrar) Register(ctx context.Context, pushToken string) error {
	return retry.Do(
		func() error {
			return r.api.RegisterPush(ctx, pushToken)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}
