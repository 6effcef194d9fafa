package onboarding

import (
	"context"
	"time"

	"github.com/dmitrymomot/pushgate/pkg/device"
)

// IdentityResolver returns the push user id for the current session, creating
// it if needed. Implementations must be idempotent.
type IdentityResolver interface {
	UserID(ctx context.Context) (string, error)
}

// IdentityFunc adapts a function to IdentityResolver.
type IdentityFunc func(ctx context.Context) (string, error)

func (f IdentityFunc) UserID(ctx context.Context) (string, error) { return f(ctx) }

// Subscriber registers a user with the push provider.
type Subscriber interface {
	Subscribe(ctx context.Context, userID string) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, userID string) error

func (f SubscriberFunc) Subscribe(ctx context.Context, userID string) error { return f(ctx, userID) }

// SupportPolicy decides once, at construction, whether push can work on the
// device at all. installGated is true when the device must first be installed
// to the home screen.
type SupportPolicy func(info device.Info, installGated bool) bool

// DefaultSupportPolicy treats a device as unsupported only when the client
// reported no Push API and installing the app would not change that. iOS hides
// the Push API from browser tabs, so a gated device is always supported.
func DefaultSupportPolicy(info device.Info, installGated bool) bool {
	return installGated || info.PushAPI != device.PushAPIMissing
}

// AlwaysSupported never reports a device as unsupported.
func AlwaysSupported(device.Info, bool) bool { return true }

// Attempt outcomes reported to a Recorder.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeStale   = "stale"
)

// Recorder observes finished attempts. It must be safe for concurrent use.
type Recorder interface {
	ObserveAttempt(outcome string, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAttempt(string, time.Duration) {}
