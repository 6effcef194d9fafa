package subscription

import "errors"

var (
	// ErrNotBusy is reported to observers of discarded results when the
	// machine has no attempt in flight.
	ErrNotBusy = errors.New("no subscription attempt in flight")
	// ErrStaleAttempt marks a result that belongs to a superseded attempt.
	ErrStaleAttempt = errors.New("subscription attempt superseded")
	// ErrUnsupported is returned when a request is made on an unsupported platform.
	ErrUnsupported = errors.New("push notifications are not supported on this platform")
)
