package provider

import (
	"errors"
	"fmt"
)

var (
	ErrMissingEndpoint = errors.New("provider: endpoint is required")
	ErrRequestFailed   = errors.New("provider: request failed")
	ErrEmptyUserID     = errors.New("provider: empty user id")
)

// Error is a non-2xx answer from the provider. Message is whatever the provider
// put in its JSON "error" or "message" field, possibly empty.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("provider: status %d: %s", e.Status, e.Message)
}

// UserMessage is the text shown to the user. Empty means the caller should
// fall back to its own generic message.
func (e *Error) UserMessage() string { return e.Message }

// Temporary reports whether retrying later may help.
func (e *Error) Temporary() bool {
	return e.Status == 429 || e.Status >= 500
}

func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
