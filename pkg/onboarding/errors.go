package onboarding

import "errors"

var (
	ErrIdentityUnavailable = errors.New("onboarding: user identity unavailable")
	ErrSessionNotFound     = errors.New("onboarding: session not found")
	ErrNilFactory          = errors.New("onboarding: session factory is nil")
	ErrRegistryFull        = errors.New("onboarding: session limit reached")
)

var errEmptyUserID = errors.New("empty user id")

// identityMessage is shown to the user when the identity collaborator fails.
const identityMessage = "We could not identify this browser. Please reload the page and try again."

type identityError struct {
	err error
}

func (e *identityError) Error() string       { return ErrIdentityUnavailable.Error() + ": " + e.err.Error() }
func (e *identityError) Unwrap() []error     { return []error{ErrIdentityUnavailable, e.err} }
func (e *identityError) UserMessage() string { return identityMessage }
