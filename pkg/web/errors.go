package web

import (
	"errors"
	"net/http"
)

var (
	ErrNilRegistry   = errors.New("web: registry is required")
	ErrNilStore      = errors.New("web: identity store is required")
	ErrNilSubscriber = errors.New("web: subscriber is required")
	ErrNilCookies    = errors.New("web: cookie manager is required")
	ErrNilResponse   = errors.New("web: handler returned nil response")
)

const (
	tooManyAttempts = "Too many attempts. Please wait a moment and try again."
	serverBusy      = "We are handling too many visitors right now. Please try again shortly."
)

// HTTPError carries a status code and a client-safe message.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

func (e HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e HTTPError) Unwrap() error { return e.Err }

func badRequest(msg string) HTTPError {
	return HTTPError{Code: http.StatusBadRequest, Message: msg}
}

func internal(err error) HTTPError {
	return HTTPError{Code: http.StatusInternalServerError, Message: http.StatusText(http.StatusInternalServerError), Err: err}
}
