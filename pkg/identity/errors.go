package identity

import "errors"

var (
	ErrEmptyKey         = errors.New("identity: empty device key")
	ErrStoreUnavailable = errors.New("identity: store unavailable")
	ErrNoDeviceKey      = errors.New("identity: no device key in context")
)
