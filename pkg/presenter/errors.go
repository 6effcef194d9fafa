package presenter

import "errors"

var ErrInvalidGates = errors.New("invalid gate rules")
