package qrcode

import "errors"

var (
	ErrEmptyContent = errors.New("qrcode: content cannot be empty")
	ErrGenerate     = errors.New("qrcode: failed to generate image")
	ErrInvalidSize  = errors.New("qrcode: size out of range")
)
