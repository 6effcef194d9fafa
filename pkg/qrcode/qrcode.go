package qrcode

import (
	"encoding/base64"
	"errors"
	"image/color"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

// Level is the error correction level.
type Level = skipqrcode.RecoveryLevel

const (
	LevelLow     = skipqrcode.Low
	LevelMedium  = skipqrcode.Medium
	LevelHigh    = skipqrcode.High
	LevelHighest = skipqrcode.Highest
)

type options struct {
	size       int
	level      Level
	foreground color.Color
	background color.Color
	noBorder   bool
}

type Option func(*options)

// WithSize sets the image side in pixels, clamped to [MinSize, MaxSize].
// Non-positive values keep DefaultSize.
func WithSize(px int) Option {
	return func(o *options) {
		if px > 0 {
			o.size = min(max(px, MinSize), MaxSize)
		}
	}
}

func WithLevel(l Level) Option {
	return func(o *options) { o.level = l }
}

func WithColors(fg, bg color.Color) Option {
	return func(o *options) {
		if fg != nil {
			o.foreground = fg
		}
		if bg != nil {
			o.background = bg
		}
	}
}

// WithoutBorder drops the quiet zone around the code.
func WithoutBorder() Option {
	return func(o *options) { o.noBorder = true }
}

// PNG encodes content as a square PNG image.
func PNG(content string, opts ...Option) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	o := &options{
		size:       DefaultSize,
		level:      LevelMedium,
		foreground: color.Black,
		background: color.White,
	}
	for _, opt := range opts {
		opt(o)
	}

	q, err := skipqrcode.New(content, o.level)
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	q.ForegroundColor = o.foreground
	q.BackgroundColor = o.background
	q.DisableBorder = o.noBorder

	img, err := q.PNG(o.size)
	if err != nil {
		return nil, errors.Join(ErrGenerate, err)
	}
	return img, nil
}

// DataURI returns the PNG as a data: URI for an <img src>.
func DataURI(content string, opts ...Option) (string, error) {
	img, err := PNG(content, opts...)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img), nil
}
