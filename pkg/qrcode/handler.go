package qrcode

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/pushgate/pkg/logger"
)

// ContentFunc picks what to encode for a request.
type ContentFunc func(r *http.Request) string

// Handler serves the QR code for content(r) as image/png. A "size" query
// parameter overrides the default size.
func Handler(content ContentFunc, log *slog.Logger, opts ...Option) http.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		o := opts
		if raw := r.URL.Query().Get("size"); raw != "" {
			px, err := strconv.Atoi(raw)
			if err != nil || px < MinSize || px > MaxSize {
				http.Error(w, ErrInvalidSize.Error(), http.StatusBadRequest)
				return
			}
			o = append(o[:len(o):len(o)], WithSize(px))
		}

		img, err := PNG(content(r), o...)
		if err != nil {
			if errors.Is(err, ErrEmptyContent) {
				http.NotFound(w, r)
				return
			}
			log.ErrorContext(r.Context(), "qr code generation failed", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		_, _ = w.Write(img)
	}
}
