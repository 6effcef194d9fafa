package identity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dmitrymomot/pushgate/pkg/cookie"
	"github.com/dmitrymomot/pushgate/pkg/logger"
)

const DefaultCookieName = "pg_device"

type middlewareConfig struct {
	name   string
	logger *slog.Logger
}

type MiddlewareOption func(*middlewareConfig)

func WithCookieName(name string) MiddlewareOption {
	return func(c *middlewareConfig) {
		if name != "" {
			c.name = name
		}
	}
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Middleware makes sure every browser carries a signed device key cookie and
// puts the key in the request context. Missing, tampered or malformed cookies
// are replaced with a fresh random key.
func Middleware(cookies *cookie.Manager, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := middlewareConfig{name: DefaultCookieName, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := cookies.GetSigned(r, cfg.name)
			if err == nil {
				if _, perr := uuid.Parse(key); perr != nil {
					err = cookie.ErrInvalidFormat
				}
			}

			if err != nil {
				if !errors.Is(err, cookie.ErrCookieNotFound) {
					cfg.logger.WarnContext(r.Context(), "device key cookie rejected", logger.Error(err))
				}
				key = uuid.NewString()
				cookies.SetSigned(w, cfg.name, key)
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), key)))
		})
	}
}
