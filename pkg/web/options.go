package web

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/pushgate/pkg/httpserver"
	"github.com/dmitrymomot/pushgate/pkg/metrics"
	"github.com/dmitrymomot/pushgate/pkg/onboarding"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/ratelimiter"
)

const (
	DefaultTitle         = "Enable notifications"
	DefaultStreamTimeout = 45 * time.Second
)

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithSelector(sel *presenter.Selector) Option {
	return func(s *Server) {
		if sel != nil {
			s.selector = sel
		}
	}
}

func WithSupportPolicy(p onboarding.SupportPolicy) Option {
	return func(s *Server) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithPublicURL sets the link encoded in the hand-off QR code. Without it the
// QR code is built from the request host.
func WithPublicURL(u string) Option {
	return func(s *Server) { s.publicURL = u }
}

func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// WithCallTimeout bounds each provider call made by a session.
func WithCallTimeout(d time.Duration) Option {
	return func(s *Server) { s.callTimeout = d }
}

// WithStreamTimeout bounds how long a subscribe request keeps streaming.
func WithStreamTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.streamTimeout = d
		}
	}
}

func WithCookieName(name string) Option {
	return func(s *Server) { s.cookieName = name }
}

// WithHealthChecks adds readiness checks to /health.
func WithHealthChecks(checks ...httpserver.Check) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

// WithSubscribeLimiter throttles POST /subscribe per device key, falling back
// to the client address.
func WithSubscribeLimiter(b *ratelimiter.Bucket) Option {
	return func(s *Server) { s.limiter = b }
}

// WithTrustProxy reads the client address from proxy headers.
func WithTrustProxy(trust bool) Option {
	return func(s *Server) { s.trustProxy = trust }
}

// WithMetrics records directives, throttled requests and attempt outcomes, and
// serves GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}
