package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/pushgate/pkg/clientip"
	"github.com/dmitrymomot/pushgate/pkg/cookie"
	"github.com/dmitrymomot/pushgate/pkg/device"
	"github.com/dmitrymomot/pushgate/pkg/httpserver"
	"github.com/dmitrymomot/pushgate/pkg/identity"
	"github.com/dmitrymomot/pushgate/pkg/logger"
	"github.com/dmitrymomot/pushgate/pkg/metrics"
	"github.com/dmitrymomot/pushgate/pkg/onboarding"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/qrcode"
	"github.com/dmitrymomot/pushgate/pkg/ratelimiter"
	"github.com/dmitrymomot/pushgate/pkg/requestid"
)

// Server is the HTTP surface of the onboarding flow. Each browser gets one
// onboarding session, keyed by its device key cookie.
type Server struct {
	registry   *onboarding.Registry
	store      identity.Store
	subscriber onboarding.Subscriber
	cookies    *cookie.Manager

	selector      *presenter.Selector
	policy        onboarding.SupportPolicy
	logger        *slog.Logger
	publicURL     string
	title         string
	cookieName    string
	callTimeout   time.Duration
	streamTimeout time.Duration
	checks        []httpserver.Check
	limiter       *ratelimiter.Bucket
	trustProxy    bool
	metrics       *metrics.Metrics
}

func New(registry *onboarding.Registry, store identity.Store, subscriber onboarding.Subscriber, cookies *cookie.Manager, opts ...Option) (*Server, error) {
	switch {
	case registry == nil:
		return nil, ErrNilRegistry
	case store == nil:
		return nil, ErrNilStore
	case subscriber == nil:
		return nil, ErrNilSubscriber
	case cookies == nil:
		return nil, ErrNilCookies
	}

	s := &Server{
		registry:      registry,
		store:         store,
		subscriber:    subscriber,
		cookies:       cookies,
		selector:      presenter.NewSelector(),
		policy:        onboarding.DefaultSupportPolicy,
		logger:        logger.Nop(),
		title:         DefaultTitle,
		callTimeout:   onboarding.DefaultCallTimeout,
		streamTimeout: DefaultStreamTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("web"))
	return s, nil
}

// Routes returns the router:
//
//	GET  /health     liveness or readiness
//	GET  /qr.png     hand-off QR code
//	GET  /metrics    Prometheus metrics, when enabled
//	GET  /           onboarding page
//	GET  /directive  current directive (Datastar patch or JSON)
//	POST /subscribe  start an attempt (Datastar stream or JSON)
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware(s.trustProxy), s.recoverer, s.logRequests)

	r.Get("/health", httpserver.HealthCheckHandler(s.logger, 2*time.Second, s.checks...))
	r.Get("/qr.png", qrcode.Handler(s.handoffURL, s.logger))
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(identity.Middleware(s.cookies, identity.WithCookieName(s.cookieName), identity.WithLogger(s.logger)))

		r.Get("/", s.wrap("page", s.page))
		r.Get("/directive", s.wrap("directive", s.directive))
		r.With(s.limitSubscribe).Post("/subscribe", s.wrap("subscribe", s.subscribe))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, "not_found", HTTPError{Code: http.StatusNotFound, Message: http.StatusText(http.StatusNotFound)})
	})
	return r
}

// session returns the browser's onboarding session, creating it from the
// request signals on first use. With reprobe set, a session whose device
// snapshot no longer matches the request is replaced, unless an attempt is in
// flight: every page load probes the device again through /directive.
func (s *Server) session(r *http.Request, reprobe bool) (*onboarding.Orchestrator, error) {
	key, ok := identity.FromContext(r.Context())
	if !ok {
		return nil, internal(identity.ErrNoDeviceKey)
	}

	probe := device.NewProbe(device.SignalsFromRequest(r))
	var outdated func(*onboarding.Orchestrator) bool
	if reprobe {
		outdated = func(o *onboarding.Orchestrator) bool {
			if o.Info() == probe.Detect() {
				return false
			}
			s.logger.InfoContext(r.Context(), "device changed, replacing onboarding session",
				logger.Device(probe.Detect().Identifier),
				logger.Status(o.State().Status.String()),
			)
			return true
		}
	}

	o, err := s.registry.GetOrReplace(key, outdated, func() (*onboarding.Orchestrator, error) {
		info := probe.Detect()
		s.logger.InfoContext(r.Context(), "onboarding session created",
			logger.Device(info.Identifier),
			slog.String("os", info.DisplayOS()),
			slog.Bool("standalone", info.Standalone),
		)
		opts := []onboarding.Option{
			onboarding.WithSelector(s.selector),
			onboarding.WithSupportPolicy(s.policy),
			onboarding.WithCallTimeout(s.callTimeout),
			onboarding.WithLogger(s.logger.With(logger.DeviceKey(key))),
		}
		if s.metrics != nil {
			opts = append(opts, onboarding.WithRecorder(s.metrics))
		}
		return onboarding.New(info, identity.NewResolver(s.store, key), s.subscriber, opts...), nil
	})
	if errors.Is(err, onboarding.ErrRegistryFull) {
		return nil, HTTPError{Code: http.StatusServiceUnavailable, Message: serverBusy, Err: err}
	}
	return o, err
}

func (s *Server) handoffURL(r *http.Request) string {
	if s.publicURL != "" {
		return s.publicURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/"
}

func (s *Server) limitSubscribe(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	key := ratelimiter.FirstKey(
		func(r *http.Request) string {
			k, _ := identity.FromContext(r.Context())
			return k
		},
		func(r *http.Request) string {
			if ip := clientip.FromContext(r.Context()); ip != "" {
				return "ip:" + ip
			}
			return ""
		},
	)
	return ratelimiter.Middleware(s.limiter, key,
		ratelimiter.WithLogger(s.logger),
		ratelimiter.WithFailOpen(),
		ratelimiter.WithDeniedHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.metrics.ObserveRateLimited()
			s.fail(w, r, "subscribe", HTTPError{Code: http.StatusTooManyRequests, Message: tooManyAttempts})
		})),
	)(next)
}
