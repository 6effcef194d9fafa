package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "pushgate"

// Metrics holds the collectors. Create it with New.
type Metrics struct {
	registry *prometheus.Registry

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	directives      *prometheus.CounterVec
	rateLimited     prometheus.Counter

	sessions  func() int
	dropped   func() uint64
	goRuntime bool
}

// Option configures Metrics.
type Option func(*Metrics)

// WithSessionCount exports a gauge reading the number of live sessions.
func WithSessionCount(fn func() int) Option {
	return func(m *Metrics) { m.sessions = fn }
}

// WithDroppedUpdates exports a counter reading how many directive updates
// slow stream readers missed.
func WithDroppedUpdates(fn func() uint64) Option {
	return func(m *Metrics) { m.dropped = fn }
}

// WithRuntimeCollectors adds the Go runtime and process collectors.
func WithRuntimeCollectors() Option {
	return func(m *Metrics) { m.goRuntime = true }
}

// New creates the collectors and registers them with reg.
func New(reg *prometheus.Registry, opts ...Option) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "subscription",
				Name:      "attempts_total",
				Help:      "Subscription attempts by outcome (success, error, stale)",
			},
			[]string{"outcome"},
		),
		attemptDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "subscription",
				Name:      "attempt_duration_seconds",
				Help:      "Time from starting an attempt to its result",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"outcome"},
		),
		directives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "web",
				Name:      "directives_served_total",
				Help:      "Directives rendered to clients by kind",
			},
			[]string{"kind"},
		),
		rateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "web",
				Name:      "subscribe_rate_limited_total",
				Help:      "Subscribe requests rejected by the rate limiter",
			},
		),
	}
	for _, opt := range opts {
		opt(m)
	}

	cs := []prometheus.Collector{m.attempts, m.attemptDuration, m.directives, m.rateLimited}
	if m.sessions != nil {
		sessions := m.sessions
		cs = append(cs, prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "onboarding",
				Name:      "sessions",
				Help:      "Onboarding sessions currently held in memory",
			},
			func() float64 { return float64(sessions()) },
		))
	}
	if m.dropped != nil {
		dropped := m.dropped
		cs = append(cs, prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "onboarding",
				Name:      "updates_dropped_total",
				Help:      "Directive updates discarded for slow stream readers",
			},
			func() float64 { return float64(dropped()) },
		))
	}
	if m.goRuntime {
		cs = append(cs,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, errors.Join(ErrRegister, err)
		}
	}
	return m, nil
}

// ObserveAttempt records a finished subscription attempt.
func (m *Metrics) ObserveAttempt(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
	m.attemptDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveDirective records a directive rendered to a client.
func (m *Metrics) ObserveDirective(kind string) {
	if m == nil {
		return
	}
	m.directives.WithLabelValues(kind).Inc()
}

// ObserveRateLimited records a throttled subscribe request.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
