package onboarding

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/pushgate/pkg/presenter"
)

const (
	DefaultBroadcastBuffer = 4
	DefaultCallTimeout     = 15 * time.Second
)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithSelector(s *presenter.Selector) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.selector = s
		}
	}
}

func WithSupportPolicy(p SupportPolicy) Option {
	return func(o *Orchestrator) {
		if p != nil {
			o.policy = p
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithBroadcastBuffer sets how many directives each Updates subscriber queues.
func WithBroadcastBuffer(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}

// WithCallTimeout bounds each call to the Subscriber. Zero or negative disables it.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// WithRecorder reports attempt outcomes and latency, e.g. to metrics.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}
