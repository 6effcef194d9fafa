package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/pushgate/pkg/cookie"
	"github.com/dmitrymomot/pushgate/pkg/httpserver"
	"github.com/dmitrymomot/pushgate/pkg/pg"
	"github.com/dmitrymomot/pushgate/pkg/provider"
	"github.com/dmitrymomot/pushgate/pkg/ratelimiter"
	"github.com/dmitrymomot/pushgate/pkg/redis"
)

const (
	backendMemory   = "memory"
	backendRedis    = "redis"
	backendPostgres = "postgres"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	Name      string `env:"APP_NAME" envDefault:"pushgate"`
	LogLevel  string `env:"LOG_LEVEL"`
	PublicURL string `env:"PUBLIC_URL"`
	Title     string `env:"PAGE_TITLE"`
	GatesFile string `env:"GATES_FILE"`

	IdentityBackend string        `env:"IDENTITY_BACKEND" envDefault:"memory"`
	IdentityTTL     time.Duration `env:"IDENTITY_TTL" envDefault:"8760h"`

	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	MaxSessions   int           `env:"SESSION_MAX" envDefault:"10000"`
	CallTimeout   time.Duration `env:"SUBSCRIBE_CALL_TIMEOUT" envDefault:"15s"`
	StreamTimeout time.Duration `env:"SUBSCRIBE_STREAM_TIMEOUT" envDefault:"45s"`
	TrustProxy    bool          `env:"TRUST_PROXY"`
	RateLimit     bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Metrics       bool          `env:"METRICS_ENABLED" envDefault:"true"`

	HTTP     httpserver.Config
	Cookie   cookie.Config
	Redis    redis.Config
	Postgres pg.Config
	Provider provider.Config
	Limits   ratelimiter.Config
}

func (c *appConfig) Validate() error {
	var errs []error
	switch c.IdentityBackend {
	case backendMemory, backendRedis:
	case backendPostgres:
		if c.Postgres.ConnectionString == "" {
			errs = append(errs, errors.New("PG_CONN_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("IDENTITY_BACKEND must be %q, %q or %q, got %q",
			backendMemory, backendRedis, backendPostgres, c.IdentityBackend))
	}
	if c.StreamTimeout <= c.CallTimeout {
		errs = append(errs, errors.New("SUBSCRIBE_STREAM_TIMEOUT must exceed SUBSCRIBE_CALL_TIMEOUT"))
	}
	if c.MaxSessions < 0 {
		errs = append(errs, errors.New("SESSION_MAX must not be negative"))
	}
	if c.SessionTTL > 0 && c.SweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must be positive when SESSION_TTL is set"))
	}
	return errors.Join(errs...)
}
