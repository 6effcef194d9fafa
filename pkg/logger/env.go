package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Env names a deployment environment.
type Env string

const (
	Development Env = "development"
	Staging     Env = "staging"
	Production  Env = "production"
)

// ParseEnv maps APP_ENV values, including the short aliases, to an Env.
// Anything unrecognized is treated as development.
func ParseEnv(s string) Env {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}

// ParseLevel converts a LOG_LEVEL value to a slog.Level, falling back to fallback
// for empty or unknown input.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return fallback
	}
	return l
}

func withEnv(env Env, service string, level slog.Level, format Format) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		c.level = level
		c.format = format
		if c.output == nil {
			c.output = os.Stdout
		}
		c.attrs = append(c.attrs,
			slog.String("service", service),
			slog.String("env", string(env)),
		)
	}
}

// WithDevelopment uses text output at debug level.
func WithDevelopment(service string) Option {
	return withEnv(Development, service, slog.LevelDebug, FormatText)
}

// WithStaging uses JSON output at info level.
func WithStaging(service string) Option {
	return withEnv(Staging, service, slog.LevelInfo, FormatJSON)
}

// WithProduction uses JSON output at info level.
func WithProduction(service string) Option {
	return withEnv(Production, service, slog.LevelInfo, FormatJSON)
}

// WithEnvironment picks the defaults for env (see ParseEnv).
func WithEnvironment(env string, service string) Option {
	switch ParseEnv(env) {
	case Production:
		return WithProduction(service)
	case Staging:
		return WithStaging(service)
	default:
		return WithDevelopment(service)
	}
}
