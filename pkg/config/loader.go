package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Validator is implemented by configs that check themselves after parsing.
type Validator interface {
	Validate() error
}

type options struct {
	files    []string
	optional bool
	prefix   string
	values   map[string]string
}

// Option configures Load.
type Option func(*options)

// WithEnvFiles reads dotenv files before parsing. Real environment variables
// win over file values, and earlier files win over later ones.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) { o.files = append(o.files, paths...) }
}

// WithOptionalEnvFiles is WithEnvFiles that skips files that do not exist.
func WithOptionalEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.files = append(o.files, paths...)
		o.optional = true
	}
}

// WithPrefix prepends prefix to every variable name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithValues overrides individual variables; mostly for tests.
func WithValues(values map[string]string) Option {
	return func(o *options) {
		if o.values == nil {
			o.values = make(map[string]string, len(values))
		}
		maps.Copy(o.values, values)
	}
}

// Load parses a T from the environment using its env struct tags and runs
// Validate when T implements Validator.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config](config.WithOptionalEnvFiles(".env"))
func Load[T any](opts ...Option) (T, error) {
	var zero T

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	environ, err := o.environment()
	if err != nil {
		return zero, err
	}

	cfg, err := env.ParseAsWithOptions[T](env.Options{
		Environment: environ,
		Prefix:      o.prefix,
	})
	if err != nil {
		return zero, errors.Join(ErrParsingConfig, err)
	}

	if v, ok := any(&cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return zero, errors.Join(ErrInvalidConfig, err)
		}
	}

	return cfg, nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

func (o *options) environment() (map[string]string, error) {
	result := make(map[string]string)

	for i := len(o.files) - 1; i >= 0; i-- {
		values, err := godotenv.Read(o.files[i])
		if err != nil {
			if o.optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Join(ErrEnvFile, err)
		}
		maps.Copy(result, values)
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			result[k] = v
		}
	}
	maps.Copy(result, o.values)
	return result, nil
}
