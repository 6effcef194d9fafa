package provider

import "time"

// Config describes the push provider's subscribe endpoint. An empty Endpoint
// is allowed in development; see cmd/pushgate.
type Config struct {
	Endpoint string        `env:"PROVIDER_URL"`
	APIKey   string        `env:"PROVIDER_API_KEY"`
	Timeout  time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
}
