// Package config loads typed configuration from environment variables.
//
// Struct fields are described with github.com/caarlos0/env tags. Dotenv files
// are read with github.com/joho/godotenv and merged underneath the process
// environment, so a deployed service never gets its variables overridden by a
// stray .env file.
//
//	type AppConfig struct {
//		Env  string `env:"APP_ENV" envDefault:"development"`
//		HTTP httpserver.Config
//	}
//
//	cfg, err := config.Load[AppConfig](config.WithOptionalEnvFiles(".env"))
//
// A config type with a Validate() error method is validated after parsing;
// failures wrap ErrInvalidConfig.
package config
