package pg

import "errors"

var (
	ErrEmptyConnectionString   = errors.New("empty postgres connection string, set PG_CONN_URL")
	ErrFailedToParseDBConfig   = errors.New("failed to parse db config")
	ErrFailedToOpenConnection  = errors.New("failed to open db connection")
	ErrHealthcheckFailed       = errors.New("healthcheck failed, connection is not available")
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")
)
