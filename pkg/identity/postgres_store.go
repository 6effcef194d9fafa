package identity

import (
	"context"
	"embed"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Migrations holds the schema PostgresStore needs, for pg.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps ids in the device_identities table. Every lookup
// touches last_seen_at so Prune can drop abandoned devices.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const upsertIdentity = `
INSERT INTO device_identities (device_key, user_id)
VALUES ($1, $2)
ON CONFLICT (device_key) DO UPDATE SET last_seen_at = now()
RETURNING user_id`

// GetOrCreate inserts a fresh id for key or returns the one already stored.
// The upsert makes concurrent first lookups agree on a single id.
func (s *PostgresStore) GetOrCreate(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	var id string
	if err := s.db.QueryRow(ctx, upsertIdentity, key, uuid.NewString()).Scan(&id); err != nil {
		return "", errors.Join(ErrStoreUnavailable, err)
	}
	return id, nil
}

// Prune deletes ids not looked up within olderThan and returns how many were
// removed.
func (s *PostgresStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM device_identities WHERE last_seen_at < now() - make_interval(secs => $1)`,
		olderThan.Seconds(),
	)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return tag.RowsAffected(), nil
}
