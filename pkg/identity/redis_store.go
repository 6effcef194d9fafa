package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "pushgate:identity:"

// RedisStore keeps ids in Redis so they survive restarts and are shared
// between instances. With a TTL, every lookup extends the key's lifetime.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type RedisOption func(*RedisStore)

func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithTTL expires ids not looked up for d. Zero keeps them forever.
func WithTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate claims key with SET NX. If another caller got there first, the
// stored id is returned instead.
func (s *RedisStore) GetOrCreate(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	k := s.prefix + key

	// Two rounds cover a key that expires between SETNX and GET.
	for range 2 {
		id := uuid.NewString()
		created, err := s.client.SetNX(ctx, k, id, s.ttl).Result()
		if err != nil {
			return "", errors.Join(ErrStoreUnavailable, err)
		}
		if created {
			return id, nil
		}

		existing, err := s.client.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return "", errors.Join(ErrStoreUnavailable, err)
		}

		if s.ttl > 0 {
			if err := s.client.Expire(ctx, k, s.ttl).Err(); err != nil {
				return "", errors.Join(ErrStoreUnavailable, err)
			}
		}
		return existing, nil
	}
	return "", ErrStoreUnavailable
}
