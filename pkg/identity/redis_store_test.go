package identity_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/pushgate/pkg/identity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisClient(t *testing.T) *goredis.Client {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	opts, err := goredis.ParseURL(url)
	require.NoError(t, err)

	client := goredis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestRedisStore(t *testing.T) {
	client := redisClient(t)
	ctx := context.Background()
	prefix := "pushgate:test:" + uuid.NewString() + ":"

	store := identity.NewRedisStore(client, identity.WithPrefix(prefix), identity.WithTTL(time.Minute))
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})

	a, err := store.GetOrCreate(ctx, "device-1")
	require.NoError(t, err)
	b, err := store.GetOrCreate(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := store.GetOrCreate(ctx, "device-2")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	ttl, err := client.TTL(ctx, prefix+"device-1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = store.GetOrCreate(ctx, "")
	require.ErrorIs(t, err, identity.ErrEmptyKey)
}

func TestRedisStoreUnavailable(t *testing.T) {
	t.Parallel()

	client := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 50 * time.Millisecond})
	defer client.Close()

	_, err := identity.NewRedisStore(client).GetOrCreate(context.Background(), "k")
	require.ErrorIs(t, err, identity.ErrStoreUnavailable)
}
