package ratelimiter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pushgate/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testConfig = ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: 10 * time.Second}

func newBucket(t *testing.T) (*ratelimiter.Bucket, *clock, *ratelimiter.MemoryStore) {
	t.Helper()
	c := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(c.Now))
	t.Cleanup(func() { _ = store.Close() })

	b, err := ratelimiter.NewBucket(store, testConfig)
	require.NoError(t, err)
	return b, c, store
}

func TestNewBucketValidates(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore()
	for _, cfg := range []ratelimiter.Config{
		{Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		{Capacity: 1, RefillRate: 1},
	} {
		_, err := ratelimiter.NewBucket(store, cfg)
		require.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
	}
}

func TestBucketBurstAndRefill(t *testing.T) {
	t.Parallel()

	b, c, _ := newBucket(t)
	ctx := context.Background()

	for i := 2; i >= 0; i-- {
		res, err := b.Allow(ctx, "device")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, i, res.Remaining)
	}

	res, err := b.Allow(ctx, "device")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 10*time.Second, res.RetryAfter(c.Now()))

	// Denied requests do not consume.
	res, err = b.Status(ctx, "device")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Remaining)

	c.Advance(10 * time.Second)
	res, err = b.Allow(ctx, "device")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)

	c.Advance(time.Hour)
	res, err = b.Status(ctx, "device")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining, "refill is capped at capacity")

	other, err := b.Allow(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 2, other.Remaining, "keys are independent")
}

func TestBucketAllowN(t *testing.T) {
	t.Parallel()

	b, _, store := newBucket(t)
	ctx := context.Background()

	_, err := b.AllowN(ctx, "k", 0)
	require.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)

	res, err := b.AllowN(ctx, "k", 4)
	require.NoError(t, err)
	assert.False(t, res.Allowed())

	require.NoError(t, b.Reset(ctx, "k"))
	assert.Equal(t, 0, store.Len())
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	b, c, _ := newBucket(t)
	var served int
	h := ratelimiter.Middleware(b,
		ratelimiter.FirstKey(
			func(r *http.Request) string { return r.Header.Get("X-Device") },
			func(r *http.Request) string { return "ip:" + r.RemoteAddr },
		),
		ratelimiter.WithNow(c.Now),
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { served++ }))

	call := func(device string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/subscribe", nil)
		if device != "" {
			r.Header.Set("X-Device", device)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	for range 3 {
		rec := call("a")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := call("a")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "10", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, call("b").Code)
	assert.Equal(t, http.StatusOK, call("").Code, "falls back to the address key")
	assert.Equal(t, 5, served)

	c.Advance(10 * time.Second)
	assert.Equal(t, http.StatusOK, call("a").Code)
}

type brokenStore struct{}

func (brokenStore) ConsumeTokens(context.Context, string, int, ratelimiter.Config) (int, time.Time, error) {
	return 0, time.Time{}, ratelimiter.ErrStoreUnavailable
}

func (brokenStore) Reset(context.Context, string) error { return ratelimiter.ErrStoreUnavailable }

func TestMiddlewareStoreFailure(t *testing.T) {
	t.Parallel()

	b, err := ratelimiter.NewBucket(brokenStore{}, testConfig)
	require.NoError(t, err)
	key := func(*http.Request) string { return "k" }
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	ratelimiter.Middleware(b, key)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	ratelimiter.Middleware(b, key, ratelimiter.WithFailOpen())(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMemoryStoreCleanup(t *testing.T) {
	t.Parallel()

	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanup(5*time.Millisecond, time.Millisecond))
	defer store.Close()

	_, _, err := store.ConsumeTokens(context.Background(), "k", 1, testConfig)
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, store.Close())
}
