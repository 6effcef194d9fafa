// Package ratelimiter implements a token bucket limiter with in-memory and
// Redis stores and an HTTP middleware.
//
// A bucket holds Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each request takes one token; a request that finds too few
// is denied without taking any.
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), ratelimiter.Config{
//		Capacity:       5,
//		RefillRate:     1,
//		RefillInterval: 10 * time.Second,
//	})
//	r.With(ratelimiter.Middleware(bucket, keyFn)).Post("/subscribe", h)
//
// RedisStore runs the same algorithm in a Lua script so several instances
// share one budget per key.
package ratelimiter
