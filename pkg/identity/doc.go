// Package identity gives every browser a stable push user id.
//
// Middleware issues a signed, random device key cookie. A Store maps device
// keys to user ids: MemoryStore for a single process, RedisStore or
// PostgresStore when ids must survive restarts. PostgresStore ships its schema
// as embedded goose migrations (Migrations, MigrationsDir). Resolver binds a store to one key and is what the
// onboarding orchestrator calls, lazily, the first time a subscription is
// requested.
//
//	r.Use(identity.Middleware(cookies))
//	...
//	key, _ := identity.FromContext(r.Context())
//	o := onboarding.New(info, identity.NewResolver(store, key), provider)
package identity
