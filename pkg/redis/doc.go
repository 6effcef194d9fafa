// Package redis connects to Redis with go-redis and exposes a health probe.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	checks["redis"] = redis.Healthcheck(client)
//
// Config is read from REDIS_* environment variables. pushgate only needs
// Redis when IDENTITY_BACKEND=redis.
package redis
