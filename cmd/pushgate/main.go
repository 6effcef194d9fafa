package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/pushgate/pkg/clientip"
	"github.com/dmitrymomot/pushgate/pkg/config"
	"github.com/dmitrymomot/pushgate/pkg/cookie"
	"github.com/dmitrymomot/pushgate/pkg/httpserver"
	"github.com/dmitrymomot/pushgate/pkg/identity"
	"github.com/dmitrymomot/pushgate/pkg/logger"
	"github.com/dmitrymomot/pushgate/pkg/metrics"
	"github.com/dmitrymomot/pushgate/pkg/onboarding"
	"github.com/dmitrymomot/pushgate/pkg/pg"
	"github.com/dmitrymomot/pushgate/pkg/presenter"
	"github.com/dmitrymomot/pushgate/pkg/provider"
	"github.com/dmitrymomot/pushgate/pkg/ratelimiter"
	"github.com/dmitrymomot/pushgate/pkg/redis"
	"github.com/dmitrymomot/pushgate/pkg/requestid"
	"github.com/dmitrymomot/pushgate/pkg/web"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("pushgate stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, envFiles []string) error {
	cfg, err := config.Load[appConfig](config.WithOptionalEnvFiles(envFiles...))
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Name),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.Extractor, identity.Extractor, clientip.Extractor),
	)
	logger.SetAsDefault(log)
	dev := logger.ParseEnv(cfg.Env) == logger.Development

	selector, err := loadSelector(cfg.GatesFile)
	if err != nil {
		return err
	}

	cookies, err := newCookies(cfg.Cookie, dev, log)
	if err != nil {
		return err
	}

	subscriber, err := newSubscriber(cfg.Provider, dev, log)
	if err != nil {
		return err
	}

	var (
		store      identity.Store
		limitStore ratelimiter.Store
		checks     []httpserver.Check
		closers    []httpserver.Option
	)
	switch cfg.IdentityBackend {
	case backendRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		store = identity.NewRedisStore(client, identity.WithTTL(cfg.IdentityTTL))
		limitStore = ratelimiter.NewRedisStore(client, "")
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(client)})
		closers = append(closers, httpserver.WithShutdownHook("redis", func(context.Context) error { return client.Close() }))
	case backendPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Migrate(ctx, pool, identity.Migrations, identity.MigrationsDir, cfg.Postgres, log); err != nil {
			pool.Close()
			return err
		}
		pgStore := identity.NewPostgresStore(pool)
		go pruneIdentities(ctx, pgStore, cfg.IdentityTTL, log)
		store = pgStore
		checks = append(checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)})
		closers = append(closers, httpserver.WithShutdownHook("postgres", func(context.Context) error {
			pool.Close()
			return nil
		}))
	default:
		log.Warn("identity store is in memory, user ids are lost on restart")
		store = identity.NewMemoryStore()
	}
	if limitStore == nil {
		mem := ratelimiter.NewMemoryStore(ratelimiter.WithCleanup(time.Minute, time.Hour))
		limitStore = mem
		closers = append(closers, httpserver.WithShutdownHook("ratelimit", func(context.Context) error { return mem.Close() }))
	}

	siteOpts := []web.Option{
		web.WithLogger(log),
		web.WithSelector(selector),
		web.WithPublicURL(cfg.PublicURL),
		web.WithTitle(cfg.Title),
		web.WithCallTimeout(cfg.CallTimeout),
		web.WithStreamTimeout(cfg.StreamTimeout),
		web.WithTrustProxy(cfg.TrustProxy),
		web.WithHealthChecks(checks...),
	}
	if cfg.RateLimit {
		bucket, err := ratelimiter.NewBucket(limitStore, cfg.Limits)
		if err != nil {
			return err
		}
		siteOpts = append(siteOpts, web.WithSubscribeLimiter(bucket))
	}

	registry := onboarding.NewRegistry(cfg.SessionTTL, onboarding.WithMaxSessions(cfg.MaxSessions))
	go registry.Run(ctx, cfg.SweepInterval)

	if cfg.Metrics {
		m, err := metrics.New(prometheus.NewRegistry(),
			metrics.WithSessionCount(registry.Len),
			metrics.WithDroppedUpdates(registry.Dropped),
			metrics.WithRuntimeCollectors(),
		)
		if err != nil {
			return err
		}
		siteOpts = append(siteOpts, web.WithMetrics(m))
	}

	site, err := web.New(registry, store, subscriber, cookies, siteOpts...)
	if err != nil {
		return err
	}

	opts := append([]httpserver.Option{
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook("sessions", func(ctx context.Context) error {
			// Let running provider calls land before the sessions go away.
			err := registry.Drain(ctx)
			return errors.Join(err, registry.Close())
		}),
	}, closers...)

	log.InfoContext(ctx, "starting pushgate",
		slog.String("identity_backend", cfg.IdentityBackend),
		slog.Bool("metrics", cfg.Metrics),
		slog.Int("gates", len(selector.Gates())),
	)
	return httpserver.NewFromConfig(cfg.HTTP, opts...).Run(ctx, site.Routes())
}

// pruneIdentities drops device keys not seen within ttl, hourly.
func pruneIdentities(ctx context.Context, store *identity.PostgresStore, ttl time.Duration, log *slog.Logger) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		n, err := store.Prune(ctx, ttl)
		if err != nil {
			log.WarnContext(ctx, "identity prune failed", logger.Error(err))
		} else if n > 0 {
			log.InfoContext(ctx, "pruned stale identities", slog.Int64("count", n))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func loadSelector(path string) (*presenter.Selector, error) {
	if path == "" {
		return presenter.NewSelector(), nil
	}
	gates, err := presenter.LoadGates(path)
	if err != nil {
		return nil, fmt.Errorf("load gates: %w", err)
	}
	return presenter.NewSelector(gates...), nil
}

// newCookies signs device keys with COOKIE_SECRETS. Development falls back to
// a per-process secret, so device keys do not survive a restart there.
func newCookies(cfg cookie.Config, dev bool, log *slog.Logger) (*cookie.Manager, error) {
	if len(cfg.Secrets) == 0 {
		if !dev {
			return nil, errors.New("COOKIE_SECRETS is required outside development")
		}
		log.Warn("COOKIE_SECRETS not set, using a random secret")
		cfg.Secrets = []string{uuid.NewString() + uuid.NewString()}
	}
	return cookie.NewFromConfig(cfg)
}

// newSubscriber talks to PROVIDER_URL. Development without a provider accepts
// every subscription.
func newSubscriber(cfg provider.Config, dev bool, log *slog.Logger) (onboarding.Subscriber, error) {
	if cfg.Endpoint == "" && dev {
		log.Warn("PROVIDER_URL not set, subscriptions are accepted without a provider")
		return provider.Discard(), nil
	}
	return provider.NewHTTPSubscriber(cfg, provider.WithLogger(log))
}
