package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"primelab/internal/platform/config"
	"primelab/internal/platform/httpserver"
	"primelab/internal/platform/logger"
	platformmetrics "primelab/internal/platform/metrics"
	"primelab/internal/platform/postgres"
	"primelab/internal/platform/ratelimit"
	platformredis "primelab/internal/platform/redis"
	"primelab/internal/primality"
	"primelab/internal/primality/handler"
	"primelab/internal/primality/metrics"
	"primelab/internal/primality/service"
	"primelab/internal/primality/store/cache"
	"primelab/internal/primality/store/history"
	"primelab/pkg/platform/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	var classifierOpts []primality.Option
	if len(cfg.Witnesses) > 0 {
		classifierOpts = append(classifierOpts, primality.WithWitnesses(cfg.Witnesses))
	}
	classifier, err := primality.NewClassifier(classifierOpts...)
	if err != nil {
		return err
	}

	checks := map[string]healthCheck{}

	verdictCache, redisClient := buildCache(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient.Health
	}

	historyStore, db, err := buildHistory(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		checks["postgres"] = db.PingContext
	}

	svc, err := service.New(
		service.WithClassifier(classifier),
		service.WithCache(verdictCache),
		service.WithHistory(historyStore),
		service.WithLogger(log),
		service.WithMetrics(metrics.New(prometheus.DefaultRegisterer)),
	)
	if err != nil {
		return err
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Requests > 0 {
		limiter = ratelimit.NewLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		go pruneLimiter(ctx, limiter, cfg.RateLimit.Window)
	}

	router := newRouter(
		handler.New(svc, log, cfg.MaxDigits),
		limiter,
		cfg.TrustProxyHeaders,
		platformmetrics.New(prometheus.DefaultRegisterer),
		prometheus.DefaultGatherer,
		checks,
		log,
	)
	srv := httpserver.New(cfg.Addr, otelhttp.NewHandler(router, "primelab"))

	log.Info("starting primelab",
		"addr", cfg.Addr,
		"max_digits", cfg.MaxDigits,
		"classifier", classifier.Fingerprint(),
		"redis", redisClient != nil,
		"postgres", db != nil,
		"rate_limit", cfg.RateLimit.Requests,
		"trust_proxy_headers", cfg.TrustProxyHeaders,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// buildCache returns the in-memory cache, fronted by Redis when configured.
// A Redis that cannot be reached at startup is logged and skipped.
func buildCache(ctx context.Context, cfg config.Server, log *slog.Logger) (service.VerdictCache, *platformredis.Client) {
	memory := cache.NewInMemoryCache(cfg.Cache.TTL, cfg.Cache.Capacity)

	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, using in-memory verdict cache", "error", err)
		return memory, nil
	}
	if client == nil {
		return memory, nil
	}

	breaker := circuit.New("redis-verdict-cache")
	return cache.NewFallbackCache(cache.NewRedisCache(client.Client, cfg.Cache.TTL), memory, breaker, log), client
}

// buildHistory returns Postgres-backed history when a DSN is set, otherwise
// a bounded in-memory ring.
func buildHistory(ctx context.Context, cfg config.Server, log *slog.Logger) (service.HistoryStore, *sql.DB, error) {
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if db == nil {
		log.Info("no postgres DSN configured, keeping history in memory")
		return history.NewInMemoryStore(history.DefaultCapacity), nil, nil
	}

	store := history.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return store, db, nil
}

// pruneLimiter drops idle clients once per window until ctx is done.
func pruneLimiter(ctx context.Context, limiter *ratelimit.Limiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Prune()
		}
	}
}
