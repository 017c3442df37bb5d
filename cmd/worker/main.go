package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	redis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/damilsoft/payment-service/internal/activation"
	"github.com/damilsoft/payment-service/internal/config"
	dbgen "github.com/damilsoft/payment-service/internal/db/gen"
	"github.com/damilsoft/payment-service/internal/events"
	"github.com/damilsoft/payment-service/internal/lock"
	"github.com/damilsoft/payment-service/internal/monolith"
	"github.com/damilsoft/payment-service/internal/obs"
	"github.com/damilsoft/payment-service/internal/resilience"
	"github.com/damilsoft/payment-service/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "payment")
	obs.MustRegisterDomainMetrics(metricsNamespace, nil)

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	bus := &events.Bus{
		Store:     dbgen.New(pool),
		Notifiers: []events.Notifier{events.LogNotifier{Logger: logger}},
	}

	breaker := resilience.NewBreaker(cfg.CircuitMinReq, cfg.CircuitFailureRate, cfg.CircuitOpenFor).
		WithTarget("monolith").
		WithLogger(logger)
	monolithClient := monolith.NewClient(
		cfg.MonolithBaseURL,
		&http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		breaker,
		cfg.RetryBase,
		cfg.RetryMaxAttempts,
		cfg.RetryJitterPercent,
		cfg.MonolithTimeout,
	)

	handler := tasks.DispatchHandler{
		Dispatcher: activation.MonolithDispatcher{Client: monolithClient, Bus: bus, Logger: logger},
		Locker:     lock.Locker{R: redisClient, RetryBackoff: cfg.LockRetryBackoff},
		LockTTL:    cfg.LockTTL,
		Logger:     logger,
	}

	redisConnOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri for task queue")
	}
	srv := asynq.NewServer(redisConnOpt, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
		Queues:      map[string]int{cfg.DispatchQueue: 1},
	})

	logger.Info().Str("queue", cfg.DispatchQueue).Int("concurrency", cfg.WorkerConcurrency).Msg("worker starting")
	if err := srv.Run(tasks.NewMux(handler)); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
