package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	StripeAPIKey        string
	StripeWebhookSecret string
	ConnectCountry      string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	MonolithBaseURL string
	MonolithTimeout time.Duration

	WebhookReplayTTL time.Duration
	IdempotencyTTL   time.Duration

	DispatchQueue       string
	DispatchMaxRetries  int
	WorkerConcurrency   int
	LockTTL             time.Duration
	LockRetryBackoff    time.Duration
	RetryBase           time.Duration
	RetryMaxAttempts    int
	RetryJitterPercent  float64
	CircuitMinReq       int
	CircuitFailureRate  float64
	CircuitOpenFor      time.Duration
	CheckoutRateWindow  time.Duration
	CheckoutRateMax     int
	GlobalRateLimit     string
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	MigrationsSourceURL string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		StripeAPIKey:        k.String("STRIPE_API_KEY"),
		StripeWebhookSecret: k.String("STRIPE_WEBHOOK_SECRET"),
		ConnectCountry:      valueOrDefault(k.String("STRIPE_CONNECT_COUNTRY"), "BG"),
		CheckoutSuccessURL:  valueOrDefault(k.String("CHECKOUT_SUCCESS_URL"), "https://damilsoft.com/success?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:   valueOrDefault(k.String("CHECKOUT_CANCEL_URL"), "https://damilsoft.com/cancel"),

		MonolithBaseURL: k.String("MONOLITH_BASE_URL"),
		MonolithTimeout: parseDuration(k.String("MONOLITH_TIMEOUT"), "10s"),

		WebhookReplayTTL: parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "24h"),
		IdempotencyTTL:   parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),

		DispatchQueue:       valueOrDefault(k.String("DISPATCH_QUEUE"), "activations"),
		DispatchMaxRetries:  atoiDefault(k.String("DISPATCH_MAX_RETRIES"), 5),
		WorkerConcurrency:   atoiDefault(k.String("WORKER_CONCURRENCY"), 4),
		LockTTL:             parseDuration(k.String("LOCK_TTL"), "30s"),
		LockRetryBackoff:    parseDuration(k.String("LOCK_RETRY_BACKOFF"), "50ms"),
		RetryBase:           parseDuration(k.String("RETRY_BASE"), "200ms"),
		RetryMaxAttempts:    atoiDefault(k.String("RETRY_MAX_ATTEMPTS"), 3),
		RetryJitterPercent:  parseFloat(k.String("RETRY_JITTER_PERCENT"), 0.2),
		CircuitMinReq:       atoiDefault(k.String("CIRCUIT_MIN_REQUESTS"), 10),
		CircuitFailureRate:  parseFloat(k.String("CIRCUIT_FAILURE_RATE"), 0.5),
		CircuitOpenFor:      parseDuration(k.String("CIRCUIT_OPEN_FOR"), "30s"),
		CheckoutRateWindow:  parseDuration(k.String("CHECKOUT_RATE_WINDOW"), "1m"),
		CheckoutRateMax:     atoiDefault(k.String("CHECKOUT_RATE_MAX"), 30),
		GlobalRateLimit:     valueOrDefault(k.String("GLOBAL_RATE_LIMIT"), "300-M"),
		DBMaxOpenConns:      atoiDefault(k.String("DB_MAX_OPEN_CONNS"), 0),
		DBMaxIdleConns:      atoiDefault(k.String("DB_MAX_IDLE_CONNS"), 0),
		MigrationsSourceURL: valueOrDefault(k.String("MIGRATIONS_SOURCE_URL"), "file://db/migrations"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.StripeAPIKey == "" {
		return nil, errors.New("STRIPE_API_KEY is required")
	}
	if cfg.MonolithBaseURL == "" {
		return nil, errors.New("MONOLITH_BASE_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func atoiDefault(value string, def int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return def
	}
	return parsed
}

func parseFloat(value string, def float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return def
	}
	return parsed
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
