package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	strutil "primelab/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string
	LogLevel  string
	MaxDigits int

	// Witnesses overrides the default Fermat bases when non-empty.
	Witnesses []int64

	Redis    RedisConfig
	Postgres PostgresConfig
	Cache    CacheConfig

	RateLimit RateLimitConfig

	// TrustProxyHeaders keys clients by X-Forwarded-For and X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// RedisConfig configures the optional shared verdict cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the optional durable check history.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CacheConfig bounds the verdict cache.
type CacheConfig struct {
	TTL      time.Duration
	Capacity int
}

// RateLimitConfig bounds checks per client IP. Zero Requests disables it.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// DefaultMaxDigits caps the decimal length of inputs accepted over HTTP.
// A 5000-digit prime runs all seven witnesses in roughly 11s, well inside
// the 60s request timeout; cost grows about n^2.5 past that.
const DefaultMaxDigits = 5000

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:      envOr("PRIMELAB_ADDR", ":8080"),
		LogLevel:  envOr("PRIMELAB_LOG_LEVEL", "info"),
		MaxDigits: DefaultMaxDigits,
		Redis: RedisConfig{
			URL:          os.Getenv("PRIMELAB_REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("PRIMELAB_POSTGRES_DSN"),
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Cache: CacheConfig{
			TTL:      10 * time.Minute,
			Capacity: 4096,
		},
		RateLimit: RateLimitConfig{
			Window: time.Minute,
		},
	}

	var err error
	if cfg.MaxDigits, err = intFromEnv("PRIMELAB_MAX_DIGITS", cfg.MaxDigits); err != nil {
		return Server{}, err
	}
	if cfg.MaxDigits < 1 {
		return Server{}, fmt.Errorf("PRIMELAB_MAX_DIGITS must be positive, got %d", cfg.MaxDigits)
	}
	if cfg.Redis.PoolSize, err = intFromEnv("PRIMELAB_REDIS_POOL_SIZE", cfg.Redis.PoolSize); err != nil {
		return Server{}, err
	}
	if cfg.Cache.Capacity, err = intFromEnv("PRIMELAB_CACHE_CAPACITY", cfg.Cache.Capacity); err != nil {
		return Server{}, err
	}
	if cfg.Cache.TTL, err = durationFromEnv("PRIMELAB_CACHE_TTL", cfg.Cache.TTL); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Requests, err = intFromEnv("PRIMELAB_RATE_LIMIT", cfg.RateLimit.Requests); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Requests < 0 {
		return Server{}, fmt.Errorf("PRIMELAB_RATE_LIMIT must not be negative, got %d", cfg.RateLimit.Requests)
	}
	if cfg.RateLimit.Window, err = durationFromEnv("PRIMELAB_RATE_LIMIT_WINDOW", cfg.RateLimit.Window); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Window <= 0 {
		return Server{}, fmt.Errorf("PRIMELAB_RATE_LIMIT_WINDOW must be positive, got %s", cfg.RateLimit.Window)
	}
	if cfg.Witnesses, err = witnessesFromEnv("PRIMELAB_WITNESSES"); err != nil {
		return Server{}, err
	}
	if cfg.TrustProxyHeaders, err = boolFromEnv("PRIMELAB_TRUST_PROXY_HEADERS", false); err != nil {
		return Server{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// witnessesFromEnv reads a comma separated list such as "2,3,5,7". Blank
// and repeated entries are dropped.
func witnessesFromEnv(key string) ([]int64, error) {
	parts := strutil.SplitList(os.Getenv(key), ",")
	if len(parts) == 0 {
		return nil, nil
	}
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		w, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, w)
	}
	return out, nil
}
