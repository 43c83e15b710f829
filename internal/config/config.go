package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Ledger API
	LedgerAPIURL string
	LoginPath    string
	HTTPTimeout  time.Duration
	FeedLimit    int

	// Resilience
	MaxConcurrency     int
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration

	// Sessions
	SessionBackend string
	SessionTTL     time.Duration
	SecureCookie   bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Observability
	OTELEnabled  bool
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8081),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		LedgerAPIURL: strings.TrimRight(getEnv("LEDGER_API_URL", "http://localhost:8080"), "/"),
		LoginPath:    getEnv("LOGIN_PATH", "/login"),
		HTTPTimeout:  getEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		FeedLimit:    getEnvInt("FEED_LIMIT", 10),

		MaxConcurrency:     getEnvInt("MAX_CONCURRENCY", 50),
		BreakerMaxRequests: uint32(getEnvInt("BREAKER_MAX_REQUESTS", 3)),
		BreakerInterval:    getEnvDuration("BREAKER_INTERVAL", 30*time.Second),
		BreakerTimeout:     getEnvDuration("BREAKER_TIMEOUT", 10*time.Second),

		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", SessionBackendMemory)),
		SessionTTL:     getEnvDuration("SESSION_TTL", 30*time.Minute),
		SecureCookie:   getEnvBool("SECURE_COOKIE", false),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

// TracingEndpoint is the OTLP endpoint, or empty when tracing is off.
func (c *Config) TracingEndpoint() string {
	if !c.OTELEnabled {
		return ""
	}
	return c.OTLPEndpoint
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
