// Package config reads process configuration from the environment so main
// stays lean. Every field has a default that lets the binary start with no
// environment at all.
package config

import (
	"os"
	"strconv"
	"time"
)

// Store backend names accepted in QUIRE_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config captures everything the server binary needs at startup.
type Config struct {
	Addr     string
	LogLevel string

	Store      string
	SQLitePath string
	Redis      RedisConfig
	Postgres   PostgresConfig

	Kafka KafkaConfig
	Trace TraceConfig
}

// RedisConfig tunes the go-redis client pool.
type RedisConfig struct {
	URL          string
	KeyPrefix    string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig holds the connection string for the postgres backend.
type PostgresConfig struct {
	URL string
}

// KafkaConfig enables the Kafka event publisher when Brokers is non-empty.
type KafkaConfig struct {
	Brokers string
	Topic   string
}

// TraceConfig selects the span exporter. Exporter "none" disables tracing.
type TraceConfig struct {
	Exporter   string
	Endpoint   string
	SampleRate float64
}

// FromEnv builds a Config from QUIRE_* environment variables.
func FromEnv() Config {
	return Config{
		Addr:     envOr("QUIRE_ADDR", ":8080"),
		LogLevel: envOr("QUIRE_LOG_LEVEL", "info"),

		Store:      envOr("QUIRE_STORE", StoreSQLite),
		SQLitePath: envOr("QUIRE_SQLITE_PATH", "quire.db"),
		Redis: RedisConfig{
			URL:          os.Getenv("QUIRE_REDIS_URL"),
			KeyPrefix:    envOr("QUIRE_REDIS_KEY_PREFIX", "quire:"),
			PoolSize:     envIntOr("QUIRE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envIntOr("QUIRE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDurationOr("QUIRE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDurationOr("QUIRE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDurationOr("QUIRE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("QUIRE_POSTGRES_URL"),
		},

		Kafka: KafkaConfig{
			Brokers: os.Getenv("QUIRE_KAFKA_BROKERS"),
			Topic:   envOr("QUIRE_KAFKA_TOPIC", "quire.document-events"),
		},
		Trace: TraceConfig{
			Exporter:   envOr("QUIRE_TRACE_EXPORTER", "none"),
			Endpoint:   envOr("QUIRE_TRACE_ENDPOINT", "localhost:4317"),
			SampleRate: envFloatOr("QUIRE_TRACE_SAMPLE_RATE", 1.0),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
