// Copyright (C) 2024 self-sensored contributors.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is the process-wide configuration: database pool sizing,
// HTTP bind address and the two nested configs (validation, batch)
// that the core pipeline consumes. It plays the role the teacher's
// `config.Keys` package-level var plays, but is passed explicitly
// instead of living in a global — the batch processor and CLIs each
// construct their own.
type AppConfig struct {
	Addr string

	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration
	DBConnectTimeout  time.Duration

	LogLevel    string
	LogDateTime bool

	JWTSecret string

	RateLimitPerSecond float64
	RateLimitBurst     int
	RateLimitIdleTTL   time.Duration

	AsyncQueueSize int
	AsyncWorkers   int

	RespCacheMaxEntries int

	MentalHealthPartitionMonthsAhead int
	StaleQueueThreshold              time.Duration
	StaleQueueSweepInterval          time.Duration

	Validation ValidationConfig
	Batch      BatchConfig
}

// Load reads a `.env` file if present (ignored if missing — the
// teacher's cc-backend does the equivalent by tolerating a missing
// config.json) and then builds an AppConfig from the environment.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return AppConfig{}, fmt.Errorf("config: loading .env: %w", err)
	}

	c := AppConfig{
		Addr:              envOr("ADDR", ":8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		DBMaxOpenConns:    envIntOr("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    envIntOr("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: envDurationOr("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnMaxIdleTime: envDurationOr("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		DBConnectTimeout:  envDurationOr("DB_CONNECT_TIMEOUT", 10*time.Second),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		LogDateTime:       envBoolOr("LOG_DATE_TIME", false),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RateLimitPerSecond: envFloat("RATE_LIMIT_PER_SECOND", 10.0),
		RateLimitBurst:     envIntOr("RATE_LIMIT_BURST", 20),
		RateLimitIdleTTL:   envDurationOr("RATE_LIMIT_IDLE_TTL", 30*time.Minute),

		AsyncQueueSize: envIntOr("ASYNC_QUEUE_SIZE", 1000),
		AsyncWorkers:   envIntOr("ASYNC_WORKERS", 4),

		RespCacheMaxEntries: envIntOr("RESP_CACHE_MAX_ENTRIES", 10000),

		MentalHealthPartitionMonthsAhead: envIntOr("MENTAL_HEALTH_PARTITION_MONTHS_AHEAD", 3),
		StaleQueueThreshold:              envDurationOr("STALE_QUEUE_THRESHOLD", 2*time.Hour),
		StaleQueueSweepInterval:          envDurationOr("STALE_QUEUE_SWEEP_INTERVAL", 15*time.Minute),

		Validation: ValidationConfigFromEnv(),
		Batch:      BatchConfigFromEnv(),
	}

	if c.DatabaseURL == "" {
		return AppConfig{}, fmt.Errorf("config: DATABASE_URL is required")
	}
	if err := c.Validation.Validate(); err != nil {
		return AppConfig{}, err
	}
	if err := c.Batch.Validate(); err != nil {
		return AppConfig{}, err
	}

	return c, nil
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
