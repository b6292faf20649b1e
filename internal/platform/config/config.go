package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures process-level configuration for the platform core.
type Config struct {
	// Addr is the listen address of the ops/introspection HTTP server.
	Addr string `env:"TASKLANE_ADDR" envDefault:":8080"`

	// LogLevel controls slog verbosity: debug, info, warn, error.
	LogLevel string `env:"TASKLANE_LOG_LEVEL" envDefault:"info"`

	// HandlerTimeout bounds how long a single event handler may run before
	// its outcome is recorded as a failure and publish moves on.
	HandlerTimeout time.Duration `env:"TASKLANE_HANDLER_TIMEOUT" envDefault:"30s"`

	// MaxConcurrentHandlers bounds handler fan-out per publish. Zero means
	// unlimited.
	MaxConcurrentHandlers int `env:"TASKLANE_MAX_CONCURRENT_HANDLERS" envDefault:"0"`

	// RedisURL enables the Redis-backed flag override store when set.
	// Empty keeps overrides in process memory.
	RedisURL string `env:"TASKLANE_REDIS_URL"`

	Redis RedisConfig
}

// RedisConfig tunes the shared Redis client.
type RedisConfig struct {
	PoolSize     int           `env:"TASKLANE_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"TASKLANE_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"TASKLANE_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"TASKLANE_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"TASKLANE_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
