// Package config loads swgraph settings from YAML files and SWGRAPH_*
// environment variables using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Repository backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config is the complete configuration of the swgraph server.
//
// Values are read from, in increasing priority:
//   - built-in defaults
//   - the YAML file passed to Load (or ./swgraph.yaml, /etc/swgraph/swgraph.yaml)
//   - environment variables prefixed with SWGRAPH_ (e.g. SWGRAPH_SERVER_ADDR)
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Repository RepositoryConfig `mapstructure:"repository"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Tracing    TracingConfig    `mapstructure:"tracing"`

	// Concurrency bounds the fetches run at once within one batch.
	Concurrency int `mapstructure:"concurrency"`
}

// ServerConfig contains HTTP endpoint settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`

	// Timeout bounds each GraphQL request. Zero disables it.
	Timeout time.Duration `mapstructure:"timeout"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	Pretty          bool          `mapstructure:"pretty"`
}

type RepositoryConfig struct {
	// Backend is "memory" or "redis".
	Backend string      `mapstructure:"backend"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// CacheConfig controls the read-through cache in front of the repositories.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	NumCounters int64         `mapstructure:"num_counters"`
	MaxCost     int64         `mapstructure:"max_cost"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// TracingConfig enables OTLP export when Endpoint is set.
type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Service     string  `mapstructure:"service"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load reads configuration from path and the environment. An empty path
// searches the default locations; a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("swgraph")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/swgraph")
	}

	v.SetEnvPrefix("SWGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.pretty", false)

	v.SetDefault("repository.backend", BackendMemory)
	v.SetDefault("repository.redis.addr", "localhost:6379")
	v.SetDefault("repository.redis.password", "")
	v.SetDefault("repository.redis.db", 0)
	v.SetDefault("repository.redis.prefix", "swgraph:")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.num_counters", 10000)
	v.SetDefault("cache.max_cost", 1000)
	v.SetDefault("cache.ttl", "1m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "swgraph")

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service", "swgraph")
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("concurrency", 16)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Repository.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("repository.backend must be %q or %q, got %q", BackendMemory, BackendRedis, c.Repository.Backend)
	}
	if c.Repository.Backend == BackendRedis && c.Repository.Redis.Addr == "" {
		return errors.New("repository.redis.addr is required for the redis backend")
	}
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Server.Timeout < 0 {
		return fmt.Errorf("server.timeout must not be negative, got %s", c.Server.Timeout)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes)
	}
	if c.Cache.Enabled && (c.Cache.NumCounters <= 0 || c.Cache.MaxCost <= 0) {
		return errors.New("cache.num_counters and cache.max_cost must be positive when the cache is enabled")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be within [0, 1], got %v", c.Tracing.SampleRatio)
	}
	return nil
}
