// Package config loads the settings used to build an appender from
// defaults, an optional YAML file and EVENTSHIP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "EVENTSHIP"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Endpoint             string        `mapstructure:"endpoint"`
	APIKey               string        `mapstructure:"api_key"`
	MaxRequestsPerSecond int           `mapstructure:"max_requests_per_second"`
	SendTimeout          time.Duration `mapstructure:"send_timeout"`
	// DrainTimeout bounds the final wait for pending deliveries.
	// 0 waits until every delivery reaches a terminal state.
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
	Batch        BatchConfig   `mapstructure:"batch"`
	Log          LogConfig     `mapstructure:"log"`
}

type BatchConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	FlushSize     int           `mapstructure:"flush_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
	BufferSize    int           `mapstructure:"buffer_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoint", "")
	v.SetDefault("api_key", "")
	v.SetDefault("max_requests_per_second", 0)
	v.SetDefault("send_timeout", "30s")
	v.SetDefault("drain_timeout", "10s")

	v.SetDefault("batch.enabled", false)
	v.SetDefault("batch.flush_size", 100)
	v.SetDefault("batch.flush_interval", "5s")
	v.SetDefault("batch.buffer_size", 500)

	v.SetDefault("log.level", "info")
}

// Load reads the config file at path (skipped when path is empty) on top of
// the defaults, then applies environment overrides such as
// EVENTSHIP_API_KEY or EVENTSHIP_BATCH_FLUSH_SIZE.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used to build a sink.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: endpoint %q is not an http(s) URL", ErrInvalidConfig, c.Endpoint)
	}
	if c.DrainTimeout < 0 {
		return fmt.Errorf("%w: drain_timeout must not be negative", ErrInvalidConfig)
	}
	if c.Batch.Enabled && c.Batch.FlushSize <= 0 {
		return fmt.Errorf("%w: batch.flush_size must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.Log.Level)
	}
	return nil
}
