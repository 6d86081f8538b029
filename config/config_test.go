package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventship.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "", cfg.Endpoint)
		assert.Equal(t, 0, cfg.MaxRequestsPerSecond)
		assert.Equal(t, 30*time.Second, cfg.SendTimeout)
		assert.Equal(t, 10*time.Second, cfg.DrainTimeout)
		assert.False(t, cfg.Batch.Enabled)
		assert.Equal(t, 100, cfg.Batch.FlushSize)
		assert.Equal(t, 5*time.Second, cfg.Batch.FlushInterval)
		assert.Equal(t, 500, cfg.Batch.BufferSize)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("LoadFile", func(t *testing.T) {
		path := writeConfig(t, `
endpoint: https://ingest.example.com
api_key: secret
max_requests_per_second: 25
send_timeout: 5s
batch:
  enabled: true
  flush_interval: 250ms
log:
  level: debug
`)
		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "https://ingest.example.com", cfg.Endpoint)
		assert.Equal(t, "secret", cfg.APIKey)
		assert.Equal(t, 25, cfg.MaxRequestsPerSecond)
		assert.Equal(t, 5*time.Second, cfg.SendTimeout)
		assert.True(t, cfg.Batch.Enabled)
		assert.Equal(t, 250*time.Millisecond, cfg.Batch.FlushInterval)
		assert.Equal(t, 100, cfg.Batch.FlushSize)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		path := writeConfig(t, "api_key: from-file\n")
		t.Setenv("EVENTSHIP_API_KEY", "from-env")
		t.Setenv("EVENTSHIP_BATCH_FLUSH_SIZE", "7")
		t.Setenv("EVENTSHIP_SEND_TIMEOUT", "1m")

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.APIKey)
		assert.Equal(t, 7, cfg.Batch.FlushSize)
		assert.Equal(t, time.Minute, cfg.SendTimeout)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("BadDuration", func(t *testing.T) {
		_, err := Load(writeConfig(t, "send_timeout: soon\n"))
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Endpoint: "https://ingest.example.com",
			Batch:    BatchConfig{Enabled: true, FlushSize: 10},
			Log:      LogConfig{Level: "INFO"},
		}
	}

	testCases := []struct {
		name      string
		mutate    func(c *Config)
		expectErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing endpoint", mutate: func(c *Config) { c.Endpoint = "" }, expectErr: true},
		{name: "region instead of url", mutate: func(c *Config) { c.Endpoint = "us-east-1" }, expectErr: true},
		{name: "negative drain", mutate: func(c *Config) { c.DrainTimeout = -time.Second }, expectErr: true},
		{name: "unbounded drain", mutate: func(c *Config) { c.DrainTimeout = 0 }},
		{name: "zero flush size", mutate: func(c *Config) { c.Batch.FlushSize = 0 }, expectErr: true},
		{
			name:   "zero flush size without batching",
			mutate: func(c *Config) { c.Batch = BatchConfig{} },
		},
		{name: "unknown level", mutate: func(c *Config) { c.Log.Level = "loud" }, expectErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.expectErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
