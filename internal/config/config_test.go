package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "0 8 * * *", cfg.Sweep.Schedule)
	assert.Equal(t, 0, cfg.Sweep.LookbackDays)
	assert.Equal(t, 16, cfg.Sweep.MaxInFlight)
	assert.Equal(t, 5*time.Minute, cfg.Sweep.LockTTL)
	assert.Equal(t, 30, cfg.Notice.WindowDays)
	assert.Equal(t, "sentinel.dispatches", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.RateLimit.RPS)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
sweep:
  lookback_days: 3
notice:
  window_days: 60
auth:
  api_key: "k"
  cron_secret: "s"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Sweep.LookbackDays)
	assert.Equal(t, 60, cfg.Notice.WindowDays)
	assert.Equal(t, "k", cfg.Auth.APIKey)
	assert.Equal(t, "s", cfg.Auth.CronSecret)

	// untouched keys keep their defaults
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "0 8 * * *", cfg.Sweep.Schedule)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}
