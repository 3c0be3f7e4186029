package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/truthbounty/config"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "HTTP_ADDR", "DATABASE_URL", "REDIS_ADDR", "REDIS_PASSWORD", "KAFKA_BROKERS"} {
		t.Setenv(k, "")
	}
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Parse([]byte("{}"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 300, cfg.Leaderboard.TTLSeconds)
	assert.Equal(t, 3600, cfg.Leaderboard.StaleSeconds)
	assert.Equal(t, 8, cfg.Leaderboard.SourceTimeoutSeconds)
	assert.Equal(t, 100, cfg.Leaderboard.PerSourceLimit)
	assert.Equal(t, 25, cfg.Leaderboard.PageSize)
	assert.Equal(t, 100, cfg.Leaderboard.MaxPageSize)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "truthbounty.db", cfg.Storage.DSN)
	assert.Equal(t, "@every 5m", cfg.Resolver.Schedule)
	assert.Equal(t, 500, cfg.Resolver.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestParse_File(t *testing.T) {
	clearEnv(t)
	yml := `
server:
  addr: ":9000"
  allowed_origins: ["https://truthbounty.xyz"]
leaderboard:
  ttl_seconds: 60
  stale_seconds: 30
  page_size: 500
platforms:
  kalshi:
    enabled: false
  azuro:
    base_url: https://example.org/subgraph
    rate_per_sec: 2
    burst: 4
redis:
  addr: localhost:6379
kafka:
  brokers: ["k1:9092"]
resolver:
  schedule: "*/10 * * * *"
`
	cfg, err := config.Parse([]byte(yml))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"https://truthbounty.xyz"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 60, cfg.Leaderboard.TTLSeconds)
	assert.Equal(t, 3600, cfg.Leaderboard.StaleSeconds, "stale window never shorter than TTL")
	assert.Equal(t, 25, cfg.Leaderboard.PageSize, "page size capped by max")

	assert.False(t, cfg.Platforms["kalshi"].IsEnabled())
	assert.True(t, cfg.Platforms["azuro"].IsEnabled())
	assert.Equal(t, 2.0, cfg.Platforms["azuro"].RatePerSec)
	assert.Equal(t, 4, cfg.Platforms["azuro"].Burst)

	assert.True(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "*/10 * * * *", cfg.Resolver.Schedule)
}

func TestParse_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_ADDR", ":7000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/truthbounty")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")

	cfg, err := config.Parse([]byte("log:\n  level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "postgres", cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db/truthbounty", cfg.Storage.DSN)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestParse_InvalidDriver(t *testing.T) {
	clearEnv(t)
	_, err := config.Parse([]byte("storage:\n  driver: mysql\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: json\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
