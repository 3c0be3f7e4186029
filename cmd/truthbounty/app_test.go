package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/truthbounty/config"
	"github.com/alejandrodnm/truthbounty/internal/domain"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "REDIS_ADDR", "KAFKA_BROKERS", "HTTP_ADDR"} {
		t.Setenv(k, "")
	}
	cfg, err := config.Parse([]byte(`
storage:
  dsn: ":memory:"
platforms:
  metaculus:
    enabled: false
`))
	require.NoError(t, err)
	return cfg
}

func TestPlatformSettings(t *testing.T) {
	off := false
	settings, err := platformSettings(map[string]config.PlatformConfig{
		"Azuro":     {BaseURL: "https://example.org", RatePerSec: 2, Burst: 3},
		"metaculus": {Enabled: &off},
	})
	require.NoError(t, err)

	assert.True(t, settings[domain.PlatformAzuro].Enabled)
	assert.Equal(t, "https://example.org", settings[domain.PlatformAzuro].BaseURL)
	assert.False(t, settings[domain.PlatformMetaculus].Enabled)

	_, err = platformSettings(map[string]config.PlatformConfig{"betfair": {}})
	require.ErrorIs(t, err, domain.ErrUnknownPlatform)
}

func TestNewApp_Wiring(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer a.Close()

	assert.NotContains(t, a.registry.Enabled(), domain.PlatformMetaculus)
	assert.NotEmpty(t, a.scheduler.Platforms())
	require.NoError(t, a.store.Ping(context.Background()))

	err = runResolve(context.Background(), a, "betfair")
	require.ErrorIs(t, err, domain.ErrUnknownPlatform)

	// Sin apuestas pendientes no hay llamadas upstream.
	require.NoError(t, runResolve(context.Background(), a, "all"))
	require.NoError(t, runResolve(context.Background(), a, string(a.scheduler.Platforms()[0])))

	a.Close()
	a.Close()
}
