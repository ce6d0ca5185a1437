package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadGateway_Defaults(t *testing.T) {
	cfg, err := LoadGateway()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "http://localhost:9090", cfg.ServerURL)
	assert.Equal(t, 100, cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateWindow)
	assert.Empty(t, cfg.Redis.Address)
}

func TestLoadGateway_FromEnv(t *testing.T) {
	t.Setenv("SHAREIT_SERVER_URL", "http://server:9090")
	t.Setenv("GATEWAY_RATE_LIMIT", "5")
	t.Setenv("GATEWAY_RATE_WINDOW", "10s")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadGateway()
	require.NoError(t, err)
	assert.Equal(t, "http://server:9090", cfg.ServerURL)
	assert.Equal(t, 5, cfg.RateLimit)
	assert.Equal(t, 10*time.Second, cfg.RateWindow)
	assert.Equal(t, "redis:6379", cfg.Redis.Address)
}

func TestLoadGateway_Invalid(t *testing.T) {
	t.Setenv("GATEWAY_RATE_LIMIT", "-1")
	_, err := LoadGateway()
	assert.Error(t, err)

	t.Setenv("GATEWAY_RATE_LIMIT", "not-a-number")
	_, err = LoadGateway()
	assert.Error(t, err)
}
