package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test_token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ghp_test_token", cfg.Token)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 60, cfg.RetryDelay)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test_token")
	t.Setenv("GITHUB_API_MAX_RETRIES", "5")
	t.Setenv("GITHUB_API_RETRY_DELAY", "1")
	t.Setenv("MCP_TRANSPORT", "http")
	t.Setenv("MCP_HOST", "0.0.0.0")
	t.Setenv("MCP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 1, cfg.RetryDelay)
	assert.Equal(t, TransportHTTP, cfg.Transport)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr())
}

func TestLoad_InvalidTransport(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test_token")
	t.Setenv("MCP_TRANSPORT", "websocket")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transport")
}

func TestValidate_NegativeRetries(t *testing.T) {
	cfg := &Config{Transport: TransportStdio, MaxRetries: -1}
	assert.Error(t, cfg.Validate())
}

func TestRetryDelayDuration(t *testing.T) {
	cfg := &Config{RetryDelay: 60}
	assert.Equal(t, "1m0s", cfg.RetryDelayDuration().String())
}
