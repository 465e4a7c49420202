package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50*time.Millisecond, cfg.Session.TickInterval)
	assert.False(t, cfg.Audit.Enabled)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
server:
  addr: "127.0.0.1:9000"
  operators: [Notch]
session:
  brew_ticks: 20
log:
  level: debug
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Session.BrewTicks)
	assert.Equal(t, 64, cfg.Transport.QueueSize)
	assert.True(t, cfg.IsOperator("notch"))
	assert.False(t, cfg.IsOperator("steve"))
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("log:\n  level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Log.Level")

	_, err = Parse([]byte("audit:\n  enabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Brokers")

	_, err = Parse([]byte("server: [not, a, map]"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport:\n  queue_size: 8\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Transport.QueueSize)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
