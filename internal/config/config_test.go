package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.Interval)
	assert.True(t, cfg.ShowTime)
	assert.True(t, cfg.ShowCPU)
	assert.True(t, cfg.ShowRAM)
	assert.True(t, cfg.ShowGPU)
	assert.False(t, cfg.Notify)
	assert.Empty(t, cfg.ProbeListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadAppliesFile(t *testing.T) {
	path := writeConfigFile(t, `
host: 192.168.0.20
port: 9100
interval: 5s
show_gpu: false
notify: true
send_timeout: 500ms
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.0.20", cfg.Host)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Interval)
	assert.False(t, cfg.ShowGPU)
	assert.True(t, cfg.Notify)
	assert.Equal(t, 500*time.Millisecond, cfg.SendTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// untouched keys keep their defaults
	assert.True(t, cfg.ShowTime)
	assert.True(t, cfg.ShowCPU)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestLoadRejectsMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsUnparsableInterval(t *testing.T) {
	path := writeConfigFile(t, "interval: fast\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interval")
}

func TestLoadRejectsUnparsableSendTimeout(t *testing.T) {
	path := writeConfigFile(t, "send_timeout: soon\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send_timeout")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "port: 9100\nshow_ram: true\n")
	t.Setenv("VRCSTAT_PORT", "9200")
	t.Setenv("VRCSTAT_SHOW_RAM", "off")
	t.Setenv("VRCSTAT_INTERVAL", "10s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Port)
	assert.False(t, cfg.ShowRAM)
	assert.Equal(t, 10*time.Second, cfg.Interval)
}

func TestLoadIgnoresMalformedEnvValues(t *testing.T) {
	path := writeConfigFile(t, "port: 9100\n")
	t.Setenv("VRCSTAT_PORT", "not-a-number")
	t.Setenv("VRCSTAT_INTERVAL", "soon")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.Interval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Host = " " }},
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"interval below floor", func(c *Config) { c.Interval = 500 * time.Millisecond }},
		{"send timeout zero", func(c *Config) { c.SendTimeout = 0 }},
		{"negative backoff", func(c *Config) { c.ErrorBackoff = -time.Second }},
		{"shutdown timeout zero", func(c *Config) { c.ShutdownTimeout = 0 }},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
