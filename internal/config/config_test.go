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
	path := filepath.Join(t.TempDir(), "monitor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 3000, cfg.Port)
	assert.False(t, cfg.Production)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.UsageTTL.Std())
	assert.Equal(t, 5*time.Second, cfg.ProcessTTL.Std())
	assert.Equal(t, 4*time.Second, cfg.RefreshInterval.Std())
	assert.Equal(t, time.Second, cfg.SampleInterval.Std())
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, 20, cfg.RateLimitBurst)
}

func TestLoadReadsYAML(t *testing.T) {
	path := writeConfig(t, `
port: 8080
production: true
log_level: debug
usage_ttl: 2s
process_ttl: 7s
refresh_interval: 3s
sample_interval: 500ms
rate_limit_per_minute: 60
rate_limit_burst: 5
port_forward: true
tray: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Production)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.UsageTTL.Std())
	assert.Equal(t, 7*time.Second, cfg.ProcessTTL.Std())
	assert.Equal(t, 500*time.Millisecond, cfg.SampleInterval.Std())
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.True(t, cfg.PortForward)
	assert.True(t, cfg.Tray)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "port: 4000\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.UsageTTL.Std())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: 4000\nlog_level: debug\n")

	t.Setenv(EnvPort, "9090")
	t.Setenv(EnvProduction, "true")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvPortForward, "true")
	t.Setenv(EnvTray, "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.Production)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.PortForward)
	assert.True(t, cfg.Tray)
}

func TestEnvironmentIgnoresUnparsableValues(t *testing.T) {
	t.Setenv(EnvPort, "not-a-number")
	t.Setenv(EnvProduction, "maybe")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Port)
	assert.False(t, cfg.Production)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"zero port":      "port: 0\n",
		"port too large": "port: 70000\n",
		"bad log level":  "log_level: shouty\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "port: [nope\n"))
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "usage_ttl: three-seconds\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}
