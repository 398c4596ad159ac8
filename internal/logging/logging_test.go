package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace": zerolog.TraceLevel,
		"debug": zerolog.DebugLevel,
		"info":  zerolog.InfoLevel,
		"WARN":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	}
	for input, want := range cases {
		logger := New(Options{Level: input})
		assert.Equal(t, want, logger.GetLevel(), "level %q", input)
	}
}

func TestNewFallsBackToInfoLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, New(Options{Level: "shouty"}).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New(Options{}).GetLevel())
}

func TestNewMirrorsOutputToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitor.log")
	logger := New(Options{Level: "info", Production: true, File: path})

	logger.Info().Str("check", "sink").Msg("hello file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
	assert.Contains(t, string(data), `"check":"sink"`)
}

func TestNewInstallsGlobalLogger(t *testing.T) {
	logger := New(Options{Level: "warn"})
	assert.Equal(t, logger.GetLevel(), log.Logger.GetLevel())
}
