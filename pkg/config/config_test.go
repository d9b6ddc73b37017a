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
	t.Setenv("NYSSE_DIGITRANSIT_API_KEY", "test-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, "tampere", cfg.Digitransit.FeedID)
	assert.Equal(t, 6*time.Second, cfg.Realtime.Interval())
	assert.Equal(t, "PT3H", cfg.Cache.StopsTTL)
}

func TestLoadMissingAPIKeyFails(t *testing.T) {
	t.Setenv("NYSSE_DIGITRANSIT_API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
listen: ":8080"
digitransit:
  api_key: file-key
realtime:
  interval_seconds: 3
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("NYSSE_DIGITRANSIT_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	// environment wins over the file
	assert.Equal(t, "env-key", cfg.Digitransit.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Realtime.Interval())
}

func TestISODuration(t *testing.T) {
	tests := map[string]time.Duration{
		"PT3H":  3 * time.Hour,
		"PT1H":  time.Hour,
		"PT1M":  time.Minute,
		"PT10S": 10 * time.Second,
	}

	for input, expected := range tests {
		actual, err := ISODuration(input)
		require.NoError(t, err)
		assert.Equal(t, expected, actual, input)
	}

	_, err := ISODuration("not-a-duration")
	assert.Error(t, err)
}
