package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"destinations":  []string{"https://a.example", "s3://bucket/media"},
		"retry_spacing": "10s",
		"stall_timeout": 3000000000,
		"retry_count":   0,
		"auth_secret":   "k",
		"s3": map[string]any{
			"region":     "eu-central-1",
			"put_expiry": "1m",
		},
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, []string{"https://a.example", "s3://bucket/media"}, cfg.Destinations)
		assert.Equal(t, 10*time.Second, cfg.RetrySpacing)
		assert.Equal(t, 3*time.Second, cfg.StallTimeout)
		assert.Equal(t, 0, cfg.RetryCount)
		assert.Equal(t, "k", cfg.AuthSecret)
		assert.Equal(t, "eu-central-1", cfg.S3.Region)
		assert.Equal(t, time.Minute, cfg.S3.PutExpiry)
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "deliveries.db", cfg.JournalPath)
		assert.Equal(t, "vector", cfg.AuthSubject)
		assert.Equal(t, 30*time.Second, cfg.MaxSpacing)
	})

	t.Run("no config flag, no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			Destinations: []string{"https://keep.example"},
			RetrySpacing: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, []string{"https://keep.example"}, cfg.Destinations)
		assert.Equal(t, 42*time.Second, cfg.RetrySpacing)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
