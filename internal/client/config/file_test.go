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
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()

	t.Run("loads JSON", func(t *testing.T) {
		path := writeTempJSON(t, dir, "cfg.json", map[string]any{
			"api_base_url":    "https://crm.example/api",
			"request_timeout": "10s",
			"resend_cooldown": 45000000000,
		})
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "https://crm.example/api", cfg.APIBaseURL)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 45*time.Second, cfg.ResendCooldown)
		assert.Equal(t, "console.db", cfg.DBPath, "absent keys keep defaults")
	})

	t.Run("loads TOML", func(t *testing.T) {
		path := filepath.Join(dir, "cfg.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
api_base_url = "http://10.0.0.5:8080/api"
db_path = "/var/lib/console.db"
request_timeout = "15s"
log_level = "DEBUG"
`), 0o600))
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "http://10.0.0.5:8080/api", cfg.APIBaseURL)
		assert.Equal(t, "/var/lib/console.db", cfg.DBPath)
		assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 60*time.Second, cfg.ResendCooldown)
		assert.Equal(t, "DEBUG", cfg.LogLevel)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{APIBaseURL: "http://defaults/api", RequestTimeout: 42 * time.Second}
		parseFile(cfg)

		assert.Equal(t, "http://defaults/api", cfg.APIBaseURL)
		assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseFile(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}
