package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080/api", c.APIBaseURL)
	assert.Equal(t, "console.db", c.DBPath)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, 60*time.Second, c.ResendCooldown)
	assert.Equal(t, "INFO", c.LogLevel)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:8080/api", cfg.APIBaseURL)
	assert.Equal(t, 60, cfg.CooldownSeconds())
}

func TestCooldownSeconds(t *testing.T) {
	assert.Equal(t, 1, (&Config{}).CooldownSeconds())
	assert.Equal(t, 1, (&Config{ResendCooldown: 300 * time.Millisecond}).CooldownSeconds())
	assert.Equal(t, 90, (&Config{ResendCooldown: 90 * time.Second}).CooldownSeconds())
}
