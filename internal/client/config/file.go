package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dmitrijs2005/crmconsole/internal/flagx"
	"github.com/dmitrijs2005/crmconsole/internal/timex"
)

// FileConfig is a DTO used exclusively for decoding config files. Fields
// left out of the file keep their current value.
type FileConfig struct {
	APIBaseURL     string         `json:"api_base_url" toml:"api_base_url"`
	DBPath         string         `json:"db_path" toml:"db_path"`
	RequestTimeout timex.Duration `json:"request_timeout" toml:"request_timeout"`
	ResendCooldown timex.Duration `json:"resend_cooldown" toml:"resend_cooldown"`
	LogLevel       string         `json:"log_level" toml:"log_level"`
}

// parseFile overlays Config with values from the file named by -c/-config.
// Files ending in .toml are decoded as TOML, anything else as JSON. Read or
// decode errors panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &fc); err != nil {
			panic(err)
		}
	} else if err := json.Unmarshal(data, &fc); err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.ResendCooldown.Duration != 0 {
		cfg.ResendCooldown = fc.ResendCooldown.Duration
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
