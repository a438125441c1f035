package config

import "time"

// Config holds runtime settings for the console.
//
// Fields:
//   - APIBaseURL: root of the backend REST API, e.g. http://127.0.0.1:8080/api.
//   - DBPath: SQLite file holding the credentials and the session state.
//   - RequestTimeout: upper bound for a single backend call.
//   - ResendCooldown: how long OTP resend stays disabled after a resend.
//   - LogLevel: ERROR, WARN, INFO or DEBUG.
type Config struct {
	APIBaseURL     string
	DBPath         string
	RequestTimeout time.Duration
	ResendCooldown time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.DBPath = "console.db"
	c.RequestTimeout = 30 * time.Second
	c.ResendCooldown = 60 * time.Second
	c.LogLevel = "INFO"
}

// CooldownSeconds is ResendCooldown in whole seconds (at least 1).
func (c *Config) CooldownSeconds() int {
	s := int(c.ResendCooldown / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a config file (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
