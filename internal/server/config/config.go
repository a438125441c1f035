// Package config handles configuration for the development API server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the development API server.
//
// Fields:
//   - ListenAddr: bind address for the HTTP API.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - OTPSecret: seed the per-email OTP secrets are derived from. Empty means random.
//   - LogOTP: write issued codes to the log, since the server sends no email.
//   - AuthRateLimit / AuthBurst: per-client limit on /auth requests (req/s).
//   - LogLevel: ERROR, WARN, INFO or DEBUG.
type Config struct {
	ListenAddr                   string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	OTPSecret                    string
	LogOTP                       bool
	AuthRateLimit                float64
	AuthBurst                    int
	LogLevel                     string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.RefreshTokenValidityDuration = 24 * time.Hour
	c.OTPSecret = ""
	c.LogOTP = false
	c.AuthRateLimit = 5
	c.AuthBurst = 20
	c.LogLevel = "INFO"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
