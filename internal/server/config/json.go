package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/crmconsole/internal/flagx"
	"github.com/dmitrijs2005/crmconsole/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "30m" style
// strings as well as integer nanoseconds.
type JsonConfig struct {
	ListenAddr                   string         `json:"listen_addr"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	OTPSecret                    string         `json:"otp_secret"`
	LogOTP                       *bool          `json:"log_otp"`
	AuthRateLimit                float64        `json:"auth_rate_limit"`
	AuthBurst                    int            `json:"auth_burst"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag. Without the flag nothing is loaded. Only the keys present in
// the file override config. If the file cannot be read or contains invalid
// JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.OTPSecret, c.OTPSecret)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	}
	if c.LogOTP != nil {
		config.LogOTP = *c.LogOTP
	}
	if c.AuthRateLimit > 0 {
		config.AuthRateLimit = c.AuthRateLimit
	}
	if c.AuthBurst > 0 {
		config.AuthBurst = c.AuthBurst
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
