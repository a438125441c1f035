// Package config loads runtime configuration for the console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config; JSON, or TOML when the
//     file name ends in .toml.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   API base URL
//	-d string   path to the local SQLite database
//	-t int      request timeout (seconds)
//	-r int      OTP resend cooldown (seconds)
//	-l string   log level
//
// # File schema
//
// Durations are strings like "30s"; JSON also accepts integer nanoseconds:
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080/api",
//	  "db_path": "console.db",
//	  "request_timeout": "30s",
//	  "resend_cooldown": "60s",
//	  "log_level": "INFO"
//	}
//
// This package does not read environment variables.
package config
