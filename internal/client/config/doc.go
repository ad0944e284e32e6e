// Package config loads runtime configuration for the bidmatch client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables prefixed BIDMATCH_. A .env file (or the file
//     named by BIDMATCH_ENV_FILE) is loaded first without overriding
//     variables that are already set.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string    backend base URL
//	-d string    SQLite database path
//	-t duration  request timeout
//	-l string    log level
//
// # JSON schema
//
// Durations use timex.Duration, so "15s" and integer nanoseconds both work:
//
//	{
//	  "server_url": "https://api.bidmatch.example",
//	  "database_dsn": "bidmatch.db",
//	  "request_timeout": "15s",
//	  "refresh_lead_time": "10m",
//	  "cookie_max_age": "168h",
//	  "writer_path_prefix": "/writers",
//	  "log_level": "info",
//	  "log_format": "json"
//	}
package config
