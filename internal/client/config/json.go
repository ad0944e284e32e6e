package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/bidmatch/internal/flagx"
	"github.com/dmitrijs2005/bidmatch/internal/timex"
)

// JSONConfig is the on-disk shape. Durations accept "15s" or nanoseconds.
type JSONConfig struct {
	ServerURL        string         `json:"server_url"`
	DatabaseDSN      string         `json:"database_dsn"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	RefreshLeadTime  timex.Duration `json:"refresh_lead_time"`
	CookieMaxAge     timex.Duration `json:"cookie_max_age"`
	WriterPathPrefix string         `json:"writer_path_prefix"`
	LogLevel         string         `json:"log_level"`
	LogFormat        string         `json:"log_format"`
}

// parseJSON overlays cfg with the file named by -c or -config. Fields left
// out of the file keep their current value.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.WriterPathPrefix, jc.WriterPathPrefix)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RefreshLeadTime.Duration > 0 {
		cfg.RefreshLeadTime = jc.RefreshLeadTime.Duration
	}
	if jc.CookieMaxAge.Duration > 0 {
		cfg.CookieMaxAge = jc.CookieMaxAge.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
