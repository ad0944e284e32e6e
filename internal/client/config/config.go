package config

import (
	"time"

	"github.com/dmitrijs2005/bidmatch/internal/client/cookies"
	"github.com/dmitrijs2005/bidmatch/internal/client/session"
)

// Config holds runtime settings for the bidmatch client.
type Config struct {
	ServerURL        string
	DatabaseDSN      string
	RequestTimeout   time.Duration
	RefreshLeadTime  time.Duration
	CookieMaxAge     time.Duration
	WriterPathPrefix string
	LogLevel         string
	LogFormat        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.DatabaseDSN = "bidmatch.db"
	c.RequestTimeout = 15 * time.Second
	c.RefreshLeadTime = session.DefaultRefreshLeadTime
	c.CookieMaxAge = cookies.DefaultMaxAge
	c.WriterPathPrefix = "/writers"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment, then command-line flags. Later sources win. args excludes the
// program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := loadDotEnv(envFile()); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
