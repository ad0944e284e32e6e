package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "BIDMATCH_"

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// envFile is the dotenv file to load, BIDMATCH_ENV_FILE or ".env".
func envFile() string {
	if v, ok := os.LookupEnv(envPrefix + "ENV_FILE"); ok && v != "" {
		return v
	}
	return ".env"
}

// loadDotEnv copies path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// parseEnv overlays cfg with BIDMATCH_* variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("SERVER_URL", &cfg.ServerURL)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("WRITER_PATH_PREFIX", &cfg.WriterPathPrefix)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	return errors.Join(
		dur("REQUEST_TIMEOUT", &cfg.RequestTimeout),
		dur("REFRESH_LEAD_TIME", &cfg.RefreshLeadTime),
		dur("COOKIE_MAX_AGE", &cfg.CookieMaxAge),
	)
}
