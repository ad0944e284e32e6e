package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/bidmatch/internal/flagx"
)

// parseFlags overlays cfg with the flags it owns:
//
//	-a string    backend base URL
//	-d string    SQLite database path or DSN
//	-t duration  per-request timeout, e.g. 10s
//	-l string    log level (debug, info, warn, error)
//
// Other flags, such as -c, are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-l"})

	fs := flag.NewFlagSet("bidmatch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "backend base URL")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
