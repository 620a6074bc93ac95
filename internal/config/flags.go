package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/cybersib/cybersib/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory
//	-s string   store driver (sqlite, postgres, redis, memory)
//	-n string   store DSN
//	-l string   log level
//	-i int      refresh interval (in seconds)
//
// Only these flags are parsed; everything else in args is left to cobra.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-s", "-n", "-l", "-i"})

	fs := flag.NewFlagSet("cybersib", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.Store.Driver, "s", cfg.Store.Driver, "store driver")
	fs.StringVar(&cfg.Store.DSN, "n", cfg.Store.DSN, "store DSN")
	fs.StringVar(&cfg.Log.Level, "l", cfg.Log.Level, "log level")
	refresh := fs.Int("i", int(cfg.RefreshInterval.Seconds()), "refresh interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("config: flags: %w", err)
	}

	cfg.RefreshInterval = time.Duration(*refresh) * time.Second
	return nil
}
