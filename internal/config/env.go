package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "CYBERSIB_"

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// loadDotEnv exports variables from path unless they are already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("config: load %s: %w", path, err)
}

// parseEnv overlays cfg with CYBERSIB_* variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("DATA_DIR", &cfg.DataDir)
	str("STORE_DRIVER", &cfg.Store.Driver)
	str("STORE_DSN", &cfg.Store.DSN)
	str("STORE_KEY_PREFIX", &cfg.Store.KeyPrefix)
	str("LOG_BACKEND", &cfg.Log.Backend)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("LOG_FILE", &cfg.Log.File)
	str("SESSION_SECRET", &cfg.Session.Secret)
	str("HASH_ALGORITHM", &cfg.Hash.Algorithm)
	str("BOOTSTRAP_ADMIN_PASSWORD", &cfg.Bootstrap.AdminPassword)

	if v, ok := lookup(envPrefix + "SESSION_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sSESSION_TTL: %w", envPrefix, err)
		}
		cfg.Session.TTL = d
	}
	if v, ok := lookup(envPrefix + "REFRESH_INTERVAL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %sREFRESH_INTERVAL: %w", envPrefix, err)
		}
		cfg.RefreshInterval = d
	}
	for name, dst := range map[string]*bool{
		"BOOTSTRAP_DEMO":    &cfg.Bootstrap.DemoAccount,
		"BOOTSTRAP_SAMPLES": &cfg.Bootstrap.SampleAccounts,
	} {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("config: %s%s: %w", envPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}
