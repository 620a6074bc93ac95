package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Config holds runtime settings for the CyberSib client.
type Config struct {
	DataDir string

	Store     StoreConfig
	Log       LogConfig
	Session   SessionConfig
	Hash      HashConfig
	Ranks     []models.RankTier
	Progress  ProgressConfig
	Terminal  TerminalConfig
	Audit     AuditConfig
	Bootstrap BootstrapConfig

	// RefreshInterval is how often the interactive client re-reads state.
	RefreshInterval time.Duration
}

type StoreConfig struct {
	Driver    string
	DSN       string
	KeyPrefix string
}

type LogConfig struct {
	Backend string
	Level   string
	Format  string
	File    string
}

type SessionConfig struct {
	// Secret signs session tokens. When empty one is generated on first
	// start and kept in the store settings.
	Secret string
	TTL    time.Duration
}

type HashConfig struct {
	Algorithm  string
	Argon2     cryptox.Argon2Params
	BcryptCost int
}

type ProgressConfig struct {
	AwardRepeatCompletions bool
}

type TerminalConfig struct {
	BufferLines int
}

type AuditConfig struct {
	Cap int
}

// BootstrapConfig selects the accounts seeded into an empty store. All of
// them are documented in the package doc; none exist unless enabled here.
type BootstrapConfig struct {
	DemoAccount    bool
	SampleAccounts bool
	// AdminPassword creates the admin account when set.
	AdminPassword string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.Store = StoreConfig{Driver: DriverSQLite, KeyPrefix: "cybersib:"}
	c.Log = LogConfig{Backend: logging.BackendSlog, Level: "info", Format: logging.FormatText}
	c.Session = SessionConfig{TTL: 24 * time.Hour}
	c.Hash = HashConfig{Algorithm: cryptox.AlgorithmArgon2id, Argon2: cryptox.DefaultArgon2Params, BcryptCost: 10}
	c.Ranks = models.DefaultRankTiers()
	c.Progress = ProgressConfig{AwardRepeatCompletions: false}
	c.Terminal = TerminalConfig{BufferLines: 100}
	c.Audit = AuditConfig{Cap: 1000}
	c.Bootstrap = BootstrapConfig{DemoAccount: true, SampleAccounts: true}
	c.RefreshInterval = 30 * time.Second
}

// Load builds a Config from defaults, then the environment (including a
// .env file in the working directory), then the config file named by -c,
// then command-line flags. Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, lookupEnv); err != nil {
		return nil, err
	}
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres, DriverRedis, DriverMemory:
	default:
		return fmt.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == DriverPostgres && c.Store.DSN == "" {
		return fmt.Errorf("config: postgres driver requires a DSN")
	}
	switch c.Hash.Algorithm {
	case cryptox.AlgorithmArgon2id, cryptox.AlgorithmBcrypt:
	default:
		return fmt.Errorf("config: unknown hash algorithm %q", c.Hash.Algorithm)
	}
	if _, err := models.NewRankLadder(c.Ranks); err != nil {
		return fmt.Errorf("config: ranks: %w", err)
	}
	if c.Terminal.BufferLines <= 0 {
		return fmt.Errorf("config: terminal buffer must hold at least one line")
	}
	if c.Audit.Cap <= 0 {
		return fmt.Errorf("config: audit cap must be positive")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session ttl must be positive")
	}
	if c.Bootstrap.AdminPassword != "" && len(c.Bootstrap.AdminPassword) < models.MinCredentialLength {
		return fmt.Errorf("config: bootstrap admin password must be at least %d characters", models.MinCredentialLength)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("config: refresh interval must be positive")
	}
	return nil
}

// RankLadder returns the configured ladder. Validate has already checked it.
func (c *Config) RankLadder() models.RankLadder {
	l, err := models.NewRankLadder(c.Ranks)
	if err != nil {
		return models.DefaultRankLadder()
	}
	return l
}

// StoreDSN resolves the DSN, defaulting the sqlite file and redis address.
func (c *Config) StoreDSN() string {
	if c.Store.DSN != "" {
		return c.Store.DSN
	}
	switch c.Store.Driver {
	case DriverSQLite:
		return filepath.Join(c.DataDir, "cybersib.db")
	case DriverRedis:
		return "redis://127.0.0.1:6379/0"
	}
	return ""
}

// LogOptions converts the log section for logging.New.
func (c *Config) LogOptions() logging.Options {
	return logging.Options{
		Backend: c.Log.Backend,
		Level:   c.Log.Level,
		Format:  c.Log.Format,
		File:    c.Log.File,
	}
}
