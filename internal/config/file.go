package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/flagx"
	"github.com/cybersib/cybersib/internal/models"
	"github.com/cybersib/cybersib/internal/timex"
)

// fileConfig is the DTO for JSON and YAML config files. It is pre-filled
// from the current Config so that keys missing in the file keep their value.
type fileConfig struct {
	DataDir string `json:"data_dir" yaml:"data_dir"`

	Store struct {
		Driver    string `json:"driver" yaml:"driver"`
		DSN       string `json:"dsn" yaml:"dsn"`
		KeyPrefix string `json:"key_prefix" yaml:"key_prefix"`
	} `json:"store" yaml:"store"`

	Log struct {
		Backend string `json:"backend" yaml:"backend"`
		Level   string `json:"level" yaml:"level"`
		Format  string `json:"format" yaml:"format"`
		File    string `json:"file" yaml:"file"`
	} `json:"log" yaml:"log"`

	Session struct {
		Secret string         `json:"secret" yaml:"secret"`
		TTL    timex.Duration `json:"ttl" yaml:"ttl"`
	} `json:"session" yaml:"session"`

	Hash struct {
		Algorithm  string               `json:"algorithm" yaml:"algorithm"`
		Argon2     cryptox.Argon2Params `json:"argon2" yaml:"argon2"`
		BcryptCost int                  `json:"bcrypt_cost" yaml:"bcrypt_cost"`
	} `json:"hash" yaml:"hash"`

	Ranks []models.RankTier `json:"ranks" yaml:"ranks"`

	Progress struct {
		AwardRepeatCompletions bool `json:"award_repeat_completions" yaml:"award_repeat_completions"`
	} `json:"progress" yaml:"progress"`

	Terminal struct {
		BufferLines int `json:"buffer_lines" yaml:"buffer_lines"`
	} `json:"terminal" yaml:"terminal"`

	Audit struct {
		Cap int `json:"cap" yaml:"cap"`
	} `json:"audit" yaml:"audit"`

	Bootstrap struct {
		DemoAccount    bool   `json:"demo_account" yaml:"demo_account"`
		SampleAccounts bool   `json:"sample_accounts" yaml:"sample_accounts"`
		AdminPassword  string `json:"admin_password" yaml:"admin_password"`
	} `json:"bootstrap" yaml:"bootstrap"`

	RefreshInterval timex.Duration `json:"refresh_interval" yaml:"refresh_interval"`
}

func (f *fileConfig) from(c *Config) {
	f.DataDir = c.DataDir
	f.Store.Driver, f.Store.DSN, f.Store.KeyPrefix = c.Store.Driver, c.Store.DSN, c.Store.KeyPrefix
	f.Log.Backend, f.Log.Level, f.Log.Format, f.Log.File = c.Log.Backend, c.Log.Level, c.Log.Format, c.Log.File
	f.Session.Secret = c.Session.Secret
	f.Session.TTL = timex.Duration{Duration: c.Session.TTL}
	f.Hash.Algorithm, f.Hash.Argon2, f.Hash.BcryptCost = c.Hash.Algorithm, c.Hash.Argon2, c.Hash.BcryptCost
	f.Ranks = nil
	f.Progress.AwardRepeatCompletions = c.Progress.AwardRepeatCompletions
	f.Terminal.BufferLines = c.Terminal.BufferLines
	f.Audit.Cap = c.Audit.Cap
	f.Bootstrap.DemoAccount = c.Bootstrap.DemoAccount
	f.Bootstrap.SampleAccounts = c.Bootstrap.SampleAccounts
	f.Bootstrap.AdminPassword = c.Bootstrap.AdminPassword
	f.RefreshInterval = timex.Duration{Duration: c.RefreshInterval}
}

func (f *fileConfig) apply(c *Config) {
	c.DataDir = f.DataDir
	c.Store = StoreConfig{Driver: f.Store.Driver, DSN: f.Store.DSN, KeyPrefix: f.Store.KeyPrefix}
	c.Log = LogConfig{Backend: f.Log.Backend, Level: f.Log.Level, Format: f.Log.Format, File: f.Log.File}
	c.Session = SessionConfig{Secret: f.Session.Secret, TTL: f.Session.TTL.Duration}
	c.Hash = HashConfig{Algorithm: f.Hash.Algorithm, Argon2: f.Hash.Argon2, BcryptCost: f.Hash.BcryptCost}
	// a file that names ranks replaces the whole ladder
	if len(f.Ranks) > 0 {
		c.Ranks = f.Ranks
	}
	c.Progress.AwardRepeatCompletions = f.Progress.AwardRepeatCompletions
	c.Terminal.BufferLines = f.Terminal.BufferLines
	c.Audit.Cap = f.Audit.Cap
	c.Bootstrap = BootstrapConfig{
		DemoAccount:    f.Bootstrap.DemoAccount,
		SampleAccounts: f.Bootstrap.SampleAccounts,
		AdminPassword:  f.Bootstrap.AdminPassword,
	}
	c.RefreshInterval = f.RefreshInterval.Duration
}

// parseFile overlays cfg with the file given by -c/-config, if any.
// The format follows the extension: .yaml/.yml is YAML, anything else JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}
	return loadFile(cfg, path)
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	fc.from(cfg)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}
