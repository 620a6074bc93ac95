package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/models"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, DriverSQLite, c.Store.Driver)
	assert.Equal(t, 24*time.Hour, c.Session.TTL)
	assert.Equal(t, cryptox.AlgorithmArgon2id, c.Hash.Algorithm)
	assert.Equal(t, 100, c.Terminal.BufferLines)
	assert.Equal(t, 1000, c.Audit.Cap)
	assert.True(t, c.Bootstrap.DemoAccount)
	assert.True(t, c.Bootstrap.SampleAccounts)
	assert.Empty(t, c.Bootstrap.AdminPassword, "no admin account unless configured")
	assert.False(t, c.Progress.AwardRepeatCompletions)
	assert.Equal(t, 30*time.Second, c.RefreshInterval)
	require.NoError(t, c.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	if diff := cmp.Diff(defaults(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("CYBERSIB_LOG_LEVEL=warn\nCYBERSIB_DATA_DIR=/from/env\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("CYBERSIB_LOG_LEVEL")
		os.Unsetenv("CYBERSIB_DATA_DIR")
	})

	yml := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(yml, []byte("data_dir: /from/file\nsession:\n  ttl: 2h\n"), 0o600))

	cfg, err := Load([]string{"-c", yml, "-d", "/from/flag", "leaderboard"})
	require.NoError(t, err)

	assert.Equal(t, "/from/flag", cfg.DataDir)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load([]string{"-s", "mongo"})
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }},
		{"bad hash", func(c *Config) { c.Hash.Algorithm = "sha1" }},
		{"bad ranks", func(c *Config) { c.Ranks = []models.RankTier{{MinPoints: 5, Title: "x"}} }},
		{"zero buffer", func(c *Config) { c.Terminal.BufferLines = 0 }},
		{"zero audit cap", func(c *Config) { c.Audit.Cap = 0 }},
		{"zero ttl", func(c *Config) { c.Session.TTL = 0 }},
		{"zero refresh", func(c *Config) { c.RefreshInterval = 0 }},
		{"short admin password", func(c *Config) { c.Bootstrap.AdminPassword = "admin" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestStoreDSN(t *testing.T) {
	c := defaults()
	c.DataDir = "/var/lib/cybersib"
	assert.Equal(t, "/var/lib/cybersib/cybersib.db", c.StoreDSN())

	c.Store.Driver = DriverRedis
	assert.Equal(t, "redis://127.0.0.1:6379/0", c.StoreDSN())

	c.Store.DSN = "redis://cache:6379/2"
	assert.Equal(t, "redis://cache:6379/2", c.StoreDSN())
}

func TestRankLadder_FromConfig(t *testing.T) {
	c := defaults()
	c.Ranks = []models.RankTier{{MinPoints: 0, Title: "Rookie"}, {MinPoints: 10, Title: "Pro"}}
	assert.Equal(t, "Pro", c.RankLadder().Rank(15))
}
