package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersib/cybersib/internal/config"
	"github.com/cybersib/cybersib/internal/cryptox"
)

// stubConfig makes commands load an in-memory config and records the args
// they passed.
func stubConfig(t *testing.T) *[]string {
	t.Helper()
	var got []string
	old := loadConfig
	t.Cleanup(func() { loadConfig = old })
	loadConfig = func(args []string) (*config.Config, error) {
		got = args
		c := &config.Config{}
		c.LoadDefaults()
		c.DataDir = t.TempDir()
		c.Store.Driver = config.DriverMemory
		c.Log.File = ""
		c.Hash.Algorithm = cryptox.AlgorithmBcrypt
		c.Hash.BcryptCost = 4
		return c, c.Validate()
	}
	return &got
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader("exit\n"))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.Contains(t, out, "Build version:")
	assert.Contains(t, out, "Build commit:")
}

func TestLeaderboardCommand(t *testing.T) {
	got := stubConfig(t)
	out := execute(t, "leaderboard", "--limit", "5", "-s", "memory", "--log-level", "debug")

	assert.Contains(t, out, "CTF leaderboard")
	assert.Contains(t, out, "ctf_champion")
	assert.Equal(t, []string{"-s", "memory", "-l", "debug"}, *got)
}

func TestAuditCommand(t *testing.T) {
	stubConfig(t)
	out := execute(t, "audit")
	assert.Contains(t, out, "Security log")
}

func TestRootCommandRunsClient(t *testing.T) {
	got := stubConfig(t)
	out := execute(t, "-d", "somewhere", "-i", "5")

	assert.Contains(t, out, "CyberSib cyber range")
	assert.Contains(t, out, "Welcome to the CyberSib terminal!")
	assert.Equal(t, []string{"-d", "somewhere", "-i", "5"}, *got)
}

func TestRootCommandRejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"bogus"})
	assert.Error(t, cmd.Execute())
}
