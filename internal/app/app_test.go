package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersib/cybersib/internal/config"
	"github.com/cybersib/cybersib/internal/cryptox"
	"github.com/cybersib/cybersib/internal/models"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.DataDir = t.TempDir()
	c.Store.Driver = driver
	c.Hash.Algorithm = cryptox.AlgorithmBcrypt
	c.Hash.BcryptCost = 4
	c.RefreshInterval = 0
	require.NoError(t, c.Validate())
	return c
}

func run(t *testing.T, c *config.Config, input string) (*App, string) {
	t.Helper()
	ctx := context.Background()
	a, err := NewApp(ctx, c, Options{Interactive: true})
	require.NoError(t, err)

	var out bytes.Buffer
	a.Run(ctx, strings.NewReader(input), &out)
	return a, out.String()
}

func TestApp_ProgressSurvivesRestart(t *testing.T) {
	c := testConfig(t, config.DriverSQLite)
	ctx := context.Background()

	a, out := run(t, c, "login\ndemo\ndemo2024\nstart 1\ncomplete 1 10\nexit\n")
	assert.Contains(t, out, "Achievement unlocked: First Blood")
	require.NoError(t, a.Close(ctx))

	_, err := os.Stat(filepath.Join(c.DataDir, "cybersib.db"))
	require.NoError(t, err)

	b, err := NewApp(ctx, c, Options{Interactive: true})
	require.NoError(t, err)
	defer b.Close(ctx)

	u, ok := b.Auth.CurrentUser()
	require.True(t, ok, "session should be restored")
	assert.Equal(t, "demo", u.Username)
	assert.Equal(t, 10, u.Points)

	demo, _ := b.Store().FindUser(func(u models.User) bool { return u.Username == "demo" })
	recs, err := b.Progress.UserProgress(demo.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, models.StatusCompleted, recs[0].Status)

	logs := b.Store().Logs(0)
	require.NotEmpty(t, logs)
	assert.Equal(t, models.ActionSessionRestore, logs[len(logs)-1].Action)
}

func TestApp_InteractiveLogsGoToDataDir(t *testing.T) {
	c := testConfig(t, config.DriverMemory)
	a, _ := run(t, c, "exit\n")
	require.NoError(t, a.Close(context.Background()))

	matches, err := filepath.Glob(filepath.Join(c.DataDir, "cybersib.log*"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestApp_BadDriverFails(t *testing.T) {
	c := testConfig(t, config.DriverMemory)
	c.Store.Driver = "floppy"
	_, err := NewApp(context.Background(), c, Options{})
	assert.Error(t, err)
}
