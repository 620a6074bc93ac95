package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFlags(t *testing.T) {
	cfg := defaults()
	err := parseFlags(cfg, []string{"audit", "-d", "/tmp/cs", "-s", "memory", "-n", "dsn", "-l", "debug", "-i", "7", "--limit", "5"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cs", cfg.DataDir)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "dsn", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 7*time.Second, cfg.RefreshInterval)
}

func Test_parseFlags_KeepsValuesWhenAbsent(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseFlags(cfg, nil))
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
}

func Test_parseFlags_BadInterval(t *testing.T) {
	assert.Error(t, parseFlags(defaults(), []string{"-i", "soon"}))
}
