package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	oldV, oldC, oldD := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
	Version, Commit, Date = "2.1.0", "abc123", "2025-12-01"

	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Equal(t, "Build version: 2.1.0\nBuild date: 2025-12-01\nBuild commit: abc123\n", buf.String())
	assert.Equal(t, "2.1.0", ShortVersion())
}

func TestShortVersion_Unstamped(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "N/A"
	assert.NotEmpty(t, ShortVersion())
	assert.NotEqual(t, "N/A", ShortVersion())
}
