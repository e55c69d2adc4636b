package version

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetBuildVars(t *testing.T) {
	t.Helper()
	origVersion, origCommit, origBuildTime := version, commit, buildTime
	t.Cleanup(func() {
		version, commit, buildTime = origVersion, origCommit, origBuildTime
	})
	SetBuildVars("", "", "")
}

func TestGet_DefaultsWhenUnset(t *testing.T) {
	resetBuildVars(t)

	info := Get()
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.Commit)
	assert.Equal(t, "unknown", info.BuildTime)
}

func TestGet_UsesInjectedValues(t *testing.T) {
	resetBuildVars(t)
	SetBuildVars("v2.1.0", "abc123def", "2026-01-15T09:30:00Z")

	info := Get()
	assert.Equal(t, "v2.1.0", info.Version)
	assert.Equal(t, "abc123def", info.Commit)
	assert.Equal(t, "2026-01-15T09:30:00Z", info.BuildTime)
}

func TestGet_NormalizesBuildTimeToUTC(t *testing.T) {
	resetBuildVars(t)
	SetBuildVars("v1.0.0", "abc", "2026-01-15T10:30:00+01:00")

	assert.Equal(t, "2026-01-15T09:30:00Z", Get().BuildTime)
}

func TestGet_PassesThroughUnparseableBuildTime(t *testing.T) {
	resetBuildVars(t)
	SetBuildVars("v1.0.0", "abc", "yesterday")

	assert.Equal(t, "yesterday", Get().BuildTime)
}

func TestWrite_Short(t *testing.T) {
	resetBuildVars(t)
	SetBuildVars("v3.0.0", "ignored", "ignored")

	var buf bytes.Buffer
	require.NoError(t, Get().Write(&buf, true))
	assert.Equal(t, "v3.0.0\n", buf.String())
}

func TestWrite_Full(t *testing.T) {
	resetBuildVars(t)
	SetBuildVars("v3.0.0", "abc123", "2026-01-15T09:30:00Z")

	var buf bytes.Buffer
	require.NoError(t, Get().Write(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "autofix v3.0.0")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "built:  2026-01-15T09:30:00Z")
}
