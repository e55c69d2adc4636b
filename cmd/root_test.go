package cmd

import (
	"bytes"
	"testing"

	"autofix/internal/config"
	"autofix/internal/port/inbound"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, 2, v.GetInt("fixer.max_depth"))
	assert.Equal(t, ".py", v.GetString("fixer.file_suffix"))
	assert.Equal(t, ".bak", v.GetString("fixer.backup_suffix"))
	assert.Contains(t, v.GetStringSlice("fixer.excluded_dirs"), "__pycache__")
	assert.Equal(t, "fixers", v.GetString("worker.queue_group"))
	assert.Equal(t, "nats://localhost:4222", v.GetString("nats.url"))
	assert.Equal(t, "json", v.GetString("log.format"))
}

func TestSetDefaults_ProduceValidConfig(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	loaded := config.New(v)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, int64(1048576), loaded.Fixer.MaxSourceSize)
}

func TestVersionCommand(t *testing.T) {
	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "autofix")
}

func TestVersionCommand_Short(t *testing.T) {
	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--short"})

	require.NoError(t, cmd.Execute())
	assert.NotEmpty(t, buf.String())
}

func TestPrintRunReport(t *testing.T) {
	report := &inbound.RunReport{
		FilesFound:  3,
		FilesFixed:  1,
		FilesFailed: 1,
		Files: []inbound.FileReport{
			{Path: "a.py", Status: "unmodified"},
			{Path: "b.py", Status: "validated_ok", Passes: []string{"bracket_balance"}},
			{Path: "c.py", Status: "rejected", Error: "invalid syntax (line 3)"},
		},
	}

	var buf bytes.Buffer
	printRunReport(&buf, report, true)

	out := buf.String()
	assert.Contains(t, out, "ok         a.py")
	assert.Contains(t, out, "fixed      b.py (bracket_balance)")
	assert.Contains(t, out, "rejected   c.py: invalid syntax (line 3)")
	assert.Contains(t, out, "3 files found, 1 fixed, 1 failed (dry run)")
}
