// Package version holds build metadata injected at link time:
//
//	-ldflags "-X autofix/internal/version.version=v1.0.0 -X autofix/internal/version.commit=abc123 -X autofix/internal/version.buildTime=2026-01-01T00:00:00Z"
package version

import (
	"fmt"
	"io"
	"time"
)

//nolint:gochecknoglobals // Set via ldflags during build.
var (
	version   string
	commit    string
	buildTime string
)

const applicationName = "autofix"

// Info is a resolved snapshot of the build metadata.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// Get resolves the injected variables, substituting defaults for anything
// the build did not set.
func Get() Info {
	return Info{
		Version:   orDefault(version, "dev"),
		Commit:    orDefault(commit, "unknown"),
		BuildTime: formatBuildTime(buildTime),
	}
}

// SetBuildVars overrides the injected variables. It exists for build systems
// that inject into the cmd package instead of this one.
func SetBuildVars(v, c, bt string) {
	version = v
	commit = c
	buildTime = bt
}

// Write renders the version report. With short set, only the bare version
// string is printed.
func (i Info) Write(w io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(w, i.Version)
		return err
	}
	_, err := fmt.Fprintf(w, "%s %s\ncommit: %s\nbuilt:  %s\n",
		applicationName, i.Version, i.Commit, i.BuildTime)
	return err
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// formatBuildTime normalizes an RFC3339 build timestamp to UTC; anything
// unparseable is passed through untouched.
func formatBuildTime(raw string) string {
	if raw == "" {
		return "unknown"
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC().Format(time.RFC3339)
	}
	return raw
}
