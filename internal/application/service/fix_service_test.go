package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"autofix/internal/adapter/outbound/discovery"
	"autofix/internal/adapter/outbound/repair"
	"autofix/internal/adapter/outbound/treesitter"
	"autofix/internal/config"
	"autofix/internal/port/outbound"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator treats any source containing the marker "BAD" as invalid.
type stubValidator struct{}

func (stubValidator) Validate(_ context.Context, source string) (outbound.ValidationResult, error) {
	if strings.Contains(source, "BAD") {
		return outbound.ValidationResult{Valid: false, Line: 1, Message: "marker present"}, nil
	}
	return outbound.ValidationResult{Valid: true}, nil
}

// markerRepairer replaces the invalid marker, producing parseable output.
type markerRepairer struct{}

func (markerRepairer) Name() string { return "marker_fix" }

func (markerRepairer) Repair(_ context.Context, content string) (string, bool) {
	fixed := strings.ReplaceAll(content, "BAD", "ok")
	return fixed, fixed != content
}

// touchRepairer changes content without fixing anything.
type touchRepairer struct{}

func (touchRepairer) Name() string { return "touch" }

func (touchRepairer) Repair(_ context.Context, content string) (string, bool) {
	return content + "\n# touched", true
}

func testFixerConfig() config.FixerConfig {
	return config.FixerConfig{
		MaxDepth:      2,
		FileSuffix:    ".py",
		BackupSuffix:  ".bak",
		MaxSourceSize: 1 << 20,
	}
}

func newStubService(repairers []outbound.SourceRepairer) *FixService {
	return NewFixService(
		discovery.NewWalker(".py", nil),
		repairers,
		stubValidator{},
		repair.NewFileBackupStore(".bak"),
		nil,
		nil,
		testFixerConfig(),
	)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestFixService_WellFormedInputIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "good.py")
	writeFile(t, path, "x = 1\n")

	svc := newStubService([]outbound.SourceRepairer{markerRepairer{}})
	report, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesFound)
	assert.Equal(t, 0, report.FilesFixed)
	assert.Equal(t, 0, report.FilesFailed)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "unmodified", report.Files[0].Status)

	// Output equals input and no backup exists.
	assert.Equal(t, "x = 1\n", readFile(t, path))
	_, statErr := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(statErr))
}

func TestFixService_CommitsValidatedRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.py")
	writeFile(t, path, "x = BAD\n")

	svc := newStubService([]outbound.SourceRepairer{markerRepairer{}})
	report, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesFixed)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "validated_ok", report.Files[0].Status)
	assert.Equal(t, []string{"marker_fix"}, report.Files[0].Passes)

	assert.Equal(t, "x = ok\n", readFile(t, path))
	assert.Equal(t, "x = BAD\n", readFile(t, path+".bak"))
}

func TestFixService_RejectedRewriteLeavesDiskUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hopeless.py")
	writeFile(t, path, "x = BAD\n")

	// touchRepairer changes the text but the marker survives, so
	// validation still fails.
	svc := newStubService([]outbound.SourceRepairer{touchRepairer{}})
	report, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 0, report.FilesFixed)
	assert.Equal(t, 1, report.FilesFailed)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "rejected", report.Files[0].Status)
	assert.Equal(t, "still_invalid", report.Files[0].ErrorKind)

	// Restoration guarantee: content identical, no backup written.
	assert.Equal(t, "x = BAD\n", readFile(t, path))
	_, statErr := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(statErr))
}

func TestFixService_UnfixableUnchangedIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stubborn.py")
	writeFile(t, path, "x = BAD\n")

	// No repairer touches the content at all.
	svc := newStubService(nil)
	report, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesFailed)
	assert.Equal(t, "rejected", report.Files[0].Status)
	assert.Empty(t, report.Files[0].Passes)
}

func TestFixService_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.py")
	writeFile(t, path, "x = BAD\n")

	svc := newStubService([]outbound.SourceRepairer{markerRepairer{}})
	report, err := svc.FixDirectory(context.Background(), dir, 2, true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.FilesFixed)
	assert.Equal(t, "validated_ok", report.Files[0].Status)

	assert.Equal(t, "x = BAD\n", readFile(t, path))
	_, statErr := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(statErr))
}

func TestFixService_SecondRunIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.py")
	writeFile(t, path, "x = BAD\n")

	svc := newStubService([]outbound.SourceRepairer{markerRepairer{}})

	first, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)
	require.Equal(t, 1, first.FilesFixed)
	afterFirst := readFile(t, path)

	second, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesFixed)
	assert.Equal(t, "unmodified", second.Files[0].Status)
	assert.Equal(t, afterFirst, readFile(t, path))
}

func TestFixService_RunContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a_good.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "b_broken.py"), "x = BAD\n")

	svc := newStubService([]outbound.SourceRepairer{markerRepairer{}})
	report, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesFound)
	assert.Equal(t, 1, report.FilesFixed)
	assert.Equal(t, 0, report.FilesFailed)
}

func TestFixService_OversizedFileFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.py")
	writeFile(t, path, strings.Repeat("# filler\n", 100))

	cfg := testFixerConfig()
	cfg.MaxSourceSize = 10
	svc := NewFixService(
		discovery.NewWalker(".py", nil),
		nil,
		stubValidator{},
		repair.NewFileBackupStore(".bak"),
		nil,
		nil,
		cfg,
	)

	report, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.Equal(t, "failed", report.Files[0].Status)
	assert.Equal(t, "read_failed", report.Files[0].ErrorKind)
}

func TestFixService_ScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "good.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "bad.py"), "x = BAD\n")

	svc := newStubService(nil)
	report, err := svc.ScanDirectory(context.Background(), dir, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesScanned)
	assert.Equal(t, 1, report.FilesInvalid)
	require.Len(t, report.Files, 2)

	// Walker output is sorted, so bad.py comes first.
	assert.False(t, report.Files[0].Valid)
	assert.True(t, report.Files[1].Valid)

	// Scan never touches disk.
	assert.Equal(t, "x = BAD\n", readFile(t, filepath.Join(dir, "bad.py")))
}

// End-to-end: the real walker, repair passes, and tree-sitter validator.
func TestFixService_EndToEnd(t *testing.T) {
	validator, err := treesitter.NewPythonValidator()
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "unclosed.py"), "print(1\n")
	writeFile(t, filepath.Join(dir, "good.py"), "def f(x):\n    return x\n")
	writeFile(t, filepath.Join(dir, "hopeless.py"), "def f(:\n")

	svc := NewFixService(
		discovery.NewWalker(".py", nil),
		[]outbound.SourceRepairer{repair.NewBracketBalancer(), repair.NewStringNormalizer()},
		validator,
		repair.NewFileBackupStore(".bak"),
		nil,
		nil,
		testFixerConfig(),
	)

	report, err := svc.FixDirectory(context.Background(), dir, 2, false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.FilesFound)
	assert.Equal(t, 1, report.FilesFixed)
	assert.Equal(t, 1, report.FilesFailed)

	byName := map[string]string{}
	for _, f := range report.Files {
		byName[filepath.Base(f.Path)] = f.Status
	}
	assert.Equal(t, "validated_ok", byName["unclosed.py"])
	assert.Equal(t, "unmodified", byName["good.py"])
	assert.Equal(t, "rejected", byName["hopeless.py"])

	// The appended closer lands after the trailing newline; the newline is
	// inside the parentheses, so the result still parses.
	assert.Equal(t, "print(1\n)", readFile(t, filepath.Join(dir, "unclosed.py")))
	assert.Equal(t, "print(1\n", readFile(t, filepath.Join(dir, "unclosed.py")+".bak"))
	assert.Equal(t, "def f(:\n", readFile(t, filepath.Join(dir, "hopeless.py")))
}
