package repair

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileBackupStore_EnsureBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	store := NewFileBackupStore(".bak")

	backupPath, written, err := store.EnsureBackup(path, []byte("original\n"))
	require.NoError(t, err)
	assert.True(t, written)
	assert.Equal(t, path+".bak", backupPath)

	data, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, "original\n", string(data))
}

func TestFileBackupStore_FirstBackupWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	store := NewFileBackupStore(".bak")

	_, written, err := store.EnsureBackup(path, []byte("first\n"))
	require.NoError(t, err)
	assert.True(t, written)

	// A later run must not clobber the original backup.
	_, written, err = store.EnsureBackup(path, []byte("second\n"))
	require.NoError(t, err)
	assert.False(t, written)

	data, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(data))
}

func TestFileBackupStore_DefaultSuffix(t *testing.T) {
	store := NewFileBackupStore("")
	dir := t.TempDir()
	path := filepath.Join(dir, "x.py")

	backupPath, _, err := store.EnsureBackup(path, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, path+".bak", backupPath)
}
