package repair

import (
	"fmt"
	"os"

	domainerrors "autofix/internal/domain/errors/domain"
	"autofix/internal/port/outbound"
)

// FileBackupStore writes sidecar backups next to the original file. A backup
// is written at most once per path: if the sidecar already exists it is left
// untouched, so the first pre-repair content survives repeated runs. Backups
// are never deleted.
type FileBackupStore struct {
	suffix string
}

// NewFileBackupStore creates a FileBackupStore using the given sidecar
// suffix, ".bak" when empty.
func NewFileBackupStore(suffix string) *FileBackupStore {
	if suffix == "" {
		suffix = ".bak"
	}
	return &FileBackupStore{suffix: suffix}
}

var _ outbound.BackupStore = (*FileBackupStore)(nil)

// EnsureBackup writes content to path+suffix unless that file already exists.
// It returns the backup path and whether a new backup was written.
func (s *FileBackupStore) EnsureBackup(path string, content []byte) (string, bool, error) {
	backupPath := path + s.suffix

	if _, err := os.Stat(backupPath); err == nil {
		return backupPath, false, nil
	} else if !os.IsNotExist(err) {
		return "", false, fmt.Errorf("%w: stat %s: %w", domainerrors.ErrWriteFailed, backupPath, err)
	}

	if err := os.WriteFile(backupPath, content, 0o644); err != nil {
		return "", false, fmt.Errorf("%w: %s: %w", domainerrors.ErrWriteFailed, backupPath, err)
	}
	return backupPath, true, nil
}
