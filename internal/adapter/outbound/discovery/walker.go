// Package discovery implements filesystem discovery of candidate source files.
package discovery

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"autofix/internal/application/common/slogger"
	domainerrors "autofix/internal/domain/errors/domain"
	"autofix/internal/port/outbound"
)

// DefaultExcludedDirs lists directory names skipped during discovery. These
// hold third-party or generated code that must never be rewritten.
var DefaultExcludedDirs = []string{
	"venv", ".venv", "env", ".env", ".git", "__pycache__", "node_modules",
}

// Walker discovers files under a root directory up to a bounded depth.
type Walker struct {
	suffix   string
	excluded map[string]struct{}
}

// NewWalker creates a Walker matching files by suffix and skipping the given
// directory names at any level. A nil excludedDirs uses DefaultExcludedDirs.
func NewWalker(suffix string, excludedDirs []string) *Walker {
	if suffix == "" {
		suffix = ".py"
	}
	if excludedDirs == nil {
		excludedDirs = DefaultExcludedDirs
	}
	excluded := make(map[string]struct{}, len(excludedDirs))
	for _, name := range excludedDirs {
		excluded[name] = struct{}{}
	}
	return &Walker{suffix: suffix, excluded: excluded}
}

var _ outbound.FileDiscoverer = (*Walker)(nil)

// DiscoverFiles walks root and returns paths of matching files whose depth
// relative to root does not exceed maxDepth. Depth counts path separators
// between root and the file, so files directly under root are at depth 0.
// Unreadable subtrees are skipped, not fatal; results are sorted for
// deterministic processing order.
func (w *Walker) DiscoverFiles(ctx context.Context, root string, maxDepth int) ([]string, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth must be non-negative, got %d", domainerrors.ErrInvalidInput, maxDepth)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrFileNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domainerrors.ErrInvalidInput, root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if walkErr != nil {
			slogger.Debug(ctx, "Skipping unreadable path during discovery", slogger.Fields{
				"path":  path,
				"error": walkErr.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := w.excluded[d.Name()]; skip {
				return filepath.SkipDir
			}
			if w.depthOf(root, path) > maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(d.Name(), w.suffix) {
			return nil
		}
		if w.depthOf(root, path) > maxDepth {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}

// depthOf returns the number of separators between root and path. A file
// directly under root has depth 0; one level of subdirectory gives depth 1.
func (w *Walker) depthOf(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator))
}
