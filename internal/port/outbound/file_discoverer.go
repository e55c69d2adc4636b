package outbound

import "context"

// FileDiscoverer walks a directory tree and returns candidate source files.
type FileDiscoverer interface {
	// DiscoverFiles returns the ordered list of files under root that carry
	// the configured source suffix, bounded by maxDepth path separators from
	// root. Excluded directory names are skipped entirely; unreadable
	// directories are skipped silently.
	DiscoverFiles(ctx context.Context, root string, maxDepth int) ([]string, error)
}
