// Package main serves as the entry point for the autofix application.
// It provides a heuristic repair pipeline for Python source files: files are
// discovered on disk, patched by bracket-balancing and quote-normalization
// passes, and the rewrite is committed only when a tree-sitter parse of the
// result succeeds.
package main

import "autofix/cmd"

func main() {
	cmd.Execute()
}
