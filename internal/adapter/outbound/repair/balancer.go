// Package repair implements the heuristic source-repair passes. Each pass is
// speculative text rewriting; the syntax validator downstream is the only
// correctness gate, and every pass assumes a restore path exists when the
// result does not parse.
package repair

import (
	"context"
	"strings"

	"autofix/internal/domain/valueobject"
	"autofix/internal/port/outbound"
)

// BracketBalancer repairs bracket nesting with a single stack-based scan.
//
// The scan is line- and character-oriented: full-line comments are skipped,
// but string contents are not excluded, so brackets inside string literals
// are treated as code. That corruption hazard is accepted; the validator
// rejects and restores any rewrite it breaks.
type BracketBalancer struct{}

// NewBracketBalancer creates a BracketBalancer.
func NewBracketBalancer() *BracketBalancer {
	return &BracketBalancer{}
}

var _ outbound.SourceRepairer = (*BracketBalancer)(nil)

func (b *BracketBalancer) Name() string {
	return "bracket_balance"
}

// Repair scans content and rewrites it so every bracket opens and closes in
// matched pairs: stray closers are deleted, mismatched closers are replaced
// with the expected closer for the innermost open frame, and closers for
// frames still open at end of input are appended in LIFO order.
func (b *BracketBalancer) Repair(_ context.Context, content string) (string, bool) {
	lines := strings.Split(content, "\n")
	var stack []valueobject.BracketFrame
	var out strings.Builder
	out.Grow(len(content))

	for lineIdx, line := range lines {
		if lineIdx > 0 {
			out.WriteByte('\n')
		}
		if isFullLineComment(line) {
			out.WriteString(line)
			continue
		}

		for colIdx, ch := range line {
			switch {
			case valueobject.IsOpeningBracket(ch):
				frame, err := valueobject.NewBracketFrame(ch, lineIdx, colIdx)
				if err == nil {
					stack = append(stack, frame)
				}
				out.WriteRune(ch)
			case valueobject.IsClosingBracket(ch):
				if len(stack) == 0 {
					// Stray closer with nothing open: drop it.
					continue
				}
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Matches(ch) {
					out.WriteRune(ch)
				} else {
					out.WriteRune(top.ExpectedCloser())
				}
			default:
				out.WriteRune(ch)
			}
		}
	}

	// Close remaining frames innermost-first.
	for i := len(stack) - 1; i >= 0; i-- {
		out.WriteRune(stack[i].ExpectedCloser())
	}

	repaired := out.String()
	return repaired, repaired != content
}

// isFullLineComment reports whether the line is a comment after optional
// leading whitespace.
func isFullLineComment(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "#")
}
