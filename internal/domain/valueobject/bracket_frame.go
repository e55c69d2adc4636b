package valueobject

import "fmt"

// Bracket pairs recognized by the balancer.
var closerForOpener = map[rune]rune{
	'(': ')',
	'[': ']',
	'{': '}',
}

var openerForCloser = map[rune]rune{
	')': '(',
	']': '[',
	'}': '{',
}

// BracketFrame records an unmatched opening bracket together with its source
// position. Frames are pushed when an opening token is seen and popped when a
// matching closing token arrives in correct nested order; frames still on the
// stack at end of scan denote unclosed brackets.
type BracketFrame struct {
	opener rune
	line   int
	column int
}

// NewBracketFrame creates a frame for an opening bracket at the given
// zero-based line and column.
func NewBracketFrame(opener rune, line, column int) (BracketFrame, error) {
	if _, ok := closerForOpener[opener]; !ok {
		return BracketFrame{}, fmt.Errorf("invalid opening bracket: %q", opener)
	}
	if line < 0 || column < 0 {
		return BracketFrame{}, fmt.Errorf("invalid bracket position: line %d column %d", line, column)
	}
	return BracketFrame{opener: opener, line: line, column: column}, nil
}

// Opener returns the opening bracket character.
func (f BracketFrame) Opener() rune {
	return f.opener
}

// ExpectedCloser returns the closing character that matches the opener.
func (f BracketFrame) ExpectedCloser() rune {
	return closerForOpener[f.opener]
}

// Line returns the zero-based line index of the opener.
func (f BracketFrame) Line() int {
	return f.line
}

// Column returns the zero-based column index of the opener.
func (f BracketFrame) Column() int {
	return f.column
}

// Matches reports whether the given closing character pairs with the opener.
func (f BracketFrame) Matches(closer rune) bool {
	return closerForOpener[f.opener] == closer
}

// IsOpeningBracket reports whether r is a recognized opening bracket.
func IsOpeningBracket(r rune) bool {
	_, ok := closerForOpener[r]
	return ok
}

// IsClosingBracket reports whether r is a recognized closing bracket.
func IsClosingBracket(r rune) bool {
	_, ok := openerForCloser[r]
	return ok
}
