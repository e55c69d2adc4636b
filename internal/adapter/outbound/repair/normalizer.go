package repair

import (
	"context"
	"regexp"
	"strings"

	"autofix/internal/port/outbound"
)

// rewriteRule is one step of the normalizer's substitution chain.
type rewriteRule struct {
	pattern *regexp.Regexp
	repl    string
}

// quoteRules is the ordered substitution chain. Order is part of the
// contract: the wide-reach rules (quote runs of six or more) must run before
// the shorter-reach rules, otherwise a narrow rule fires on the fringe of a
// longer run and leaves debris the later rules no longer recognize. Each
// rule's output feeds the next.
var quoteRules = []rewriteRule{
	// Runs of six or more quotes on either side collapse to a triple.
	{regexp.MustCompile(`"{6,}([^"]*)"{6,}`), `"""${1}"""`},
	{regexp.MustCompile(`"{6,}([^"]*)"{3}`), `"""${1}"""`},
	{regexp.MustCompile(`"{3}([^"]*)"{6,}`), `"""${1}"""`},

	// Four- and five-quote runs are triple quotes with debris.
	{regexp.MustCompile(`"{4,5}([^"]*)"{4,5}`), `"""${1}"""`},
	{regexp.MustCompile(`"{3}([^"]*)"{4,5}`), `"""${1}"""`},
	{regexp.MustCompile(`"{4,5}([^"]*)"{3}`), `"""${1}"""`},

	// Single-line docstring closed with one or two quotes.
	{regexp.MustCompile(`(?m)^(\s*)"""([^"\n]+)"{1,2}$`), `${1}"""${2}"""`},

	// Docstring opened with two quotes but closed with three.
	{regexp.MustCompile(`(?m)^(\s*)""([^"\n]+)"""`), `${1}"""${2}"""`},

	// Doubled quotes around an ordinary string literal. Anchored on a
	// non-quote neighbor so the rule cannot eat the fringe of a triple.
	{regexp.MustCompile(`(?m)(^|[^"])""([^"\n]+)""($|[^"])`), `${1}"${2}"${3}`},
}

// docstringBoundary matches lines that should terminate an open docstring:
// the next statement, definition, or decorator.
var docstringBoundary = regexp.MustCompile(
	`^\s*(def\s|class\s|@|if\s|else\b|elif\s|try\b|except\b|finally\b|with\s|return\b|pass\b|[a-zA-Z_][a-zA-Z0-9_]*\s*=)`,
)

// StringNormalizer coerces malformed quote sequences into well-formed
// triple-quoted or single-quoted literal syntax. Like the bracket pass it is
// speculative: it has no lexical model of the language, and the validator
// downstream decides whether its output survives.
type StringNormalizer struct{}

// NewStringNormalizer creates a StringNormalizer.
func NewStringNormalizer() *StringNormalizer {
	return &StringNormalizer{}
}

var _ outbound.SourceRepairer = (*StringNormalizer)(nil)

func (n *StringNormalizer) Name() string {
	return "string_normalize"
}

// Repair applies the ordered substitution chain, then a line-oriented parity
// pass that force-closes docstrings still open at a statement boundary or at
// end of file.
func (n *StringNormalizer) Repair(_ context.Context, content string) (string, bool) {
	repaired := content
	for _, rule := range quoteRules {
		repaired = rule.pattern.ReplaceAllString(repaired, rule.repl)
	}
	repaired = closeOpenDocstrings(repaired)
	return repaired, repaired != content
}

// closeOpenDocstrings tracks triple-quote parity per line. A line with an odd
// number of `"""` opens a docstring; a later line containing `"""` closes it.
// While a docstring is open, a line that reads as a statement boundary gets
// the closer appended to the previous line instead. A docstring still open at
// end of file is closed on the final line.
func closeOpenDocstrings(text string) string {
	lines := strings.Split(text, "\n")
	inTriple := false
	startLine := -1

	for i, line := range lines {
		switch {
		case strings.Contains(line, `"""`) && !inTriple:
			if strings.Count(line, `"""`)%2 == 1 {
				inTriple = true
				startLine = i
			}
		case strings.Contains(line, `"""`) && inTriple:
			inTriple = false
		case inTriple && i > startLine && docstringBoundary.MatchString(line):
			lines[i-1] += `"""`
			inTriple = false
		}
	}

	if inTriple && startLine >= 0 {
		lines[len(lines)-1] += `"""`
	}

	return strings.Join(lines, "\n")
}
