// Package treesitter implements syntax validation using the tree-sitter
// Python grammar. A parse that yields no ERROR or missing nodes accepts the
// text; anything else rejects it with the first error's location.
package treesitter

import (
	"context"
	"errors"
	"fmt"

	forest "github.com/alexaandru/go-sitter-forest"
	tree_sitter "github.com/alexaandru/go-tree-sitter-bare"

	"autofix/internal/port/outbound"
)

const errorNodeType = "ERROR"

// PythonValidator validates Python source text against the real grammar.
type PythonValidator struct {
	grammar *tree_sitter.Language
}

// NewPythonValidator creates a PythonValidator, loading the Python grammar.
func NewPythonValidator() (*PythonValidator, error) {
	grammar := forest.GetLanguage("python")
	if grammar == nil {
		return nil, errors.New("failed to load python grammar")
	}
	return &PythonValidator{grammar: grammar}, nil
}

var _ outbound.SyntaxValidator = (*PythonValidator)(nil)

// Validate parses source and reports whether it is syntactically valid. For
// invalid source the result carries the first error node's position (1-based
// line, 0-based column) and a short message quoting the offending token.
func (v *PythonValidator) Validate(ctx context.Context, source string) (outbound.ValidationResult, error) {
	parser := tree_sitter.NewParser()
	if !parser.SetLanguage(v.grammar) {
		return outbound.ValidationResult{}, errors.New("failed to set python language on parser")
	}

	tree, err := parser.ParseString(ctx, nil, []byte(source))
	if err != nil {
		return outbound.ValidationResult{}, fmt.Errorf("parsing source: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return outbound.ValidationResult{Valid: true}, nil
	}

	result := outbound.ValidationResult{Valid: false, Message: "invalid syntax detected by parser"}
	if errorNode := findFirstErrorNode(root); !errorNode.IsNull() {
		result.Line = int(errorNode.StartPoint().Row) + 1
		result.Column = int(errorNode.StartPoint().Column)
		result.Message = describeErrorNode(errorNode, []byte(source))
	}
	return result, nil
}

// findFirstErrorNode recursively finds the first ERROR or missing node.
func findFirstErrorNode(node tree_sitter.Node) tree_sitter.Node {
	if node.Type() == errorNodeType || node.IsMissing() {
		return node
	}

	for i := range node.ChildCount() {
		child := node.Child(i)
		if errorNode := findFirstErrorNode(child); !errorNode.IsNull() {
			return errorNode
		}
	}

	return tree_sitter.Node{} // null node
}

// describeErrorNode builds a short message quoting the error node's text.
func describeErrorNode(errorNode tree_sitter.Node, source []byte) string {
	snippet := errorNode.Content(source)
	if len(snippet) > 50 {
		snippet = snippet[:50] + "..."
	}
	if snippet == "" {
		return "invalid syntax: parse error"
	}
	return fmt.Sprintf("invalid syntax: unexpected token '%s'", snippet)
}
