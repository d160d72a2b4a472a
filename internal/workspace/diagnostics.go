package workspace

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// Diagnostics computes per-document diagnostics from the parse tree: syntax
// errors and missing tokens reported by the parser. No semantic (type or
// binding) analysis is performed.
func Diagnostics(doc *Document) []protocol.Diagnostic {
	root := doc.Root()
	if root == nil {
		return nil
	}
	var out []protocol.Diagnostic
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if n.IsError() {
			msg := "Syntax error"
			if t := doc.NodeText(n); t != "" && len(t) <= 40 {
				msg = fmt.Sprintf("Syntax error near %q", t)
			}
			out = append(out, protocol.Diagnostic{
				Range:    nodeRange(n),
				Severity: protocol.SeverityError,
				Source:   "csharp",
				Message:  msg,
			})
			return
		}
		if n.IsMissing() {
			out = append(out, protocol.Diagnostic{
				Range:    nodeRange(n),
				Severity: protocol.SeverityError,
				Source:   "csharp",
				Message:  fmt.Sprintf("Expected %s", n.Kind()),
			})
			return
		}
		if !n.HasError() {
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
	return out
}
