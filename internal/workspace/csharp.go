// Package workspace implements the compiler backend of csharp-ls: an
// immutable solution/project/document model over the tree-sitter C# grammar.
// Every mutation returns a new solution; documents parse lazily, once per
// text version, so snapshots taken by concurrent readers stay valid.
package workspace

import (
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

var csharpLanguage = tree_sitter.NewLanguage(unsafe.Pointer(tree_sitter_c_sharp.Language()))

// Language returns the tree-sitter C# language.
func Language() *tree_sitter.Language { return csharpLanguage }

func parseSource(src []byte) *tree_sitter.Tree {
	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(csharpLanguage); err != nil {
		return nil
	}
	return parser.Parse(src, nil)
}

// nodeRange converts a node's span to an LSP range. Tree-sitter columns are
// byte offsets; C# source is overwhelmingly ASCII on the lines that matter,
// and the text layer re-derives exact UTF-16 ranges where precision counts.
func nodeRange(node *tree_sitter.Node) protocol.Range {
	if node == nil {
		return protocol.Range{}
	}
	start := node.StartPosition()
	end := node.EndPosition()
	return protocol.Range{
		Start: protocol.Position{Line: uint32(start.Row), Character: uint32(start.Column)},
		End:   protocol.Position{Line: uint32(end.Row), Character: uint32(end.Column)},
	}
}

func nodeText(src []byte, node *tree_sitter.Node) string {
	if node == nil {
		return ""
	}
	start := int(node.StartByte())
	end := int(node.EndByte())
	if start > len(src) || end > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

func pointAt(pos protocol.Position) tree_sitter.Point {
	return tree_sitter.Point{Row: uint(pos.Line), Column: uint(pos.Character)}
}

// spansIntersect reports whether two byte spans overlap or touch.
func spansIntersect(aStart, aEnd, bStart, bEnd int) bool {
	return aStart <= bEnd && bStart <= aEnd
}
