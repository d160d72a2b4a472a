package workspace

import (
	"context"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// References returns every occurrence of the symbol's identifier across the
// solution as LSP locations. The search is name-based: without full semantic
// binding, every identifier spelled like the symbol counts as a reference.
func References(ctx context.Context, s *Solution, sym *Symbol) ([]protocol.Location, error) {
	if sym == nil || sym.Name == "" {
		return nil, nil
	}
	var out []protocol.Location
	var walkErr error
	s.AllDocuments(func(proj *Project, doc *Document) bool {
		if err := ctx.Err(); err != nil {
			walkErr = err
			return false
		}
		for _, r := range identifierOccurrences(doc, sym.Name) {
			out = append(out, protocol.Location{URI: doc.URI(), Range: r})
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

// ReferencesInDocument restricts the reference search to a single document.
func ReferencesInDocument(doc *Document, sym *Symbol) []protocol.Location {
	if sym == nil || sym.Name == "" {
		return nil
	}
	var out []protocol.Location
	for _, r := range identifierOccurrences(doc, sym.Name) {
		out = append(out, protocol.Location{URI: doc.URI(), Range: r})
	}
	return out
}

// identifierOccurrences returns the ranges of all identifier nodes whose text
// equals name.
func identifierOccurrences(doc *Document, name string) []protocol.Range {
	root := doc.Root()
	if root == nil {
		return nil
	}
	var out []protocol.Range
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if n.Kind() == "identifier" && doc.NodeText(n) == name {
			out = append(out, nodeRange(n))
			return
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(root)
	return out
}

// Implementations finds declarations implementing or deriving from the
// symbol: type declarations whose base list names it, and same-named members
// declared in those types.
func Implementations(ctx context.Context, s *Solution, sym *Symbol) ([]*Symbol, error) {
	if sym == nil || sym.Name == "" {
		return nil, nil
	}

	switch sym.Kind {
	case protocol.SymbolClass, protocol.SymbolInterface, protocol.SymbolStruct:
		return derivedTypes(ctx, s, sym.Name)
	case protocol.SymbolMethod, protocol.SymbolProperty, protocol.SymbolEvent:
		// Implementations of a member live in types deriving from its
		// container.
		container := lastSegment(sym.ContainerName)
		if container == "" {
			return nil, nil
		}
		derived, err := derivedTypes(ctx, s, container)
		if err != nil {
			return nil, err
		}
		var out []*Symbol
		for _, typ := range derived {
			for _, member := range Declarations(typ.Document, typ.Project) {
				if member.Name == sym.Name && member.ContainerName == typ.FullName {
					out = append(out, member)
				}
			}
		}
		return out, nil
	}
	return nil, nil
}

// derivedTypes returns type declarations whose base list mentions baseName.
func derivedTypes(ctx context.Context, s *Solution, baseName string) ([]*Symbol, error) {
	var out []*Symbol
	var walkErr error
	s.AllDocuments(func(proj *Project, doc *Document) bool {
		if err := ctx.Err(); err != nil {
			walkErr = err
			return false
		}
		root := doc.Root()
		if root == nil {
			return true
		}
		var visit func(n *tree_sitter.Node)
		visit = func(n *tree_sitter.Node) {
			switch n.Kind() {
			case "class_declaration", "interface_declaration", "struct_declaration", "record_declaration":
				if baseListMentions(doc, n, baseName) {
					if sym := declarationSymbol(doc, proj, n, declarationKinds[n.Kind()], containerOf(doc, n)); sym != nil {
						out = append(out, sym)
					}
				}
			}
			for i := uint(0); i < n.NamedChildCount(); i++ {
				visit(n.NamedChild(i))
			}
		}
		visit(root)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return out, nil
}

func baseListMentions(doc *Document, typeDecl *tree_sitter.Node, baseName string) bool {
	for i := uint(0); i < typeDecl.NamedChildCount(); i++ {
		child := typeDecl.NamedChild(i)
		if child.Kind() != "base_list" {
			continue
		}
		if len(identifierOccurrencesIn(doc, child, baseName)) > 0 {
			return true
		}
	}
	return false
}

func identifierOccurrencesIn(doc *Document, node *tree_sitter.Node, name string) []protocol.Range {
	var out []protocol.Range
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if n.Kind() == "identifier" && doc.NodeText(n) == name {
			out = append(out, nodeRange(n))
			return
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(node)
	return out
}

// containerOf recomputes the dotted container name of a declaration node by
// walking its ancestors.
func containerOf(doc *Document, node *tree_sitter.Node) string {
	var parts []string
	for p := node.Parent(); p != nil; p = p.Parent() {
		if _, ok := declarationKinds[p.Kind()]; !ok {
			continue
		}
		if nameNode := p.ChildByFieldName("name"); nameNode != nil {
			parts = append([]string{doc.NodeText(nameNode)}, parts...)
		}
	}
	return joinDotted(parts)
}

func joinDotted(parts []string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += "."
		}
		out += p
	}
	return out
}

func lastSegment(dotted string) string {
	for i := len(dotted) - 1; i >= 0; i-- {
		if dotted[i] == '.' {
			return dotted[i+1:]
		}
	}
	return dotted
}

// Rename produces a new solution in which every occurrence of the symbol's
// identifier is replaced by newName. The original solution is untouched; the
// caller diffs the two to build a workspace edit.
func Rename(ctx context.Context, s *Solution, sym *Symbol, newName string) (*Solution, error) {
	if sym == nil || sym.Name == "" || newName == sym.Name {
		return s, nil
	}
	out := s
	var renameErr error
	s.AllDocuments(func(_ *Project, doc *Document) bool {
		if err := ctx.Err(); err != nil {
			renameErr = err
			return false
		}
		occurrences := identifierOccurrences(doc, sym.Name)
		if len(occurrences) == 0 {
			return true
		}
		content := doc.Text()
		// Replace back-to-front so earlier spans stay valid.
		for i := len(occurrences) - 1; i >= 0; i-- {
			start := doc.OffsetAt(occurrences[i].Start)
			end := doc.OffsetAt(occurrences[i].End)
			content = content[:start] + newName + content[end:]
		}
		next, err := out.WithDocumentText(doc.URI(), content)
		if err != nil {
			return true
		}
		out = next
		return true
	})
	if renameErr != nil {
		return nil, renameErr
	}
	return out, nil
}
