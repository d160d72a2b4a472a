package workspace

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// Symbol is a named declaration resolvable from a source position. A symbol
// has a source definition (Document set), a metadata definition (Assembly
// set), or neither when only the identifier is known.
type Symbol struct {
	Name     string
	FullName string // dotted reflection name, e.g. "Foo.Bar.Class"
	Kind     protocol.SymbolKind

	Document       *Document // nil for metadata and unresolved symbols
	Project        *Project
	Range          protocol.Range // full declaration range
	SelectionRange protocol.Range // identifier range
	ContainerName  string
	Display        string // human display name, e.g. "Class.M()"
	Assembly       string // set for metadata symbols
	Tags           []string
	DocComment     string // formatted XML doc comment, may be ""
}

// HasSourceDefinition reports whether the symbol is declared in source.
func (s *Symbol) HasSourceDefinition() bool { return s != nil && s.Document != nil }

// HasMetadataDefinition reports whether the symbol lives in a compiled
// reference.
func (s *Symbol) HasMetadataDefinition() bool { return s != nil && s.Assembly != "" }

// declarationKinds maps tree-sitter declaration node kinds to symbol kinds.
var declarationKinds = map[string]protocol.SymbolKind{
	"namespace_declaration":             protocol.SymbolNamespace,
	"file_scoped_namespace_declaration": protocol.SymbolNamespace,
	"class_declaration":                 protocol.SymbolClass,
	"record_declaration":                protocol.SymbolClass,
	"interface_declaration":             protocol.SymbolInterface,
	"struct_declaration":                protocol.SymbolStruct,
	"enum_declaration":                  protocol.SymbolEnum,
	"enum_member_declaration":           protocol.SymbolEnumMember,
	"delegate_declaration":              protocol.SymbolFunction,
	"method_declaration":                protocol.SymbolMethod,
	"constructor_declaration":           protocol.SymbolConstructor,
	"destructor_declaration":            protocol.SymbolMethod,
	"operator_declaration":              protocol.SymbolMethod,
	"property_declaration":              protocol.SymbolProperty,
	"indexer_declaration":               protocol.SymbolProperty,
	"event_declaration":                 protocol.SymbolEvent,
}

// symbolTags maps symbol kinds to Roslyn-style tag strings; the first tag
// drives completion item kinds on the wire.
func symbolTags(kind protocol.SymbolKind) []string {
	switch kind {
	case protocol.SymbolNamespace:
		return []string{"Namespace"}
	case protocol.SymbolClass:
		return []string{"Class"}
	case protocol.SymbolInterface:
		return []string{"Interface"}
	case protocol.SymbolStruct:
		return []string{"Structure"}
	case protocol.SymbolEnum:
		return []string{"Enum"}
	case protocol.SymbolEnumMember:
		return []string{"EnumMember"}
	case protocol.SymbolMethod, protocol.SymbolFunction:
		return []string{"Method"}
	case protocol.SymbolConstructor:
		return []string{"Method"}
	case protocol.SymbolProperty:
		return []string{"Property"}
	case protocol.SymbolField:
		return []string{"Field"}
	case protocol.SymbolEvent:
		return []string{"Event"}
	case protocol.SymbolConstant:
		return []string{"Constant"}
	case protocol.SymbolVariable:
		return []string{"Local"}
	}
	return []string{"Class"}
}

// Declarations walks the document's syntax tree and returns every declared
// symbol, including locals. Attribute lists are suppressed.
func Declarations(doc *Document, proj *Project) []*Symbol {
	root := doc.Root()
	if root == nil {
		return nil
	}
	var out []*Symbol
	collectDeclarations(doc, proj, root, "", &out)
	return out
}

func collectDeclarations(doc *Document, proj *Project, node *tree_sitter.Node, container string, out *[]*Symbol) {
	kind := node.Kind()
	if kind == "attribute_list" {
		return
	}

	childContainer := container
	if symKind, ok := declarationKinds[kind]; ok {
		if sym := declarationSymbol(doc, proj, node, symKind, container); sym != nil {
			*out = append(*out, sym)
			childContainer = sym.FullName
		}
	} else {
		switch kind {
		case "field_declaration", "event_field_declaration", "local_declaration_statement":
			fieldKind := protocol.SymbolField
			if kind == "event_field_declaration" {
				fieldKind = protocol.SymbolEvent
			} else if kind == "local_declaration_statement" {
				fieldKind = protocol.SymbolVariable
			}
			for _, sym := range declaratorSymbols(doc, proj, node, fieldKind, container) {
				*out = append(*out, sym)
			}
		}
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		collectDeclarations(doc, proj, node.NamedChild(i), childContainer, out)
	}
}

// declarationSymbol builds a Symbol for a named declaration node.
func declarationSymbol(doc *Document, proj *Project, node *tree_sitter.Node, kind protocol.SymbolKind, container string) *Symbol {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := doc.NodeText(nameNode)
	if name == "" {
		return nil
	}

	full := name
	if container != "" {
		full = container + "." + name
	}

	display := full
	switch kind {
	case protocol.SymbolMethod, protocol.SymbolConstructor, protocol.SymbolFunction:
		display = full + "(" + parameterText(doc, node) + ")"
	}

	return &Symbol{
		Name:           name,
		FullName:       full,
		Kind:           kind,
		Document:       doc,
		Project:        proj,
		Range:          nodeRange(node),
		SelectionRange: nodeRange(nameNode),
		ContainerName:  container,
		Display:        display,
		Tags:           symbolTags(kind),
		DocComment:     docCommentFor(doc, node),
	}
}

// declaratorSymbols extracts symbols from variable declarators under field,
// event-field, and local declarations.
func declaratorSymbols(doc *Document, proj *Project, node *tree_sitter.Node, kind protocol.SymbolKind, container string) []*Symbol {
	var out []*Symbol
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if n.Kind() == "variable_declarator" {
			nameNode := n.ChildByFieldName("name")
			if nameNode == nil {
				for i := uint(0); i < n.NamedChildCount(); i++ {
					if c := n.NamedChild(i); c.Kind() == "identifier" {
						nameNode = c
						break
					}
				}
			}
			if nameNode == nil {
				return
			}
			name := doc.NodeText(nameNode)
			full := name
			if container != "" {
				full = container + "." + name
			}
			out = append(out, &Symbol{
				Name:           name,
				FullName:       full,
				Kind:           kind,
				Document:       doc,
				Project:        proj,
				Range:          nodeRange(node),
				SelectionRange: nodeRange(nameNode),
				ContainerName:  container,
				Display:        full,
				Tags:           symbolTags(kind),
				DocComment:     docCommentFor(doc, node),
			})
			return
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(node)
	return out
}

func parameterText(doc *Document, node *tree_sitter.Node) string {
	params := node.ChildByFieldName("parameters")
	if params == nil {
		return ""
	}
	t := doc.NodeText(params)
	t = strings.TrimPrefix(t, "(")
	t = strings.TrimSuffix(t, ")")
	return strings.TrimSpace(t)
}

// SymbolAt resolves the symbol under the given position. Resolution prefers
// the enclosing declaration, then declarations in the same document, then the
// rest of the solution, and finally the framework index for metadata symbols. For
// identifiers that resolve nowhere, a bare identifier symbol is returned so
// textual operations (references, highlight) still work.
func SymbolAt(s *Solution, doc *Document, pos protocol.Position) *Symbol {
	node := doc.NodeAt(pos)
	if node == nil {
		return nil
	}
	if node.Kind() != "identifier" {
		// Allow hovering the declaration keyword line by falling through to
		// the declaration's own name.
		if _, ok := declarationKinds[node.Kind()]; !ok {
			return nil
		}
		node = node.ChildByFieldName("name")
		if node == nil {
			return nil
		}
	}
	name := doc.NodeText(node)
	if name == "" {
		return nil
	}
	proj := s.ProjectOf(doc)

	// The identifier may itself be a declaration name.
	if sym := enclosingDeclaration(doc, proj, node, name); sym != nil {
		return sym
	}

	if sym := findDeclaration(s, doc, name); sym != nil {
		return sym
	}

	if ft, ok := lookupFramework(name); ok {
		return &Symbol{
			Name:     name,
			FullName: ft.FullName,
			Kind:     ft.Kind,
			Project:  proj,
			Assembly: ft.Assembly,
			Display:  ft.FullName,
			Tags:     symbolTags(ft.Kind),
		}
	}

	return &Symbol{
		Name:           name,
		FullName:       name,
		Kind:           protocol.SymbolVariable,
		Project:        proj,
		SelectionRange: nodeRange(node),
		Display:        name,
		Tags:           symbolTags(protocol.SymbolVariable),
	}
}

// enclosingDeclaration returns the declaration symbol when node is the name
// of a declaration (or a declarator).
func enclosingDeclaration(doc *Document, proj *Project, node *tree_sitter.Node, name string) *Symbol {
	for _, sym := range Declarations(doc, proj) {
		if sym.Name == name && sym.SelectionRange == nodeRange(node) {
			return sym
		}
	}
	return nil
}

// findDeclaration searches declarations by name: same document first, then
// the rest of the solution.
func findDeclaration(s *Solution, preferred *Document, name string) *Symbol {
	var found *Symbol
	scan := func(proj *Project, doc *Document) bool {
		for _, sym := range Declarations(doc, proj) {
			if sym.Name == name {
				found = sym
				return false
			}
		}
		return true
	}
	if preferred != nil {
		proj := s.ProjectOf(preferred)
		if !scan(proj, preferred) {
			return found
		}
	}
	s.AllDocuments(func(proj *Project, doc *Document) bool {
		if doc == preferred {
			return true
		}
		return scan(proj, doc)
	})
	return found
}

// FindDeclarations lists namespace, type and member declarations matching query across
// the solution, case-insensitively, up to limit. An empty query matches all.
func FindDeclarations(s *Solution, query string, limit int) []*Symbol {
	query = strings.ToLower(query)
	var out []*Symbol
	s.AllDocuments(func(proj *Project, doc *Document) bool {
		for _, sym := range Declarations(doc, proj) {
			if sym.Kind == protocol.SymbolVariable {
				continue // locals are not workspace symbols
			}
			if query != "" && !strings.Contains(strings.ToLower(sym.Name), query) {
				continue
			}
			out = append(out, sym)
			if len(out) >= limit {
				return false
			}
		}
		return true
	})
	return out
}

// docCommentFor collects the /// documentation comment block immediately
// preceding a declaration and strips its XML tags.
func docCommentFor(doc *Document, node *tree_sitter.Node) string {
	var lines []string
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		if prev.Kind() != "comment" {
			break
		}
		t := strings.TrimSpace(doc.NodeText(prev))
		if !strings.HasPrefix(t, "///") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(t, "///"))}, lines...)
	}
	if len(lines) == 0 {
		return ""
	}
	return formatXMLDoc(strings.Join(lines, "\n"))
}

// formatXMLDoc strips XML documentation tags, leaving readable prose.
func formatXMLDoc(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
