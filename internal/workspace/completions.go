package workspace

import (
	"sort"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// Completion is a backend completion candidate. Tags are Roslyn-style; the
// first tag determines the LSP completion item kind.
type Completion struct {
	Label  string
	Detail string
	Tags   []string
}

var csharpKeywords = []string{
	"abstract", "as", "base", "bool", "break", "byte", "case", "catch",
	"char", "checked", "class", "const", "continue", "decimal", "default",
	"delegate", "do", "double", "else", "enum", "event", "explicit", "extern",
	"false", "finally", "fixed", "float", "for", "foreach", "goto", "if",
	"implicit", "in", "int", "interface", "internal", "is", "lock", "long",
	"namespace", "new", "null", "object", "operator", "out", "override",
	"params", "private", "protected", "public", "readonly", "ref", "return",
	"sbyte", "sealed", "short", "sizeof", "stackalloc", "static", "string",
	"struct", "switch", "this", "throw", "true", "try", "typeof", "uint",
	"ulong", "unchecked", "unsafe", "ushort", "using", "var", "virtual",
	"void", "volatile", "while",
}

// Completions produces completion candidates at the given position. After a
// member access dot the receiver's members are offered when the receiver
// resolves to a known type; otherwise keywords, framework types, and every
// declaration visible in the solution are offered.
func Completions(s *Solution, doc *Document, pos protocol.Position) []Completion {
	if receiver, ok := memberAccessReceiver(doc, pos); ok {
		if items := memberCompletions(s, doc, receiver); len(items) > 0 {
			return items
		}
	}

	seen := make(map[string]bool)
	var items []Completion
	add := func(c Completion) {
		if c.Label == "" || seen[c.Label] {
			return
		}
		seen[c.Label] = true
		items = append(items, c)
	}

	for _, kw := range csharpKeywords {
		add(Completion{Label: kw, Tags: []string{"Keyword"}})
	}
	for name, ft := range frameworkIndex {
		add(Completion{Label: name, Detail: ft.FullName, Tags: symbolTags(ft.Kind)})
	}
	s.AllDocuments(func(proj *Project, d *Document) bool {
		for _, sym := range Declarations(d, proj) {
			add(Completion{Label: sym.Name, Detail: sym.Display, Tags: sym.Tags})
		}
		return true
	})

	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

// memberAccessReceiver returns the identifier immediately before a trailing
// '.' at pos, if the position is a member access.
func memberAccessReceiver(doc *Document, pos protocol.Position) (string, bool) {
	offset := doc.OffsetAt(pos)
	content := doc.Text()
	if offset > len(content) {
		offset = len(content)
	}
	i := offset - 1
	// Skip a partially typed member name.
	for i >= 0 && isWordByte(content[i]) {
		i--
	}
	if i < 0 || content[i] != '.' {
		return "", false
	}
	end := i
	for i > 0 && isWordByte(content[i-1]) {
		i--
	}
	if i == end {
		return "", false
	}
	return content[i:end], true
}

func isWordByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

// memberCompletions offers members of the receiver's type: framework members
// for known framework types, member declarations for source types.
func memberCompletions(s *Solution, doc *Document, receiver string) []Completion {
	if ft, ok := lookupFramework(receiver); ok {
		items := make([]Completion, 0, len(ft.Members))
		for _, m := range ft.Members {
			items = append(items, Completion{Label: m.Name, Detail: ft.FullName + "." + m.Name, Tags: m.Tags})
		}
		return items
	}

	// Receiver may name a source type; offer its member declarations.
	typeDecl := findDeclaration(s, doc, receiver)
	if typeDecl == nil || !typeDecl.HasSourceDefinition() {
		return nil
	}
	switch typeDecl.Kind {
	case protocol.SymbolClass, protocol.SymbolInterface, protocol.SymbolStruct, protocol.SymbolEnum:
	default:
		return nil
	}

	var items []Completion
	for _, sym := range Declarations(typeDecl.Document, typeDecl.Project) {
		if sym.ContainerName == typeDecl.FullName {
			items = append(items, Completion{Label: sym.Name, Detail: sym.Display, Tags: sym.Tags})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

// CompletionKindForTag maps the first Roslyn-style tag to an LSP completion
// item kind.
func CompletionKindForTag(tags []string) protocol.CompletionItemKind {
	if len(tags) == 0 {
		return protocol.CompletionKindText
	}
	switch tags[0] {
	case "Class":
		return protocol.CompletionKindClass
	case "Structure":
		return protocol.CompletionKindStruct
	case "Interface":
		return protocol.CompletionKindInterface
	case "Enum":
		return protocol.CompletionKindEnum
	case "EnumMember":
		return protocol.CompletionKindEnumMember
	case "Delegate":
		return protocol.CompletionKindFunction
	case "Method", "ExtensionMethod":
		return protocol.CompletionKindMethod
	case "Property":
		return protocol.CompletionKindProperty
	case "Field":
		return protocol.CompletionKindField
	case "Event":
		return protocol.CompletionKindEvent
	case "Constant":
		return protocol.CompletionKindConstant
	case "Local", "Parameter", "RangeVariable":
		return protocol.CompletionKindVariable
	case "Keyword":
		return protocol.CompletionKindKeyword
	case "Namespace":
		return protocol.CompletionKindModule
	case "TypeParameter":
		return protocol.CompletionKindTypeParameter
	}
	return protocol.CompletionKindText
}
