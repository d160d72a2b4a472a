package workspace

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// frameworkType describes a well-known type from the base class library.
// Until a portable-executable metadata reader lands, symbols that resolve
// into compiled references are served from this index and decompilation
// synthesizes a skeleton declaration.
// TODO(metadata): read member signatures from assembly metadata tables
// instead of this static index.
type frameworkType struct {
	FullName string
	Assembly string
	Kind     protocol.SymbolKind
	Keyword  string // class, struct, interface
	Static   bool
	Members  []frameworkMember
}

type frameworkMember struct {
	Name      string
	Signature string // member declaration line inside the stub
	Tags      []string
}

var frameworkIndex = map[string]frameworkType{
	"Console": {
		FullName: "System.Console", Assembly: "System.Console", Kind: protocol.SymbolClass,
		Keyword: "class", Static: true,
		Members: []frameworkMember{
			{Name: "Write", Signature: "public static void Write(object value) { }", Tags: []string{"Method"}},
			{Name: "WriteLine", Signature: "public static void WriteLine(object value) { }", Tags: []string{"Method"}},
			{Name: "ReadLine", Signature: "public static string ReadLine() { return null; }", Tags: []string{"Method"}},
			{Name: "ReadKey", Signature: "public static ConsoleKeyInfo ReadKey() { return default; }", Tags: []string{"Method"}},
		},
	},
	"Object": {
		FullName: "System.Object", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class",
		Members: []frameworkMember{
			{Name: "ToString", Signature: "public virtual string ToString() { return null; }", Tags: []string{"Method"}},
			{Name: "Equals", Signature: "public virtual bool Equals(object obj) { return false; }", Tags: []string{"Method"}},
			{Name: "GetHashCode", Signature: "public virtual int GetHashCode() { return 0; }", Tags: []string{"Method"}},
			{Name: "GetType", Signature: "public Type GetType() { return null; }", Tags: []string{"Method"}},
		},
	},
	"String": {
		FullName: "System.String", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class",
		Members: []frameworkMember{
			{Name: "Length", Signature: "public int Length { get; }", Tags: []string{"Property"}},
			{Name: "Substring", Signature: "public string Substring(int startIndex) { return null; }", Tags: []string{"Method"}},
			{Name: "Contains", Signature: "public bool Contains(string value) { return false; }", Tags: []string{"Method"}},
			{Name: "Split", Signature: "public string[] Split(char separator) { return null; }", Tags: []string{"Method"}},
			{Name: "Trim", Signature: "public string Trim() { return null; }", Tags: []string{"Method"}},
		},
	},
	"Int32": {
		FullName: "System.Int32", Assembly: "System.Runtime", Kind: protocol.SymbolStruct, Keyword: "struct",
		Members: []frameworkMember{
			{Name: "MaxValue", Signature: "public const int MaxValue = 2147483647;", Tags: []string{"Constant"}},
			{Name: "MinValue", Signature: "public const int MinValue = -2147483648;", Tags: []string{"Constant"}},
			{Name: "Parse", Signature: "public static int Parse(string s) { return 0; }", Tags: []string{"Method"}},
			{Name: "TryParse", Signature: "public static bool TryParse(string s, out int result) { result = 0; return false; }", Tags: []string{"Method"}},
		},
	},
	"Math": {
		FullName: "System.Math", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class", Static: true,
		Members: []frameworkMember{
			{Name: "Abs", Signature: "public static int Abs(int value) { return 0; }", Tags: []string{"Method"}},
			{Name: "Max", Signature: "public static int Max(int val1, int val2) { return 0; }", Tags: []string{"Method"}},
			{Name: "Min", Signature: "public static int Min(int val1, int val2) { return 0; }", Tags: []string{"Method"}},
			{Name: "PI", Signature: "public const double PI = 3.141592653589793;", Tags: []string{"Constant"}},
		},
	},
	"Exception": {
		FullName: "System.Exception", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class",
		Members: []frameworkMember{
			{Name: "Message", Signature: "public virtual string Message { get; }", Tags: []string{"Property"}},
			{Name: "StackTrace", Signature: "public virtual string StackTrace { get; }", Tags: []string{"Property"}},
			{Name: "InnerException", Signature: "public Exception InnerException { get; }", Tags: []string{"Property"}},
		},
	},
	"DateTime": {
		FullName: "System.DateTime", Assembly: "System.Runtime", Kind: protocol.SymbolStruct, Keyword: "struct",
		Members: []frameworkMember{
			{Name: "Now", Signature: "public static DateTime Now { get; }", Tags: []string{"Property"}},
			{Name: "UtcNow", Signature: "public static DateTime UtcNow { get; }", Tags: []string{"Property"}},
			{Name: "AddDays", Signature: "public DateTime AddDays(double value) { return default; }", Tags: []string{"Method"}},
		},
	},
	"Guid": {
		FullName: "System.Guid", Assembly: "System.Runtime", Kind: protocol.SymbolStruct, Keyword: "struct",
		Members: []frameworkMember{
			{Name: "NewGuid", Signature: "public static Guid NewGuid() { return default; }", Tags: []string{"Method"}},
			{Name: "Empty", Signature: "public static readonly Guid Empty;", Tags: []string{"Field"}},
		},
	},
	"Task": {
		FullName: "System.Threading.Tasks.Task", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class",
		Members: []frameworkMember{
			{Name: "Run", Signature: "public static Task Run(Action action) { return null; }", Tags: []string{"Method"}},
			{Name: "Delay", Signature: "public static Task Delay(int millisecondsDelay) { return null; }", Tags: []string{"Method"}},
			{Name: "Wait", Signature: "public void Wait() { }", Tags: []string{"Method"}},
		},
	},
	"List": {
		FullName: "System.Collections.Generic.List", Assembly: "System.Collections", Kind: protocol.SymbolClass, Keyword: "class",
		Members: []frameworkMember{
			{Name: "Add", Signature: "public void Add(object item) { }", Tags: []string{"Method"}},
			{Name: "Remove", Signature: "public bool Remove(object item) { return false; }", Tags: []string{"Method"}},
			{Name: "Count", Signature: "public int Count { get; }", Tags: []string{"Property"}},
			{Name: "Clear", Signature: "public void Clear() { }", Tags: []string{"Method"}},
		},
	},
	"Dictionary": {
		FullName: "System.Collections.Generic.Dictionary", Assembly: "System.Collections", Kind: protocol.SymbolClass, Keyword: "class",
		Members: []frameworkMember{
			{Name: "Add", Signature: "public void Add(object key, object value) { }", Tags: []string{"Method"}},
			{Name: "ContainsKey", Signature: "public bool ContainsKey(object key) { return false; }", Tags: []string{"Method"}},
			{Name: "Count", Signature: "public int Count { get; }", Tags: []string{"Property"}},
		},
	},
	"StringBuilder": {
		FullName: "System.Text.StringBuilder", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class",
		Members: []frameworkMember{
			{Name: "Append", Signature: "public StringBuilder Append(string value) { return this; }", Tags: []string{"Method"}},
			{Name: "AppendLine", Signature: "public StringBuilder AppendLine(string value) { return this; }", Tags: []string{"Method"}},
			{Name: "ToString", Signature: "public override string ToString() { return null; }", Tags: []string{"Method"}},
		},
	},
	"Environment": {
		FullName: "System.Environment", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class", Static: true,
		Members: []frameworkMember{
			{Name: "NewLine", Signature: "public static string NewLine { get; }", Tags: []string{"Property"}},
			{Name: "Exit", Signature: "public static void Exit(int exitCode) { }", Tags: []string{"Method"}},
			{Name: "GetEnvironmentVariable", Signature: "public static string GetEnvironmentVariable(string variable) { return null; }", Tags: []string{"Method"}},
		},
	},
	"Convert": {
		FullName: "System.Convert", Assembly: "System.Runtime", Kind: protocol.SymbolClass, Keyword: "class", Static: true,
		Members: []frameworkMember{
			{Name: "ToInt32", Signature: "public static int ToInt32(object value) { return 0; }", Tags: []string{"Method"}},
			{Name: "ToString", Signature: "public static string ToString(object value) { return null; }", Tags: []string{"Method"}},
		},
	},
	"IDisposable": {
		FullName: "System.IDisposable", Assembly: "System.Runtime", Kind: protocol.SymbolInterface, Keyword: "interface",
		Members: []frameworkMember{
			{Name: "Dispose", Signature: "void Dispose();", Tags: []string{"Method"}},
		},
	},
	"IEnumerable": {
		FullName: "System.Collections.IEnumerable", Assembly: "System.Runtime", Kind: protocol.SymbolInterface, Keyword: "interface",
		Members: []frameworkMember{
			{Name: "GetEnumerator", Signature: "IEnumerator GetEnumerator();", Tags: []string{"Method"}},
		},
	},
}

func lookupFramework(name string) (frameworkType, bool) {
	ft, ok := frameworkIndex[name]
	return ft, ok
}

// LookupFrameworkFullName finds a framework type by its full reflection name.
func LookupFrameworkFullName(fullName string) (frameworkType, bool) {
	for _, ft := range frameworkIndex {
		if ft.FullName == fullName {
			return ft, true
		}
	}
	return frameworkType{}, false
}

// Decompile produces C# source for the containing top-level type of a
// metadata symbol. Known framework types get their indexed member skeletons;
// anything else gets a minimal empty declaration. Decompilation never fails.
func Decompile(assemblyName, fullName string) string {
	ns, typeName := splitReflectionName(fullName)

	var b strings.Builder
	fmt.Fprintf(&b, "// Decompiled from %s\n", assemblyName)
	fmt.Fprintf(&b, "namespace %s\n{\n", ns)

	if ft, ok := LookupFrameworkFullName(fullName); ok {
		staticMod := ""
		if ft.Static {
			staticMod = "static "
		}
		fmt.Fprintf(&b, "    public %s%s %s\n    {\n", staticMod, ft.Keyword, typeName)
		for _, m := range ft.Members {
			fmt.Fprintf(&b, "        %s\n", m.Signature)
		}
		b.WriteString("    }\n")
	} else {
		fmt.Fprintf(&b, "    public class %s\n    {\n    }\n", typeName)
	}

	b.WriteString("}\n")
	return b.String()
}

func splitReflectionName(fullName string) (ns, typeName string) {
	i := strings.LastIndexByte(fullName, '.')
	if i < 0 {
		return "System", fullName
	}
	return fullName[:i], fullName[i+1:]
}

// BestMatchRange walks a decompiled document's tree for the declaration
// identifier best matching the symbol's simple name. When nothing matches,
// the fallback range (0,0)-(0,1) is returned, never an error.
func BestMatchRange(doc *Document, fullName string) protocol.Range {
	want := lastSegment(fullName)
	root := doc.Root()
	if root != nil {
		var found *tree_sitter.Node
		var visit func(n *tree_sitter.Node)
		visit = func(n *tree_sitter.Node) {
			if found != nil {
				return
			}
			if _, ok := declarationKinds[n.Kind()]; ok {
				if nameNode := n.ChildByFieldName("name"); nameNode != nil && doc.NodeText(nameNode) == want {
					found = nameNode
					return
				}
			}
			for i := uint(0); i < n.NamedChildCount(); i++ {
				visit(n.NamedChild(i))
			}
		}
		visit(root)
		if found != nil {
			return nodeRange(found)
		}
	}
	return protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}
}
