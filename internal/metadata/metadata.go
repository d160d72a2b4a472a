// Package metadata names decompiled metadata documents. Symbols whose
// definitions live in compiled references get stable csharp: URIs of the form
//
//	csharp:/metadata/projects/{Project}/assemblies/{Assembly}/symbols/{FullName}.cs
//
// so editors can navigate into them like ordinary read-only documents.
package metadata

import (
	"strings"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

const Scheme = "csharp"

const pathPrefix = "csharp:/metadata/projects/"

// Descriptor identifies one decompiled top-level type.
type Descriptor struct {
	ProjectName  string
	AssemblyName string
	// SymbolName is the full reflection name of the containing top-level
	// type, e.g. "System.Console".
	SymbolName string
	// Source is the decompiled C# text.
	Source string
}

// URI returns the stable document URI for a decompiled type.
func URI(project, assembly, fullName string) protocol.DocumentURI {
	var b strings.Builder
	b.WriteString(pathPrefix)
	b.WriteString(project)
	b.WriteString("/assemblies/")
	b.WriteString(assembly)
	b.WriteString("/symbols/")
	b.WriteString(fullName)
	b.WriteString(".cs")
	return protocol.DocumentURI(b.String())
}

// IsURI reports whether uri belongs to the decompiled metadata namespace.
func IsURI(uri protocol.DocumentURI) bool {
	return strings.HasPrefix(string(uri), Scheme+":")
}

// ParseURI splits a metadata URI back into its components. ok is false for
// URIs outside the metadata namespace or with an unexpected shape.
func ParseURI(uri protocol.DocumentURI) (project, assembly, fullName string, ok bool) {
	s := string(uri)
	if !strings.HasPrefix(s, pathPrefix) {
		return "", "", "", false
	}
	s = strings.TrimPrefix(s, pathPrefix)

	project, rest, found := strings.Cut(s, "/assemblies/")
	if !found {
		return "", "", "", false
	}
	assembly, sym, found := strings.Cut(rest, "/symbols/")
	if !found || !strings.HasSuffix(sym, ".cs") {
		return "", "", "", false
	}
	return project, assembly, strings.TrimSuffix(sym, ".cs"), true
}
