package workspace

import (
	"context"
	"strings"
	"testing"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

const sampleSource = `using System;

namespace Sample
{
    /// <summary>Greets people.</summary>
    class Greeter
    {
        private string name;

        public string Name { get; set; }

        public void Greet(string who)
        {
            Console.WriteLine(who);
        }
    }
}
`

func sampleSolution() (*Solution, *Document) {
	doc := NewDocument("/tmp/sample/Greeter.cs", sampleSource)
	sol := &Solution{
		Path: "/tmp/sample",
		Projects: []*Project{{
			Name:         "Sample",
			AssemblyName: "Sample",
			RootDir:      "/tmp/sample",
			Documents:    []*Document{doc},
		}},
	}
	return sol, doc
}

func findSym(syms []*Symbol, name string) *Symbol {
	for _, s := range syms {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func TestDeclarations(t *testing.T) {
	sol, doc := sampleSolution()
	syms := Declarations(doc, sol.Projects[0])

	tests := []struct {
		name string
		kind protocol.SymbolKind
	}{
		{"Sample", protocol.SymbolNamespace},
		{"Greeter", protocol.SymbolClass},
		{"name", protocol.SymbolField},
		{"Name", protocol.SymbolProperty},
		{"Greet", protocol.SymbolMethod},
	}
	for _, tt := range tests {
		sym := findSym(syms, tt.name)
		if sym == nil {
			t.Errorf("declaration %q not found", tt.name)
			continue
		}
		if sym.Kind != tt.kind {
			t.Errorf("%q kind = %d, want %d", tt.name, sym.Kind, tt.kind)
		}
	}

	greet := findSym(syms, "Greet")
	if greet != nil && greet.Display != "Sample.Greeter.Greet(string who)" {
		t.Errorf("Greet display = %q", greet.Display)
	}
	greeter := findSym(syms, "Greeter")
	if greeter != nil && greeter.DocComment != "Greets people." {
		t.Errorf("doc comment = %q", greeter.DocComment)
	}
}

func TestSymbolAtDeclaration(t *testing.T) {
	sol, doc := sampleSolution()
	// Position of "Greet" in "public void Greet(".
	sym := SymbolAt(sol, doc, protocol.Position{Line: 11, Character: 21})
	if sym == nil {
		t.Fatal("no symbol at Greet")
	}
	if sym.Name != "Greet" || !sym.HasSourceDefinition() {
		t.Errorf("symbol = %+v", sym)
	}
}

func TestSymbolAtMetadataFallback(t *testing.T) {
	sol, doc := sampleSolution()
	// Position of "Console" in "Console.WriteLine".
	sym := SymbolAt(sol, doc, protocol.Position{Line: 13, Character: 13})
	if sym == nil {
		t.Fatal("no symbol at Console")
	}
	if !sym.HasMetadataDefinition() {
		t.Fatalf("Console should resolve into metadata, got %+v", sym)
	}
	if sym.FullName != "System.Console" {
		t.Errorf("full name = %q", sym.FullName)
	}
}

func TestFindDeclarationsQuery(t *testing.T) {
	sol, _ := sampleSolution()
	syms := FindDeclarations(sol, "greet", 20)
	if findSym(syms, "Greeter") == nil || findSym(syms, "Greet") == nil {
		t.Errorf("query results missing expected symbols: %v", names(syms))
	}

	if got := FindDeclarations(sol, "", 2); len(got) != 2 {
		t.Errorf("limit not applied: %d results", len(got))
	}
}

func TestReferencesAndRename(t *testing.T) {
	sol, doc := sampleSolution()
	sym := SymbolAt(sol, doc, protocol.Position{Line: 11, Character: 21})
	if sym == nil {
		t.Fatal("no symbol")
	}

	locs, err := References(context.Background(), sol, sym)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) == 0 {
		t.Fatal("no references for Greet")
	}

	renamed, err := Rename(context.Background(), sol, sym, "Welcome")
	if err != nil {
		t.Fatal(err)
	}
	newDoc, _, ok := renamed.DocumentByURI(doc.URI())
	if !ok {
		t.Fatal("document missing after rename")
	}
	if !strings.Contains(newDoc.Text(), "public void Welcome(") {
		t.Errorf("rename did not apply:\n%s", newDoc.Text())
	}
	if strings.Contains(newDoc.Text(), "Greet(") {
		t.Errorf("old name still present:\n%s", newDoc.Text())
	}
	if doc.Text() != sampleSource {
		t.Error("rename mutated the original solution")
	}
}

func TestImplementations(t *testing.T) {
	base := NewDocument("/tmp/s/IAnimal.cs", "interface IAnimal { void Speak(); }")
	impl := NewDocument("/tmp/s/Dog.cs", "class Dog : IAnimal { public void Speak() { } }")
	sol := &Solution{
		Path: "/tmp/s",
		Projects: []*Project{{
			Name: "s", RootDir: "/tmp/s",
			Documents: []*Document{base, impl},
		}},
	}

	sym := SymbolAt(sol, base, protocol.Position{Line: 0, Character: 12})
	if sym == nil || sym.Name != "IAnimal" {
		t.Fatalf("symbol = %+v", sym)
	}
	impls, err := Implementations(context.Background(), sol, sym)
	if err != nil {
		t.Fatal(err)
	}
	if findSym(impls, "Dog") == nil {
		t.Errorf("Dog not found among implementations: %v", names(impls))
	}
}

func names(syms []*Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name
	}
	return out
}

