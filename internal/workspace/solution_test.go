package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

func protocolURI(s string) protocol.DocumentURI { return protocol.DocumentURI(s) }

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestDiscoverImplicitProject(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"Program.cs": "class Program { static void Main() { } }",
		"Lib.cs":     "class Lib { }",
	})
	sol, err := Discover(dir, discard())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(sol.Projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(sol.Projects))
	}
	if len(sol.Projects[0].Documents) != 2 {
		t.Errorf("documents = %d, want 2", len(sol.Projects[0].Documents))
	}
}

func TestDiscoverCsproj(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"App/App.csproj": `<Project Sdk="Microsoft.NET.Sdk"><PropertyGroup><AssemblyName>MyApp</AssemblyName></PropertyGroup></Project>`,
		"App/Program.cs": "class Program { }",
	})
	sol, err := Discover(dir, discard())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(sol.Projects) != 1 {
		t.Fatalf("projects = %d, want 1", len(sol.Projects))
	}
	proj := sol.Projects[0]
	if proj.Name != "App" {
		t.Errorf("name = %q, want App", proj.Name)
	}
	if proj.AssemblyName != "MyApp" {
		t.Errorf("assembly = %q, want MyApp", proj.AssemblyName)
	}
}

func TestLoadSolutionFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"All.sln": `Microsoft Visual Studio Solution File, Format Version 12.00
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "App", "App\App.csproj", "{AAAA}"
EndProject
Project("{FAE04EC0-301F-11D3-BF4B-00C04F79EFBC}") = "Lib", "Lib\Lib.csproj", "{BBBB}"
EndProject
`,
		"App/App.csproj": `<Project></Project>`,
		"App/Program.cs": "class Program { }",
		"Lib/Lib.csproj": `<Project></Project>`,
		"Lib/Helper.cs":  "class Helper { }",
	})
	sol, err := Load(filepath.Join(dir, "All.sln"), discard())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sol.Projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(sol.Projects))
	}
}

func TestWithDocumentTextIsImmutable(t *testing.T) {
	dir := writeTree(t, map[string]string{"A.cs": "class A { }"})
	sol, err := Discover(dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	doc := sol.Projects[0].Documents[0]

	newSol, err := sol.WithDocumentText(doc.URI(), "class B { }")
	if err != nil {
		t.Fatalf("WithDocumentText: %v", err)
	}
	if doc.Text() != "class A { }" {
		t.Error("original document mutated")
	}
	newDoc, _, ok := newSol.DocumentByURI(doc.URI())
	if !ok || newDoc.Text() != "class B { }" {
		t.Error("new solution does not carry the replacement text")
	}
	if newDoc == doc {
		t.Error("expected a fresh document handle")
	}
}

func TestDocumentByURIDecodesPercentEscapes(t *testing.T) {
	dir := writeTree(t, map[string]string{"My File.cs": "class A { }"})
	sol, err := Discover(dir, discard())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "My File.cs")
	escaped := "file://" + filepath.ToSlash(filepath.Dir(path)) + "/My%20File.cs"
	if _, _, ok := sol.DocumentByURI(protocolURI(escaped)); !ok {
		t.Errorf("percent-escaped URI %q did not resolve", escaped)
	}
}

func TestAddDocumentPicksLongestRoot(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"App/App.csproj":         `<Project></Project>`,
		"App/Program.cs":         "class Program { }",
		"App/Sub/Sub.csproj":     `<Project></Project>`,
		"App/Sub/Existing.cs":    "class Existing { }",
	})
	sol, err := Discover(dir, discard())
	if err != nil {
		t.Fatal(err)
	}

	newPath := filepath.Join(dir, "App", "Sub", "New.cs")
	newSol, doc, err := sol.AddDocument(newPath, "class New { }")
	if err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	proj := newSol.ProjectOf(doc)
	if proj == nil || proj.Name != "Sub" {
		t.Errorf("document landed in %v, want project Sub", proj)
	}
}
