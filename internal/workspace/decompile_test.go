package workspace

import (
	"strings"
	"testing"
)

func TestDecompileKnownType(t *testing.T) {
	src := Decompile("System.Console", "System.Console")
	for _, want := range []string{
		"namespace System",
		"public static class Console",
		"WriteLine",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("decompiled source missing %q:\n%s", want, src)
		}
	}
}

func TestDecompileUnknownTypeNeverFails(t *testing.T) {
	src := Decompile("Some.Assembly", "Vendor.Widgets.Gadget")
	if !strings.Contains(src, "namespace Vendor.Widgets") {
		t.Errorf("namespace missing:\n%s", src)
	}
	if !strings.Contains(src, "public class Gadget") {
		t.Errorf("type skeleton missing:\n%s", src)
	}
}

func TestBestMatchRange(t *testing.T) {
	doc := NewMetadataDocument("csharp:/metadata/projects/p/assemblies/a/symbols/System.Console.cs",
		Decompile("System.Console", "System.Console"))
	r := BestMatchRange(doc, "System.Console")
	if r.Start.Line == 0 && r.Start.Character == 0 && r.End.Character == 1 {
		t.Errorf("expected a real match, got fallback range %v", r)
	}
	line := strings.Split(doc.Text(), "\n")[r.Start.Line]
	if !strings.Contains(line, "Console") {
		t.Errorf("range points at %q", line)
	}
}

func TestBestMatchRangeFallback(t *testing.T) {
	doc := NewMetadataDocument("csharp:/metadata/projects/p/assemblies/a/symbols/X.cs", "")
	r := BestMatchRange(doc, "Missing.Type")
	if r.Start.Line != 0 || r.Start.Character != 0 || r.End.Line != 0 || r.End.Character != 1 {
		t.Errorf("fallback range = %v, want (0,0)-(0,1)", r)
	}
}
