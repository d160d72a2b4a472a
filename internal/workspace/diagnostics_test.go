package workspace

import (
	"strings"
	"testing"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/text"
)

// positionOf returns the position just past the first occurrence of substr.
func positionOf(t *testing.T, content, substr string) protocol.Position {
	t.Helper()
	i := strings.Index(content, substr)
	if i < 0 {
		t.Fatalf("%q not found in source", substr)
	}
	return text.PositionAt(content, i+len(substr))
}

func TestDiagnosticsCleanSource(t *testing.T) {
	doc := NewDocument("/tmp/d/A.cs", "class A { void M() { } }\n")
	if diags := Diagnostics(doc); len(diags) != 0 {
		t.Errorf("diagnostics on clean source: %v", diags)
	}
}

func TestDiagnosticsSyntaxError(t *testing.T) {
	doc := NewDocument("/tmp/d/A.cs", "class A { void M( { } }\n")
	diags := Diagnostics(doc)
	if len(diags) == 0 {
		t.Fatal("no diagnostics for broken source")
	}
	for _, d := range diags {
		if d.Source != "csharp" {
			t.Errorf("diagnostic source = %q", d.Source)
		}
	}
}
