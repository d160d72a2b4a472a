package metadata

import (
	"testing"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

func protocolURI(s string) protocol.DocumentURI { return protocol.DocumentURI(s) }

func TestURIRoundTrip(t *testing.T) {
	uri := URI("MyProject", "System.Console", "System.Console")
	want := "csharp:/metadata/projects/MyProject/assemblies/System.Console/symbols/System.Console.cs"
	if string(uri) != want {
		t.Errorf("URI = %q, want %q", uri, want)
	}

	project, assembly, fullName, ok := ParseURI(uri)
	if !ok {
		t.Fatal("ParseURI failed")
	}
	if project != "MyProject" || assembly != "System.Console" || fullName != "System.Console" {
		t.Errorf("ParseURI = (%q, %q, %q)", project, assembly, fullName)
	}
}

func TestIsURI(t *testing.T) {
	tests := []struct {
		uri  string
		want bool
	}{
		{"csharp:/metadata/projects/P/assemblies/A/symbols/S.cs", true},
		{"file:///tmp/Program.cs", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsURI(protocolURI(tt.uri)); got != tt.want {
			t.Errorf("IsURI(%q) = %v, want %v", tt.uri, got, tt.want)
		}
	}
}

func TestParseURIRejectsMalformed(t *testing.T) {
	bad := []string{
		"csharp:/metadata/projects/OnlyProject",
		"csharp:/other/shape",
		"file:///tmp/x.cs",
		"csharp:/metadata/projects/P/assemblies/A/symbols/NoExtension",
	}
	for _, uri := range bad {
		if _, _, _, ok := ParseURI(protocolURI(uri)); ok {
			t.Errorf("ParseURI(%q) accepted malformed URI", uri)
		}
	}
}
