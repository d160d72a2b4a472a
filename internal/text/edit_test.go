package text

import (
	"testing"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

func TestApplyChangesFull(t *testing.T) {
	got := ApplyChanges("old text", []protocol.TextDocumentContentChangeEvent{{Text: "new text"}})
	if got != "new text" {
		t.Errorf("full replacement = %q, want %q", got, "new text")
	}
}

func TestApplyChangesRange(t *testing.T) {
	content := "hello world"
	changes := []protocol.TextDocumentContentChangeEvent{{
		Range: &protocol.Range{
			Start: protocol.Position{Line: 0, Character: 6},
			End:   protocol.Position{Line: 0, Character: 11},
		},
		Text: "csharp",
	}}
	got := ApplyChanges(content, changes)
	if got != "hello csharp" {
		t.Errorf("ApplyChanges = %q, want %q", got, "hello csharp")
	}
}

// Each change applies against the result of the previous one.
func TestApplyChangesSequential(t *testing.T) {
	content := "abc"
	changes := []protocol.TextDocumentContentChangeEvent{
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 3},
				End:   protocol.Position{Line: 0, Character: 3},
			},
			Text: "def",
		},
		{
			Range: &protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 1},
			},
			Text: "x",
		},
	}
	got := ApplyChanges(content, changes)
	if got != "xbcdef" {
		t.Errorf("sequential changes = %q, want %q", got, "xbcdef")
	}
}

func TestDiffRoundTrip(t *testing.T) {
	tests := []struct{ old, new string }{
		{"hello world", "hello there world"},
		{"abc", "abc"},
		{"", "content"},
		{"content", ""},
		{"line1\nline2\nline3", "line1\nchanged\nline3"},
		{"prefix same", "prefix different"},
	}
	for _, tt := range tests {
		edits := Diff(tt.old, tt.new)
		if tt.old == tt.new {
			if edits != nil {
				t.Errorf("Diff of identical texts = %v, want nil", edits)
			}
			continue
		}
		got := ApplyEdits(tt.old, edits)
		if got != tt.new {
			t.Errorf("ApplyEdits(Diff(%q, %q)) = %q", tt.old, tt.new, got)
		}
	}
}
