package text

import (
	"testing"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

func TestOffsetAt(t *testing.T) {
	content := "hello\nworld\nfoo"
	tests := []struct {
		pos  protocol.Position
		want int
	}{
		{protocol.Position{Line: 0, Character: 0}, 0},
		{protocol.Position{Line: 0, Character: 5}, 5},
		{protocol.Position{Line: 1, Character: 0}, 6},
		{protocol.Position{Line: 1, Character: 5}, 11},
		{protocol.Position{Line: 2, Character: 0}, 12},
		{protocol.Position{Line: 2, Character: 3}, 15},
	}
	for _, tt := range tests {
		got := OffsetAt(content, tt.pos)
		if got != tt.want {
			t.Errorf("OffsetAt(%v) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestPositionAt(t *testing.T) {
	content := "hello\nworld\nfoo"
	tests := []struct {
		offset int
		want   protocol.Position
	}{
		{0, protocol.Position{Line: 0, Character: 0}},
		{5, protocol.Position{Line: 0, Character: 5}},
		{6, protocol.Position{Line: 1, Character: 0}},
		{11, protocol.Position{Line: 1, Character: 5}},
		{12, protocol.Position{Line: 2, Character: 0}},
	}
	for _, tt := range tests {
		got := PositionAt(content, tt.offset)
		if got != tt.want {
			t.Errorf("PositionAt(%d) = %v, want %v", tt.offset, got, tt.want)
		}
	}
}

func TestUTF16Handling(t *testing.T) {
	// U+1F600 encodes as a surrogate pair: 2 UTF-16 code units.
	content := "a\U0001F600b"
	offset := OffsetAt(content, protocol.Position{Line: 0, Character: 3})
	if content[offset] != 'b' {
		t.Errorf("expected 'b' at UTF-16 offset 3, got %q (byte offset %d)", content[offset], offset)
	}

	pos := PositionAt(content, offset)
	if pos.Character != 3 {
		t.Errorf("PositionAt round trip = %v, want character 3", pos)
	}
}

func TestWordAt(t *testing.T) {
	content := "hello world foo_bar"
	tests := []struct {
		pos  protocol.Position
		want string
	}{
		{protocol.Position{Line: 0, Character: 2}, "hello"},
		{protocol.Position{Line: 0, Character: 8}, "world"},
		{protocol.Position{Line: 0, Character: 15}, "foo_bar"},
	}
	for _, tt := range tests {
		got := WordAt(content, tt.pos)
		if got != tt.want {
			t.Errorf("WordAt(%v) = %q, want %q", tt.pos, got, tt.want)
		}
	}
}

func TestLineAt(t *testing.T) {
	content := "one\ntwo\nthree"
	if got := LineAt(content, 1); got != "two" {
		t.Errorf("LineAt(1) = %q, want %q", got, "two")
	}
	if got := LineAt(content, 9); got != "" {
		t.Errorf("LineAt(9) = %q, want empty", got)
	}
}
