// Package text provides UTF-16 position mapping and LSP content-change
// application over plain document text. All positions on the wire are UTF-16
// code units; everything internal is byte offsets, converted at this boundary.
package text

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// OffsetAt converts an LSP Position (line, UTF-16 character offset) to a byte
// offset in the text. Positions past the end of a line or of the text clamp
// to the nearest valid offset.
func OffsetAt(text string, pos protocol.Position) int {
	offset := 0
	for l := 0; l < int(pos.Line); l++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return len(text)
		}
		offset += nl + 1
	}

	lineStart := offset
	nl := strings.IndexByte(text[lineStart:], '\n')
	var lineText string
	if nl < 0 {
		lineText = text[lineStart:]
	} else {
		lineText = text[lineStart : lineStart+nl]
	}

	return lineStart + utf16ToByteOffset(lineText, int(pos.Character))
}

// PositionAt converts a byte offset to an LSP Position.
func PositionAt(text string, offset int) protocol.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}

	line := uint32(0)
	lineStart := 0
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}

	return protocol.Position{Line: line, Character: uint32(utf16Len(text[lineStart:offset]))}
}

// RangeToSpan converts an LSP range to a byte span [start, end).
func RangeToSpan(text string, r protocol.Range) (start, end int) {
	start = OffsetAt(text, r.Start)
	end = OffsetAt(text, r.End)
	if start > end {
		start = end
	}
	return start, end
}

// SpanToRange converts a byte span to an LSP range.
func SpanToRange(text string, start, end int) protocol.Range {
	return protocol.Range{
		Start: PositionAt(text, start),
		End:   PositionAt(text, end),
	}
}

// utf16ToByteOffset converts a UTF-16 offset within a single line to bytes.
func utf16ToByteOffset(line string, utf16Offset int) int {
	u16 := 0
	byteOffset := 0
	for byteOffset < len(line) && u16 < utf16Offset {
		r, size := utf8.DecodeRuneInString(line[byteOffset:])
		if r == utf8.RuneError && size == 1 {
			u16++
			byteOffset++
			continue
		}
		u16len := utf16.RuneLen(r)
		if u16len < 0 {
			u16len = 1
		}
		u16 += u16len
		byteOffset += size
	}
	return byteOffset
}

// utf16Len returns the UTF-16 code-unit length of s.
func utf16Len(s string) int {
	u16 := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			u16++
			i++
			continue
		}
		u16len := utf16.RuneLen(r)
		if u16len < 0 {
			u16len = 1
		}
		u16 += u16len
		i += size
	}
	return u16
}

// LineAt returns the text of the given zero-based line, without the trailing
// newline. Out-of-range lines yield "".
func LineAt(text string, line uint32) string {
	offset := 0
	for i := uint32(0); i < line; i++ {
		nl := strings.IndexByte(text[offset:], '\n')
		if nl < 0 {
			return ""
		}
		offset += nl + 1
	}
	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		return text[offset:]
	}
	return text[offset : offset+end]
}

// WordAt returns the identifier-like word at the given position, or "".
func WordAt(text string, pos protocol.Position) string {
	offset := OffsetAt(text, pos)
	if offset < 0 || offset > len(text) {
		return ""
	}
	if offset == len(text) && offset > 0 {
		offset--
	}

	start := offset
	for start > 0 && isWordChar(text[start-1]) {
		start--
	}
	end := offset
	for end < len(text) && isWordChar(text[end]) {
		end++
	}
	return text[start:end]
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}
