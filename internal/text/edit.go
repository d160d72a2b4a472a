package text

import "github.com/BrianCArnold/csharp-language-server/internal/protocol"

// ApplyChanges applies LSP content change events in array order, each against
// the result of the previous. A change without a range is a full replacement;
// a ranged change replaces the UTF-16 addressed span.
func ApplyChanges(text string, changes []protocol.TextDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start, end := RangeToSpan(text, *change.Range)
		if start < 0 {
			start = 0
		}
		if end > len(text) {
			end = len(text)
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// ApplyEdits applies a set of non-overlapping text edits to the text. Edits
// are applied back-to-front so earlier spans stay valid.
func ApplyEdits(text string, edits []protocol.TextEdit) string {
	// Sort a copy descending by start offset.
	sorted := make([]protocol.TextEdit, len(edits))
	copy(sorted, edits)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0; j-- {
			a := OffsetAt(text, sorted[j-1].Range.Start)
			b := OffsetAt(text, sorted[j].Range.Start)
			if a < b {
				sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
			}
		}
	}
	for _, e := range sorted {
		start, end := RangeToSpan(text, e.Range)
		text = text[:start] + e.NewText + text[end:]
	}
	return text
}

// Diff produces text edits that transform old into new. It trims the common
// prefix and suffix and emits a single replacement edit for the middle; for
// identical texts it returns nil.
func Diff(old, new string) []protocol.TextEdit {
	if old == new {
		return nil
	}

	prefix := 0
	for prefix < len(old) && prefix < len(new) && old[prefix] == new[prefix] {
		prefix++
	}
	// Back off to a rune boundary.
	for prefix > 0 && prefix < len(old) && !utf8RuneStart(old[prefix]) {
		prefix--
	}

	suffix := 0
	for suffix < len(old)-prefix && suffix < len(new)-prefix &&
		old[len(old)-1-suffix] == new[len(new)-1-suffix] {
		suffix++
	}
	for suffix > 0 && !utf8RuneStart(old[len(old)-suffix]) {
		suffix--
	}

	return []protocol.TextEdit{{
		Range:   SpanToRange(old, prefix, len(old)-suffix),
		NewText: new[prefix : len(new)-suffix],
	}}
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }
