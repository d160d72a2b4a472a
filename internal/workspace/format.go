package workspace

import (
	"strings"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/text"
)

// Format reindents the whole document by brace depth and returns the edits
// transforming the current text into the formatted text.
func Format(doc *Document, opts protocol.FormattingOptions) []protocol.TextEdit {
	formatted := reindent(doc.Text(), opts, 0, -1)
	return text.Diff(doc.Text(), formatted)
}

// FormatRange reindents only the lines covered by the range.
func FormatRange(doc *Document, r protocol.Range, opts protocol.FormattingOptions) []protocol.TextEdit {
	formatted := reindent(doc.Text(), opts, int(r.Start.Line), int(r.End.Line))
	return text.Diff(doc.Text(), formatted)
}

// FormatOnType reindents the line containing pos after a trigger character
// (';', '}', ')').
func FormatOnType(doc *Document, pos protocol.Position, ch string, opts protocol.FormattingOptions) []protocol.TextEdit {
	switch ch {
	case ";", "}", ")":
		line := int(pos.Line)
		formatted := reindent(doc.Text(), opts, line, line)
		return text.Diff(doc.Text(), formatted)
	}
	return nil
}

// reindent recomputes leading whitespace per line from brace depth. Lines
// outside [fromLine, toLine] keep their text (toLine < 0 means all lines).
// String and comment interiors do not affect depth.
func reindent(content string, opts protocol.FormattingOptions, fromLine, toLine int) string {
	unit := "\t"
	if opts.InsertSpaces {
		size := int(opts.TabSize)
		if size <= 0 {
			size = 4
		}
		unit = strings.Repeat(" ", size)
	}

	lines := strings.Split(content, "\n")
	depth := 0
	inBlockComment := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		lineDepth := depth
		// A line starting with closers dedents itself.
		if !inBlockComment {
			for _, r := range trimmed {
				if r == '}' || r == ')' {
					if lineDepth > 0 {
						lineDepth--
					}
				} else {
					break
				}
			}
		}

		inRange := i >= fromLine && (toLine < 0 || i <= toLine)
		if inRange && trimmed != "" && !inBlockComment {
			lines[i] = strings.Repeat(unit, lineDepth) + trimmed
		}

		depth, inBlockComment = advanceDepth(trimmed, depth, inBlockComment)
	}
	return strings.Join(lines, "\n")
}

// advanceDepth scans one line and returns the brace depth after it, skipping
// braces inside strings, chars, and comments.
func advanceDepth(line string, depth int, inBlockComment bool) (int, bool) {
	i := 0
	for i < len(line) {
		c := line[i]
		if inBlockComment {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				inBlockComment = false
				i += 2
				continue
			}
			i++
			continue
		}
		switch c {
		case '/':
			if i+1 < len(line) {
				if line[i+1] == '/' {
					return depth, false
				}
				if line[i+1] == '*' {
					inBlockComment = true
					i += 2
					continue
				}
			}
		case '"':
			i++
			for i < len(line) && line[i] != '"' {
				if line[i] == '\\' {
					i++
				}
				i++
			}
		case '\'':
			i++
			for i < len(line) && line[i] != '\'' {
				if line[i] == '\\' {
					i++
				}
				i++
			}
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}
		i++
	}
	return depth, inBlockComment
}
