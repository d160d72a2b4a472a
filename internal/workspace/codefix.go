package workspace

import (
	"sort"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/text"
)

// CodeFix is a code fix or refactoring applicable to a text span. Applying a
// fix produces a new solution; the caller diffs it against the original to
// obtain workspace edits.
type CodeFix struct {
	Title     string
	Kind      string // "quickfix" or "refactor"
	Preferred bool

	apply func(s *Solution) (*Solution, error)
}

// Apply runs the fix against a solution, returning the changed solution.
func (f CodeFix) Apply(s *Solution) (*Solution, error) {
	return f.apply(s)
}

// CodeFixes enumerates the fixes and refactorings whose target intersects the
// byte span [start, end] in doc, preferred fixes first.
func CodeFixes(s *Solution, doc *Document, start, end int) []CodeFix {
	var fixes []CodeFix
	if f, ok := organizeUsingsFix(doc, start, end); ok {
		fixes = append(fixes, f)
	}
	fixes = append(fixes, removeEmptyStatementFixes(doc, start, end)...)

	sort.SliceStable(fixes, func(i, j int) bool {
		return fixes[i].Preferred && !fixes[j].Preferred
	})
	return fixes
}

// SolutionDiff computes per-document text edits transforming old into new.
// Only documents present in both solutions with differing text are reported.
func SolutionDiff(old, new *Solution) map[protocol.DocumentURI][]protocol.TextEdit {
	edits := make(map[protocol.DocumentURI][]protocol.TextEdit)
	new.AllDocuments(func(_ *Project, newDoc *Document) bool {
		oldDoc, _, ok := old.DocumentByPath(newDoc.Path())
		if !ok || oldDoc.Text() == newDoc.Text() {
			return true
		}
		if diff := text.Diff(oldDoc.Text(), newDoc.Text()); len(diff) > 0 {
			edits[newDoc.URI()] = diff
		}
		return true
	})
	return edits
}

// organizeUsingsFix offers to sort the using directives when the span touches
// the using block. System namespaces sort first, then alphabetically.
func organizeUsingsFix(doc *Document, start, end int) (CodeFix, bool) {
	root := doc.Root()
	if root == nil {
		return CodeFix{}, false
	}

	type usingNode struct {
		startByte, endByte int
		textLine           string
	}
	var usings []usingNode
	intersects := false
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child.Kind() != "using_directive" {
			continue
		}
		u := usingNode{
			startByte: int(child.StartByte()),
			endByte:   int(child.EndByte()),
			textLine:  doc.NodeText(child),
		}
		usings = append(usings, u)
		if spansIntersect(u.startByte, u.endByte, start, end) {
			intersects = true
		}
	}
	if len(usings) < 2 || !intersects {
		return CodeFix{}, false
	}

	sorted := make([]string, len(usings))
	for i, u := range usings {
		sorted[i] = u.textLine
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		si, sj := usingSortKey(sorted[i]), usingSortKey(sorted[j])
		return si < sj
	})

	alreadySorted := true
	for i, u := range usings {
		if u.textLine != sorted[i] {
			alreadySorted = false
			break
		}
	}
	if alreadySorted {
		return CodeFix{}, false
	}

	uri := doc.URI()
	blockStart := usings[0].startByte
	blockEnd := usings[len(usings)-1].endByte
	return CodeFix{
		Title:     "Organize usings",
		Kind:      "quickfix",
		Preferred: true,
		apply: func(s *Solution) (*Solution, error) {
			cur, _, ok := s.DocumentByURI(uri)
			if !ok {
				return s, nil
			}
			content := cur.Text()
			replacement := strings.Join(sorted, "\n")
			newText := content[:blockStart] + replacement + content[blockEnd:]
			return s.WithDocumentText(uri, newText)
		},
	}, true
}

// usingSortKey orders System.* namespaces before everything else.
func usingSortKey(using string) string {
	name := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(using), "using")), ";")
	name = strings.TrimSpace(name)
	if name == "System" || strings.HasPrefix(name, "System.") {
		return "0" + name
	}
	return "1" + name
}

// removeEmptyStatementFixes offers removal of stray ';' statements inside the
// span.
func removeEmptyStatementFixes(doc *Document, start, end int) []CodeFix {
	root := doc.Root()
	if root == nil {
		return nil
	}
	uri := doc.URI()
	var fixes []CodeFix
	var visit func(n *tree_sitter.Node)
	visit = func(n *tree_sitter.Node) {
		if n.Kind() == "empty_statement" {
			sb, eb := int(n.StartByte()), int(n.EndByte())
			if spansIntersect(sb, eb, start, end) {
				fixes = append(fixes, CodeFix{
					Title: "Remove empty statement",
					Kind:  "quickfix",
					apply: func(s *Solution) (*Solution, error) {
						cur, _, ok := s.DocumentByURI(uri)
						if !ok {
							return s, nil
						}
						content := cur.Text()
						if eb > len(content) {
							return s, nil
						}
						return s.WithDocumentText(uri, content[:sb]+content[eb:])
					},
				})
			}
		}
		for i := uint(0); i < n.NamedChildCount(); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(root)
	return fixes
}
