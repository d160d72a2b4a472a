package workspace

import (
	"testing"
)

func TestCompletionsMemberAccess(t *testing.T) {
	doc := NewDocument("/tmp/d/A.cs", "class A { void M() { Console. } }\n")
	sol := &Solution{Projects: []*Project{{Name: "d", RootDir: "/tmp/d", Documents: []*Document{doc}}}}

	// Position right after "Console.".
	items := Completions(sol, doc, positionOf(t, doc.Text(), "Console.")) // end of match
	found := false
	for _, item := range items {
		if item.Label == "WriteLine" {
			found = true
		}
	}
	if !found {
		t.Errorf("WriteLine not among member completions: %d items", len(items))
	}
}

func TestCompletionsGeneral(t *testing.T) {
	doc := NewDocument("/tmp/d/A.cs", "class Widget { }\n")
	sol := &Solution{Projects: []*Project{{Name: "d", RootDir: "/tmp/d", Documents: []*Document{doc}}}}

	items := Completions(sol, doc, positionOf(t, doc.Text(), "class "))
	var hasKeyword, hasWidget bool
	for _, item := range items {
		if item.Label == "namespace" {
			hasKeyword = true
		}
		if item.Label == "Widget" {
			hasWidget = true
		}
	}
	if !hasKeyword || !hasWidget {
		t.Errorf("general completions missing keyword=%v declaration=%v", hasKeyword, hasWidget)
	}
}
