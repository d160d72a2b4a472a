package workspace

import (
	"strings"
	"testing"
)

func usingsSolution(src string) (*Solution, *Document) {
	doc := NewDocument("/tmp/cf/A.cs", src)
	sol := &Solution{
		Path: "/tmp/cf",
		Projects: []*Project{{
			Name: "cf", RootDir: "/tmp/cf",
			Documents: []*Document{doc},
		}},
	}
	return sol, doc
}

func TestOrganizeUsingsFix(t *testing.T) {
	src := "using Zebra.Lib;\nusing System;\nusing Alpha;\n\nclass A { }\n"
	sol, doc := usingsSolution(src)

	fixes := CodeFixes(sol, doc, 0, len(src))
	var organize *CodeFix
	for i := range fixes {
		if fixes[i].Title == "Organize usings" {
			organize = &fixes[i]
		}
	}
	if organize == nil {
		t.Fatal("Organize usings not offered")
	}
	if !organize.Preferred {
		t.Error("Organize usings should be preferred")
	}

	changed, err := organize.Apply(sol)
	if err != nil {
		t.Fatal(err)
	}
	newDoc, _, _ := changed.DocumentByURI(doc.URI())
	text := newDoc.Text()
	sys := strings.Index(text, "using System;")
	alpha := strings.Index(text, "using Alpha;")
	zebra := strings.Index(text, "using Zebra.Lib;")
	if !(sys < alpha && alpha < zebra) {
		t.Errorf("usings not sorted (System first):\n%s", text)
	}
}

func TestOrganizeUsingsNotOfferedWhenSorted(t *testing.T) {
	src := "using System;\nusing Alpha;\n\nclass A { }\n"
	sol, doc := usingsSolution(src)
	for _, fix := range CodeFixes(sol, doc, 0, len(src)) {
		if fix.Title == "Organize usings" {
			t.Error("Organize usings offered for already-sorted block")
		}
	}
}

func TestRemoveEmptyStatementFix(t *testing.T) {
	src := "class A { void M() { ; } }\n"
	sol, doc := usingsSolution(src)

	fixes := CodeFixes(sol, doc, 0, len(src))
	var remove *CodeFix
	for i := range fixes {
		if fixes[i].Title == "Remove empty statement" {
			remove = &fixes[i]
		}
	}
	if remove == nil {
		t.Fatal("Remove empty statement not offered")
	}

	changed, err := remove.Apply(sol)
	if err != nil {
		t.Fatal(err)
	}
	newDoc, _, _ := changed.DocumentByURI(doc.URI())
	if strings.Contains(newDoc.Text(), "{ ; }") {
		t.Errorf("empty statement still present: %q", newDoc.Text())
	}
}

func TestSolutionDiff(t *testing.T) {
	sol, doc := usingsSolution("class A { }\n")
	changed, err := sol.WithDocumentText(doc.URI(), "class B { }\n")
	if err != nil {
		t.Fatal(err)
	}
	edits := SolutionDiff(sol, changed)
	if len(edits) != 1 {
		t.Fatalf("edited documents = %d, want 1", len(edits))
	}
	if _, ok := edits[doc.URI()]; !ok {
		t.Error("diff missing the changed document")
	}
	if empty := SolutionDiff(sol, sol); len(empty) != 0 {
		t.Errorf("diff of identical solutions = %v", empty)
	}
}
