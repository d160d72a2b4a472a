package workspace

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// Solution is the root handle of the workspace: a set of projects with their
// documents. Solutions are immutable; every mutating operation returns a new
// Solution sharing unchanged projects and documents.
type Solution struct {
	// Path is the .sln or .csproj path the solution was loaded from, or the
	// root directory for directory-discovered workspaces.
	Path     string
	Projects []*Project
}

// Project is a single C# project.
type Project struct {
	Name         string
	FilePath     string // .csproj path, "" for implicit projects
	AssemblyName string
	RootDir      string
	Documents    []*Document
}

// PathToURI converts an absolute filesystem path to a file: URI.
func PathToURI(path string) protocol.DocumentURI {
	return protocol.DocumentURI("file://" + filepath.ToSlash(path))
}

// URIToPath converts a file: URI to a cleaned absolute path, percent-decoding
// per RFC 3986. Returns "" for non-file URIs.
func URIToPath(uri protocol.DocumentURI) string {
	s := string(uri)
	if !strings.HasPrefix(s, "file://") {
		return ""
	}
	s = strings.TrimPrefix(s, "file://")
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}
	return filepath.Clean(s)
}

// DocumentByURI resolves a file: URI to its document and owning project by
// decoded-path equality. Metadata URIs are not resolved here; they live in
// the server state's metadata map.
func (s *Solution) DocumentByURI(uri protocol.DocumentURI) (*Document, *Project, bool) {
	path := URIToPath(uri)
	if path == "" {
		return nil, nil, false
	}
	return s.DocumentByPath(path)
}

// DocumentByPath resolves an absolute path to its document and owning project.
func (s *Solution) DocumentByPath(path string) (*Document, *Project, bool) {
	path = filepath.Clean(path)
	for _, proj := range s.Projects {
		for _, doc := range proj.Documents {
			if doc.path == path {
				return doc, proj, true
			}
		}
	}
	return nil, nil, false
}

// ContainsURI reports whether the solution has a document for the URI.
func (s *Solution) ContainsURI(uri protocol.DocumentURI) bool {
	_, _, ok := s.DocumentByURI(uri)
	return ok
}

// ProjectOf returns the project owning doc, or nil.
func (s *Solution) ProjectOf(doc *Document) *Project {
	for _, proj := range s.Projects {
		for _, d := range proj.Documents {
			if d == doc {
				return proj
			}
		}
	}
	return nil
}

// WithDocumentText returns a new solution in which the document at uri has
// its text replaced. The old solution is untouched.
func (s *Solution) WithDocumentText(uri protocol.DocumentURI, content string) (*Solution, error) {
	path := URIToPath(uri)
	if path == "" {
		return nil, fmt.Errorf("not a file URI: %s", uri)
	}
	for pi, proj := range s.Projects {
		for di, doc := range proj.Documents {
			if doc.path != path {
				continue
			}
			newDocs := make([]*Document, len(proj.Documents))
			copy(newDocs, proj.Documents)
			newDocs[di] = doc.WithText(content)

			newProj := *proj
			newProj.Documents = newDocs

			newProjects := make([]*Project, len(s.Projects))
			copy(newProjects, s.Projects)
			newProjects[pi] = &newProj

			return &Solution{Path: s.Path, Projects: newProjects}, nil
		}
	}
	return nil, fmt.Errorf("document not in solution: %s", uri)
}

// AddDocument adds a new document to the project whose root directory is the
// longest prefix of path. Returns the new solution and the created document.
func (s *Solution) AddDocument(path, content string) (*Solution, *Document, error) {
	path = filepath.Clean(path)
	best := -1
	bestLen := -1
	for i, proj := range s.Projects {
		root := proj.RootDir
		if root != "" && strings.HasPrefix(path, root) && len(root) > bestLen {
			best = i
			bestLen = len(root)
		}
	}
	if best < 0 {
		if len(s.Projects) == 0 {
			return nil, nil, fmt.Errorf("no project to add %s to", path)
		}
		best = 0
	}

	doc := NewDocument(path, content)

	proj := s.Projects[best]
	newProj := *proj
	newProj.Documents = append(append([]*Document(nil), proj.Documents...), doc)

	newProjects := make([]*Project, len(s.Projects))
	copy(newProjects, s.Projects)
	newProjects[best] = &newProj

	return &Solution{Path: s.Path, Projects: newProjects}, doc, nil
}

// AllDocuments iterates documents across all projects in project order.
func (s *Solution) AllDocuments(visit func(proj *Project, doc *Document) bool) {
	for _, proj := range s.Projects {
		for _, doc := range proj.Documents {
			if !visit(proj, doc) {
				return
			}
		}
	}
}
