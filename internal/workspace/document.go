package workspace

import (
	"runtime"
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/text"
)

// Document is a single C# source document. Documents are immutable: edits
// produce a new Document via WithText, and the parse tree is computed at most
// once per version.
type Document struct {
	path string // absolute filesystem path; "" for decompiled metadata
	uri  protocol.DocumentURI
	text string

	parseOnce sync.Once
	tree      *tree_sitter.Tree
	src       []byte
}

// NewDocument creates a source document from an absolute path and text.
func NewDocument(path, content string) *Document {
	return &Document{
		path: path,
		uri:  PathToURI(path),
		text: content,
	}
}

// NewMetadataDocument creates a read-only decompiled metadata document with
// the given csharp: URI.
func NewMetadataDocument(uri protocol.DocumentURI, content string) *Document {
	return &Document{uri: uri, text: content}
}

// Path returns the absolute filesystem path, or "" for metadata documents.
func (d *Document) Path() string { return d.path }

// URI returns the document URI.
func (d *Document) URI() protocol.DocumentURI { return d.uri }

// Text returns the full document text.
func (d *Document) Text() string { return d.text }

// IsMetadata reports whether this is a decompiled metadata document.
func (d *Document) IsMetadata() bool { return d.path == "" }

// WithText returns a new document with replaced text. The receiver keeps its
// identity (path and URI) and its own parse tree.
func (d *Document) WithText(content string) *Document {
	return &Document{
		path: d.path,
		uri:  d.uri,
		text: content,
	}
}

// Root returns the root node of the document's parse tree, parsing on first
// use. Returns nil only if the grammar fails to load.
func (d *Document) Root() *tree_sitter.Node {
	d.parseOnce.Do(func() {
		d.src = []byte(d.text)
		d.tree = parseSource(d.src)
		if d.tree != nil {
			runtime.SetFinalizer(d.tree, func(t *tree_sitter.Tree) { t.Close() })
		}
	})
	if d.tree == nil {
		return nil
	}
	return d.tree.RootNode()
}

// NodeText returns the source text of a node from this document.
func (d *Document) NodeText(node *tree_sitter.Node) string {
	d.Root()
	return nodeText(d.src, node)
}

// NodeAt returns the most specific named node at the given LSP position.
func (d *Document) NodeAt(pos protocol.Position) *tree_sitter.Node {
	root := d.Root()
	if root == nil {
		return nil
	}
	point := pointAt(pos)
	return root.NamedDescendantForPointRange(point, point)
}

// OffsetAt converts an LSP position to a byte offset in the document.
func (d *Document) OffsetAt(pos protocol.Position) int {
	return text.OffsetAt(d.text, pos)
}

// PositionAt converts a byte offset to an LSP position.
func (d *Document) PositionAt(offset int) protocol.Position {
	return text.PositionAt(d.text, offset)
}
