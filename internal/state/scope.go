package state

import (
	"fmt"

	"github.com/BrianCArnold/csharp-language-server/internal/metadata"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// Scope is a per-handler view of the solution snapshot plus an event
// emitter. Read scopes snapshot via GetState and may emit only the monotone
// DecompiledMetadataAdd; write scopes hold the write lease and may emit any
// event. Emitted events also apply to the local snapshot so the handler sees
// its own updates.
type Scope struct {
	snap   Snapshot
	actor  *Actor
	ticket *Ticket // nil for read scopes
}

// Scope creates the write scope for a granted ticket.
func (t *Ticket) Scope(snap Snapshot) *Scope {
	return &Scope{snap: snap, actor: t.actor, ticket: t}
}

// ReadScope wraps a snapshot in a read-only scope.
func (a *Actor) ReadScope(snap Snapshot) *Scope {
	return &Scope{snap: snap, actor: a}
}

// Writable reports whether the scope holds the write lease.
func (s *Scope) Writable() bool { return s.ticket != nil }

// Release returns the write lease; disposal of a read scope is a no-op.
func (s *Scope) Release() {
	if s.ticket != nil {
		s.ticket.Release()
	}
}

// Solution returns the solution as of scope acquisition, plus any
// SolutionChange this scope has emitted itself.
func (s *Scope) Solution() *workspace.Solution { return s.snap.Solution }

// ClientCapabilities returns the capabilities recorded at initialize.
func (s *Scope) ClientCapabilities() protocol.ClientCapabilities {
	if s.snap.ClientCapabilities == nil {
		return protocol.ClientCapabilities{}
	}
	return *s.snap.ClientCapabilities
}

// OpenVersion returns the open document version for uri, if the editor has
// it open.
func (s *Scope) OpenVersion(uri protocol.DocumentURI) (int32, bool) {
	v, ok := s.snap.OpenVersions[uri]
	return v, ok
}

// MetadataEntry looks up a decompiled metadata document by URI.
func (s *Scope) MetadataEntry(uri protocol.DocumentURI) (MetadataEntry, bool) {
	e, ok := s.snap.Metadata[uri]
	return e, ok
}

// Document resolves a URI to a document in either namespace: file: URIs by
// decoded-path equality against the solution, csharp: URIs via the metadata
// map.
func (s *Scope) Document(uri protocol.DocumentURI) (*workspace.Document, bool) {
	if metadata.IsURI(uri) {
		if e, ok := s.snap.Metadata[uri]; ok {
			return e.Document, true
		}
		return nil, false
	}
	if s.snap.Solution == nil {
		return nil, false
	}
	doc, _, ok := s.snap.Solution.DocumentByURI(uri)
	return doc, ok
}

// SymbolAt resolves the symbol at a position in the document at uri, or nil.
func (s *Scope) SymbolAt(uri protocol.DocumentURI, pos protocol.Position) *workspace.Symbol {
	doc, ok := s.Document(uri)
	if !ok || s.snap.Solution == nil {
		return nil
	}
	return workspace.SymbolAt(s.snap.Solution, doc, pos)
}

// Emit posts a state event. Read scopes may emit only DecompiledMetadataAdd.
func (s *Scope) Emit(ev Event) error {
	if s.ticket == nil {
		if _, ok := ev.(DecompiledMetadataAdd); !ok {
			return fmt.Errorf("read scope cannot emit %T", ev)
		}
	}
	s.applyLocal(ev)
	s.actor.Post(ev)
	return nil
}

// EmitAll posts several events in order.
func (s *Scope) EmitAll(evs ...Event) error {
	for _, ev := range evs {
		if err := s.Emit(ev); err != nil {
			return err
		}
	}
	return nil
}

// applyLocal mirrors an emitted event onto the local snapshot.
func (s *Scope) applyLocal(ev Event) {
	switch e := ev.(type) {
	case SolutionChange:
		s.snap.Solution = e.Solution
	case OpenDocVersionAdd:
		s.snap.OpenVersions[e.URI] = e.Version
	case OpenDocVersionRemove:
		delete(s.snap.OpenVersions, e.URI)
	case DecompiledMetadataAdd:
		if _, exists := s.snap.Metadata[e.URI]; !exists {
			s.snap.Metadata[e.URI] = e.Entry
		}
	case ClientCapabilityChange:
		s.snap.ClientCapabilities = e.Capabilities
	}
}

// ResolveMetadata materializes the decompiled document for a metadata symbol
// and returns its URI and the range of the best-matching declaration. The
// result is cached: repeated resolutions of one (assembly, full name) reuse
// the same document.
func (s *Scope) ResolveMetadata(sym *workspace.Symbol) (protocol.DocumentURI, protocol.Range, error) {
	if sym == nil || !sym.HasMetadataDefinition() {
		return "", protocol.Range{}, fmt.Errorf("symbol has no metadata definition")
	}
	projectName := "decompiled"
	if sym.Project != nil {
		projectName = sym.Project.Name
	}
	uri := metadata.URI(projectName, sym.Assembly, sym.FullName)

	if entry, ok := s.snap.Metadata[uri]; ok {
		return uri, workspace.BestMatchRange(entry.Document, sym.FullName), nil
	}

	source := workspace.Decompile(sym.Assembly, sym.FullName)
	doc := workspace.NewMetadataDocument(uri, source)
	entry := MetadataEntry{
		Descriptor: metadata.Descriptor{
			ProjectName:  projectName,
			AssemblyName: sym.Assembly,
			SymbolName:   sym.FullName,
			Source:       source,
		},
		Document: doc,
	}
	if err := s.Emit(DecompiledMetadataAdd{URI: uri, Entry: entry}); err != nil {
		return "", protocol.Range{}, err
	}
	return uri, workspace.BestMatchRange(doc, sym.FullName), nil
}
