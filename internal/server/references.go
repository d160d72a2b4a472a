package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// references returns all reference locations across the solution.
func (s *Server) references(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.ReferenceParams](params)
	if err != nil {
		return nil, err
	}
	sol := scope.Solution()
	sym := scope.SymbolAt(p.TextDocument.URI, p.Position)
	if sol == nil || sym == nil {
		return []protocol.Location{}, nil
	}
	locations, err := workspace.References(ctx, sol, sym)
	if err != nil {
		return nil, err
	}
	if locations == nil {
		locations = []protocol.Location{}
	}
	return locations, nil
}

// documentHighlight returns references restricted to the current document
// plus source definition locations, each with read kind. Namespaces are
// skipped.
func (s *Server) documentHighlight(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DocumentHighlightParams](params)
	if err != nil {
		return nil, err
	}
	doc, ok := scope.Document(p.TextDocument.URI)
	if !ok {
		return []protocol.DocumentHighlight{}, nil
	}
	sym := scope.SymbolAt(p.TextDocument.URI, p.Position)
	if sym == nil || sym.Kind == protocol.SymbolNamespace {
		return []protocol.DocumentHighlight{}, nil
	}

	seen := make(map[protocol.Range]bool)
	var highlights []protocol.DocumentHighlight
	add := func(r protocol.Range) {
		if seen[r] {
			return
		}
		seen[r] = true
		highlights = append(highlights, protocol.DocumentHighlight{Range: r, Kind: protocol.HighlightRead})
	}
	for _, loc := range workspace.ReferencesInDocument(doc, sym) {
		add(loc.Range)
	}
	if sym.HasSourceDefinition() && sym.Document.URI() == doc.URI() {
		add(sym.SelectionRange)
	}
	if highlights == nil {
		highlights = []protocol.DocumentHighlight{}
	}
	return highlights, nil
}
