package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// definition resolves the symbol at the position: source definitions map to
// their declaration ranges, metadata definitions go through the decompiled
// metadata cache.
func (s *Server) definition(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DefinitionParams](params)
	if err != nil {
		return nil, err
	}
	sym := scope.SymbolAt(p.TextDocument.URI, p.Position)
	if sym == nil {
		return []protocol.Location{}, nil
	}

	switch {
	case sym.HasSourceDefinition():
		return []protocol.Location{{URI: sym.Document.URI(), Range: sym.SelectionRange}}, nil

	case sym.HasMetadataDefinition():
		uri, r, rerr := scope.ResolveMetadata(sym)
		if rerr != nil {
			return []protocol.Location{}, nil
		}
		return []protocol.Location{{URI: uri, Range: r}}, nil
	}
	return []protocol.Location{}, nil
}

// implementation lists declarations implementing or deriving from the symbol.
func (s *Server) implementation(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.ImplementationParams](params)
	if err != nil {
		return nil, err
	}
	sol := scope.Solution()
	sym := scope.SymbolAt(p.TextDocument.URI, p.Position)
	if sol == nil || sym == nil {
		return []protocol.Location{}, nil
	}

	impls, err := workspace.Implementations(ctx, sol, sym)
	if err != nil {
		return nil, err
	}
	locations := make([]protocol.Location, 0, len(impls))
	for _, impl := range impls {
		if impl.Document == nil {
			continue
		}
		locations = append(locations, protocol.Location{URI: impl.Document.URI(), Range: impl.SelectionRange})
	}
	return locations, nil
}
