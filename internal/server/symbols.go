package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

const workspaceSymbolLimit = 20

// documentSymbol walks the document's syntax tree producing flat symbol
// information. Missing documents yield an empty result.
func (s *Server) documentSymbol(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DocumentSymbolParams](params)
	if err != nil {
		return nil, err
	}
	doc, ok := scope.Document(p.TextDocument.URI)
	if !ok {
		return []protocol.SymbolInformation{}, nil
	}
	var proj *workspace.Project
	if sol := scope.Solution(); sol != nil {
		proj = sol.ProjectOf(doc)
	}

	decls := workspace.Declarations(doc, proj)
	infos := make([]protocol.SymbolInformation, 0, len(decls))
	for _, sym := range decls {
		infos = append(infos, symbolInformation(sym))
	}
	return infos, nil
}

// workspaceSymbol searches declarations matching the query across the
// solution, capped at 20 results.
func (s *Server) workspaceSymbol(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.WorkspaceSymbolParams](params)
	if err != nil {
		return nil, err
	}
	sol := scope.Solution()
	if sol == nil {
		return []protocol.SymbolInformation{}, nil
	}
	decls := workspace.FindDeclarations(sol, p.Query, workspaceSymbolLimit)
	infos := make([]protocol.SymbolInformation, 0, len(decls))
	for _, sym := range decls {
		infos = append(infos, symbolInformation(sym))
	}
	return infos, nil
}

func symbolInformation(sym *workspace.Symbol) protocol.SymbolInformation {
	var uri protocol.DocumentURI
	if sym.Document != nil {
		uri = sym.Document.URI()
	}
	return protocol.SymbolInformation{
		Name:          sym.Name,
		Kind:          sym.Kind,
		ContainerName: sym.ContainerName,
		Location:      protocol.Location{URI: uri, Range: sym.Range},
	}
}
