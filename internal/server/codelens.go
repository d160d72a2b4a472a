package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// codeLensData is the payload carried by an unresolved lens.
type codeLensData struct {
	DocumentURI protocol.DocumentURI `json:"documentUri"`
	Position    protocol.Position    `json:"position"`
}

// showReferencesCommand is what VS Code's C# extension executes for
// reference lenses; kept verbatim for editor compatibility.
const showReferencesCommand = "csharp.showReferences"

// codeLens emits one unresolved lens per declaration symbol in the document;
// locals and namespaces get no lens.
func (s *Server) codeLens(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.CodeLensParams](params)
	if err != nil {
		return nil, err
	}
	doc, ok := scope.Document(p.TextDocument.URI)
	if !ok {
		return []protocol.CodeLens{}, nil
	}
	var proj *workspace.Project
	if sol := scope.Solution(); sol != nil {
		proj = sol.ProjectOf(doc)
	}

	var lenses []protocol.CodeLens
	for _, sym := range workspace.Declarations(doc, proj) {
		if sym.Kind == protocol.SymbolVariable || sym.Kind == protocol.SymbolNamespace {
			continue
		}
		data, merr := json.Marshal(codeLensData{
			DocumentURI: p.TextDocument.URI,
			Position:    sym.SelectionRange.Start,
		})
		if merr != nil {
			continue
		}
		lenses = append(lenses, protocol.CodeLens{
			Range: sym.SelectionRange,
			Data:  data,
		})
	}
	if lenses == nil {
		lenses = []protocol.CodeLens{}
	}
	return lenses, nil
}

// codeLensResolve counts references for the symbol at the carried position.
// The dispatcher caps this handler at 10 seconds.
func (s *Server) codeLensResolve(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	lens, err := unmarshalParams[protocol.CodeLens](params)
	if err != nil {
		return nil, err
	}
	if lens.Data == nil {
		return lens, nil
	}
	var data codeLensData
	if err := json.Unmarshal(lens.Data, &data); err != nil {
		return lens, nil
	}

	sol := scope.Solution()
	sym := scope.SymbolAt(data.DocumentURI, data.Position)
	if sol == nil || sym == nil {
		return lens, nil
	}
	locations, err := workspace.References(ctx, sol, sym)
	if err != nil {
		return nil, err
	}

	lens.Command = &protocol.Command{
		Title:   fmt.Sprintf("%d Reference(s)", len(locations)),
		Command: showReferencesCommand,
	}
	return lens, nil
}
