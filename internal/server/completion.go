package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// completion asks the backend for candidates at the position. The item kind
// derives from the first Roslyn-style tag; insert text is always plain.
func (s *Server) completion(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.CompletionParams](params)
	if err != nil {
		return nil, err
	}
	sol := scope.Solution()
	doc, ok := scope.Document(p.TextDocument.URI)
	if sol == nil || !ok {
		return &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}, nil
	}

	candidates := workspace.Completions(sol, doc, p.Position)
	items := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, protocol.CompletionItem{
			Label:            c.Label,
			Kind:             workspace.CompletionKindForTag(c.Tags),
			Detail:           c.Detail,
			InsertTextFormat: protocol.InsertTextPlain,
		})
	}
	return &protocol.CompletionList{IsIncomplete: false, Items: items}, nil
}
