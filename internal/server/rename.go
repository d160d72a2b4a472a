package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/metadata"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// rename renames the symbol across the solution and diffs the original
// against the renamed solution into per-document edit sets. The edit style
// follows client capabilities; known open-document versions are attached.
// The operation produces a workspace edit only — state is not mutated.
func (s *Server) rename(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.RenameParams](params)
	if err != nil {
		return nil, err
	}
	uri := p.TextDocument.URI
	if metadata.IsURI(uri) {
		return nil, nil
	}
	sol := scope.Solution()
	sym := scope.SymbolAt(uri, p.Position)
	if sol == nil || sym == nil {
		return nil, nil
	}

	renamed, err := workspace.Rename(ctx, sol, sym, p.NewName)
	if err != nil {
		return nil, err
	}
	edits := workspace.SolutionDiff(sol, renamed)
	if len(edits) == 0 {
		return nil, nil
	}

	if scope.ClientCapabilities().SupportsDocumentChanges() {
		changes := make([]protocol.TextDocumentEdit, 0, len(edits))
		for docURI, docEdits := range edits {
			ident := protocol.OptionalVersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: docURI},
			}
			if v, ok := scope.OpenVersion(docURI); ok {
				ident.Version = &v
			}
			changes = append(changes, protocol.TextDocumentEdit{TextDocument: ident, Edits: docEdits})
		}
		return &protocol.WorkspaceEdit{DocumentChanges: changes}, nil
	}
	return &protocol.WorkspaceEdit{Changes: edits}, nil
}
