package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

func (s *Server) formatting(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DocumentFormattingParams](params)
	if err != nil {
		return nil, err
	}
	doc, ok := scope.Document(p.TextDocument.URI)
	if !ok || doc.IsMetadata() {
		return []protocol.TextEdit{}, nil
	}
	return nonNilEdits(workspace.Format(doc, p.Options)), nil
}

func (s *Server) rangeFormatting(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DocumentRangeFormattingParams](params)
	if err != nil {
		return nil, err
	}
	doc, ok := scope.Document(p.TextDocument.URI)
	if !ok || doc.IsMetadata() {
		return []protocol.TextEdit{}, nil
	}
	return nonNilEdits(workspace.FormatRange(doc, p.Range, p.Options)), nil
}

func (s *Server) onTypeFormatting(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DocumentOnTypeFormattingParams](params)
	if err != nil {
		return nil, err
	}
	doc, ok := scope.Document(p.TextDocument.URI)
	if !ok || doc.IsMetadata() {
		return []protocol.TextEdit{}, nil
	}
	return nonNilEdits(workspace.FormatOnType(doc, p.Position, p.Ch, p.Options)), nil
}

func nonNilEdits(edits []protocol.TextEdit) []protocol.TextEdit {
	if edits == nil {
		return []protocol.TextEdit{}
	}
	return edits
}
