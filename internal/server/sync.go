package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/metadata"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/text"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// didOpen replaces the solution document's text with the open payload, or
// adds the file to the best-matching project when the editor opens a file
// outside the solution. Decompiled URIs are read-only: no-op.
func (s *Server) didOpen(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DidOpenTextDocumentParams](params)
	if err != nil {
		return nil, err
	}
	uri := p.TextDocument.URI
	if metadata.IsURI(uri) {
		return nil, nil
	}
	sol := scope.Solution()
	if sol == nil {
		return nil, nil
	}

	var newSol *workspace.Solution
	if _, _, ok := sol.DocumentByURI(uri); ok {
		newSol, err = sol.WithDocumentText(uri, p.TextDocument.Text)
		if err != nil {
			return nil, nil
		}
	} else {
		path := workspace.URIToPath(uri)
		if path == "" {
			return nil, nil
		}
		newSol, _, err = sol.AddDocument(path, p.TextDocument.Text)
		if err != nil {
			s.logger.Warn("could not add opened document", "uri", uri, "error", err)
			return nil, nil
		}
	}

	doc, _, _ := newSol.DocumentByURI(uri)
	return nil, scope.EmitAll(
		state.SolutionChange{Solution: newSol},
		state.OpenDocVersionAdd{URI: uri, Version: p.TextDocument.Version},
		state.PublishDiagnosticsOnDocument{URI: uri, Document: doc},
	)
}

// didChange applies the content changes in array order against the current
// text, advances the open version, and marks the document for diagnostics.
func (s *Server) didChange(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DidChangeTextDocumentParams](params)
	if err != nil {
		return nil, err
	}
	uri := p.TextDocument.URI
	if metadata.IsURI(uri) {
		return nil, nil
	}
	sol := scope.Solution()
	if sol == nil {
		return nil, nil
	}
	doc, _, ok := sol.DocumentByURI(uri)
	if !ok {
		return nil, nil
	}

	newText := text.ApplyChanges(doc.Text(), p.ContentChanges)
	newSol, err := sol.WithDocumentText(uri, newText)
	if err != nil {
		return nil, nil
	}

	newDoc, _, _ := newSol.DocumentByURI(uri)
	return nil, scope.EmitAll(
		state.SolutionChange{Solution: newSol},
		state.OpenDocVersionAdd{URI: uri, Version: p.TextDocument.Version},
		state.PublishDiagnosticsOnDocument{URI: uri, Document: newDoc},
	)
}

// didSave adds the document to the solution when it is not yet part of it
// and the save payload carries text; otherwise it is a no-op.
func (s *Server) didSave(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DidSaveTextDocumentParams](params)
	if err != nil {
		return nil, err
	}
	uri := p.TextDocument.URI
	if metadata.IsURI(uri) || p.Text == nil {
		return nil, nil
	}
	sol := scope.Solution()
	if sol == nil || sol.ContainsURI(uri) {
		return nil, nil
	}
	path := workspace.URIToPath(uri)
	if path == "" {
		return nil, nil
	}
	newSol, doc, err := sol.AddDocument(path, *p.Text)
	if err != nil {
		return nil, nil
	}
	return nil, scope.EmitAll(
		state.SolutionChange{Solution: newSol},
		state.PublishDiagnosticsOnDocument{URI: uri, Document: doc},
	)
}

// didClose forgets the open version. The solution-side document is kept.
func (s *Server) didClose(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.DidCloseTextDocumentParams](params)
	if err != nil {
		return nil, err
	}
	return nil, scope.Emit(state.OpenDocVersionRemove{URI: p.TextDocument.URI})
}
