package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
)

// metadataRequest serves the custom csharp/metadata method: the decompiled
// metadata descriptor for a csharp: URI, or null when unknown.
func (s *Server) metadataRequest(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.MetadataParams](params)
	if err != nil {
		return nil, err
	}
	entry, ok := scope.MetadataEntry(p.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	return &protocol.MetadataResponse{
		ProjectName:  entry.Descriptor.ProjectName,
		AssemblyName: entry.Descriptor.AssemblyName,
		SymbolName:   entry.Descriptor.SymbolName,
		Source:       entry.Descriptor.Source,
	}, nil
}
