package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
)

// signatureHelp returns an empty result. Computing overload signatures needs
// real overload resolution, which the backend does not do yet.
func (s *Server) signatureHelp(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	if _, err := unmarshalParams[protocol.SignatureHelpParams](params); err != nil {
		return nil, err
	}
	return &protocol.SignatureHelp{Signatures: []protocol.SignatureInformation{}}, nil
}
