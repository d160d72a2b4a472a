package server

import "github.com/BrianCArnold/csharp-language-server/internal/protocol"

// capabilities returns the fixed capability set the server advertises. Every
// provider listed here has a matching handler registered on the dispatcher.
func (s *Server) capabilities() protocol.ServerCapabilities {
	return protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.SyncIncremental,
			Save:      &protocol.SaveOptions{IncludeText: true},
		},
		HoverProvider: true,
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{".", "'"},
		},
		SignatureHelpProvider: &protocol.SignatureHelpOptions{
			TriggerCharacters:   []string{"(", ","},
			RetriggerCharacters: []string{",", ")"},
		},
		DefinitionProvider:         true,
		ImplementationProvider:     true,
		ReferencesProvider:         true,
		DocumentHighlightProvider:  true,
		DocumentSymbolProvider:     true,
		WorkspaceSymbolProvider:    true,
		CodeActionProvider:         &protocol.CodeActionOptions{ResolveProvider: true},
		CodeLensProvider:           &protocol.CodeLensOptions{ResolveProvider: true},
		DocumentFormattingProvider: true,
		DocumentRangeFormattingProvider: true,
		DocumentOnTypeFormattingProvider: &protocol.DocumentOnTypeFormattingOptions{
			FirstTriggerCharacter: ";",
			MoreTriggerCharacter:  []string{"}", ")"},
		},
		RenameProvider: true,
	}
}
