package server_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/lsptest"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/server"
)

func newTestServer(t *testing.T, files map[string]string) (*server.Server, string) {
	t.Helper()
	dir := lsptest.SolutionDir(t, files)
	srv := server.New(server.Options{
		SolutionPath:            dir,
		DiagnosticsInitialDelay: 20 * time.Millisecond,
		DiagnosticsInterval:     20 * time.Millisecond,
		Logger:                  slog.New(slog.DiscardHandler),
	})
	return srv, dir
}

func startClient(t *testing.T, files map[string]string) (*lsptest.Client, string) {
	t.Helper()
	srv, dir := newTestServer(t, files)
	c := lsptest.NewClient(t, srv)
	c.Initialize(protocol.ClientCapabilities{})
	return c, dir
}

// S1: initialize advertises the fixed capability set.
func TestInitializeCapabilities(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"A.cs": "class A { }"})
	c := lsptest.NewClient(t, srv)
	result := c.Initialize(protocol.ClientCapabilities{})

	caps := result.Capabilities
	if !caps.HoverProvider || !caps.RenameProvider || !caps.DefinitionProvider ||
		!caps.ReferencesProvider || !caps.ImplementationProvider ||
		!caps.DocumentHighlightProvider || !caps.DocumentSymbolProvider ||
		!caps.WorkspaceSymbolProvider || !caps.DocumentFormattingProvider ||
		!caps.DocumentRangeFormattingProvider {
		t.Errorf("missing boolean capabilities: %+v", caps)
	}
	if caps.TextDocumentSync == nil || caps.TextDocumentSync.Change != protocol.SyncIncremental {
		t.Errorf("textDocumentSync = %+v", caps.TextDocumentSync)
	}
	if caps.TextDocumentSync.Save == nil || !caps.TextDocumentSync.Save.IncludeText {
		t.Error("save must include text")
	}
	if caps.CompletionProvider == nil || len(caps.CompletionProvider.TriggerCharacters) != 2 {
		t.Errorf("completionProvider = %+v", caps.CompletionProvider)
	}
	if caps.DocumentOnTypeFormattingProvider == nil ||
		caps.DocumentOnTypeFormattingProvider.FirstTriggerCharacter != ";" {
		t.Errorf("onTypeFormatting = %+v", caps.DocumentOnTypeFormattingProvider)
	}
	if caps.CodeLensProvider == nil || !caps.CodeLensProvider.ResolveProvider {
		t.Errorf("codeLensProvider = %+v", caps.CodeLensProvider)
	}
	if caps.CodeActionProvider == nil || !caps.CodeActionProvider.ResolveProvider {
		t.Errorf("codeActionProvider = %+v", caps.CodeActionProvider)
	}
	if caps.SignatureHelpProvider == nil || len(caps.SignatureHelpProvider.TriggerCharacters) != 2 {
		t.Errorf("signatureHelpProvider = %+v", caps.SignatureHelpProvider)
	}
}

// Property: every advertised provider has a registered handler.
func TestCapabilitiesMatchHandlers(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"A.cs": "class A { }"})

	for _, method := range []string{
		protocol.MethodHover,
		protocol.MethodCompletion,
		protocol.MethodSignatureHelp,
		protocol.MethodDefinition,
		protocol.MethodImplementation,
		protocol.MethodReferences,
		protocol.MethodDocumentHighlight,
		protocol.MethodDocumentSymbol,
		protocol.MethodWorkspaceSymbol,
		protocol.MethodCodeAction,
		protocol.MethodCodeActionResolve,
		protocol.MethodCodeLens,
		protocol.MethodCodeLensResolve,
		protocol.MethodFormatting,
		protocol.MethodRangeFormatting,
		protocol.MethodOnTypeFormatting,
		protocol.MethodRename,
		protocol.MethodDidOpen,
		protocol.MethodDidChange,
		protocol.MethodDidSave,
		protocol.MethodDidClose,
		protocol.MethodMetadata,
	} {
		if !srv.HandlesMethod(method) {
			t.Errorf("no handler registered for %s", method)
		}
	}
}

func TestRequestBeforeInitialize(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{"A.cs": "class A { }"})
	c := lsptest.NewClient(t, srv)

	err := c.Call(protocol.MethodHover, &protocol.HoverParams{}, nil)
	rpcErr, ok := err.(*jsonrpc.Error)
	if !ok || rpcErr.Code != jsonrpc.CodeServerNotInitialized {
		t.Errorf("err = %v, want code %d", err, jsonrpc.CodeServerNotInitialized)
	}
}

func TestUnknownMethod(t *testing.T) {
	c, _ := startClient(t, map[string]string{"A.cs": "class A { }"})
	err := c.Call("textDocument/unknownFeature", struct{}{}, nil)
	rpcErr, ok := err.(*jsonrpc.Error)
	if !ok || rpcErr.Code != jsonrpc.CodeMethodNotFound {
		t.Errorf("err = %v, want MethodNotFound", err)
	}
}

// S2: open a document and hover a method.
func TestOpenAndHover(t *testing.T) {
	c, dir := startClient(t, map[string]string{"Class.cs": "class Class { void M() {} }"})
	uri := lsptest.FileURI(dir, "Class.cs")

	c.Open(uri, "class Class { void M() {} }")
	hover, err := c.Hover(uri, protocol.Position{Line: 0, Character: 19})
	if err != nil {
		t.Fatalf("hover: %v", err)
	}
	if !strings.HasPrefix(hover.Contents.Value, "`Class.M()`") {
		t.Errorf("hover = %q, want prefix `Class.M()`", hover.Contents.Value)
	}
	if hover.Contents.Kind != protocol.Markdown {
		t.Errorf("hover kind = %q", hover.Contents.Kind)
	}
}

// S3: a change is visible to the next documentSymbol request.
func TestChangePropagation(t *testing.T) {
	src := "class C\n{\n    void M()\n    {\n    }\n}\n"
	c, dir := startClient(t, map[string]string{"C.cs": src})
	uri := lsptest.FileURI(dir, "C.cs")
	c.Open(uri, src)

	// Insert a local declaration inside M's body.
	c.ChangeIncremental(uri, 2, protocol.Range{
		Start: protocol.Position{Line: 4, Character: 0},
		End:   protocol.Position{Line: 4, Character: 0},
	}, "        int x = 1;\n")

	syms, err := c.DocumentSymbols(uri)
	if err != nil {
		t.Fatalf("documentSymbol: %v", err)
	}
	var found *protocol.SymbolInformation
	for i := range syms {
		if syms[i].Name == "x" {
			found = &syms[i]
		}
	}
	if found == nil {
		t.Fatalf("symbol for x not found in %v", symNames(syms))
	}
	if found.Location.Range.Start.Line != 4 {
		t.Errorf("x at line %d, want 4", found.Location.Range.Start.Line)
	}
}

// S4: rename across two files.
func TestRenameAcrossFiles(t *testing.T) {
	c, dir := startClient(t, map[string]string{
		"A.cs": "class A { }\n",
		"B.cs": "class B { A field; }\n",
	})
	uriA := lsptest.FileURI(dir, "A.cs")

	edit, err := c.Rename(uriA, protocol.Position{Line: 0, Character: 6}, "Z")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(edit.Changes) != 2 {
		t.Fatalf("edited documents = %d, want 2", len(edit.Changes))
	}
	for uri, edits := range edit.Changes {
		if len(edits) == 0 {
			t.Errorf("no edits for %s", uri)
		}
		for _, e := range edits {
			if !strings.Contains(e.NewText, "Z") {
				t.Errorf("edit %v does not introduce Z", e)
			}
		}
	}
}

// S5: definition on Console lands in decompiled metadata, and the document
// is fetchable via csharp/metadata.
func TestDefinitionIntoMetadata(t *testing.T) {
	src := "using System;\nclass App { void Run() { Console.WriteLine(1); } }\n"
	c, dir := startClient(t, map[string]string{"App.cs": src})
	uri := lsptest.FileURI(dir, "App.cs")
	c.Open(uri, src)

	locs, err := c.Definition(uri, protocol.Position{Line: 1, Character: 27})
	if err != nil {
		t.Fatalf("definition: %v", err)
	}
	if len(locs) != 1 {
		t.Fatalf("locations = %d, want 1", len(locs))
	}
	if !strings.HasPrefix(string(locs[0].URI), "csharp:/metadata/projects/") {
		t.Fatalf("uri = %s, want csharp:/metadata/projects/ prefix", locs[0].URI)
	}

	var meta protocol.MetadataResponse
	c.MustCall(protocol.MethodMetadata, &protocol.MetadataParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: locs[0].URI},
	}, &meta)
	if meta.AssemblyName != "System.Console" || meta.SymbolName != "System.Console" {
		t.Errorf("metadata = %+v", meta)
	}
	if !strings.Contains(meta.Source, "class Console") {
		t.Errorf("decompiled source missing Console:\n%s", meta.Source)
	}

	// Idempotence: a second definition lands on the same URI.
	locs2, err := c.Definition(uri, protocol.Position{Line: 1, Character: 27})
	if err != nil || len(locs2) != 1 || locs2[0].URI != locs[0].URI {
		t.Errorf("second resolution: %v %v", locs2, err)
	}
}

// S6: a cancelled references request answers -32800 promptly.
func TestCancellation(t *testing.T) {
	c, dir := startClient(t, map[string]string{"A.cs": "class A { }"})
	uri := lsptest.FileURI(dir, "A.cs")

	id, ch := c.Request(protocol.MethodReferences, &protocol.ReferenceParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Position:     protocol.Position{Line: 0, Character: 6},
		},
	})
	c.Cancel(id)

	select {
	case resp := <-ch:
		// The request may have finished before the cancel landed; both a
		// result and a RequestCancelled error are protocol-conforming. What
		// must not happen is an error of any other kind or a hang.
		if resp.Error != nil && resp.Error.Code != jsonrpc.CodeRequestCancelled {
			t.Errorf("error = %+v", resp.Error)
		}
	case <-time.After(time.Second):
		t.Fatal("no response within 1s of cancellation")
	}
}

// Diagnostics are published after open. Coalescing of rapid changes is
// covered by the state package's TestDiagnosticsCoalescing.
func TestDiagnosticsPublished(t *testing.T) {
	src := "class A { void M( { } }\n"
	c, dir := startClient(t, map[string]string{"A.cs": src})
	uri := lsptest.FileURI(dir, "A.cs")

	c.Open(uri, src)
	diags := c.WaitForDiagnostics(uri, 2*time.Second)
	if len(diags) == 0 {
		t.Error("expected syntax diagnostics for broken source")
	}
}

func TestDidCloseKeepsDocument(t *testing.T) {
	src := "class A { void M() {} }"
	c, dir := startClient(t, map[string]string{"A.cs": src})
	uri := lsptest.FileURI(dir, "A.cs")

	c.Open(uri, src)
	c.CloseDoc(uri)

	// The solution-side document must still answer queries.
	syms, err := c.DocumentSymbols(uri)
	if err != nil {
		t.Fatalf("documentSymbol after close: %v", err)
	}
	if len(syms) == 0 {
		t.Error("no symbols after didClose")
	}
}

// A missing document yields a success with an empty result, not an error.
func TestMissingDocumentIsEmptySuccess(t *testing.T) {
	c, dir := startClient(t, map[string]string{"A.cs": "class A { }"})
	ghost := lsptest.FileURI(dir, "Ghost.cs")

	syms, err := c.DocumentSymbols(ghost)
	if err != nil {
		t.Fatalf("documentSymbol: %v", err)
	}
	if len(syms) != 0 {
		t.Errorf("symbols = %v", syms)
	}

	hover, err := c.Hover(ghost, protocol.Position{})
	if err != nil {
		t.Fatalf("hover: %v", err)
	}
	if hover.Contents.Value != "" {
		t.Errorf("hover = %+v", hover)
	}
}

func TestSignatureHelpIsEmpty(t *testing.T) {
	c, dir := startClient(t, map[string]string{"A.cs": "class A { void M() {} }"})
	uri := lsptest.FileURI(dir, "A.cs")

	var help protocol.SignatureHelp
	c.MustCall(protocol.MethodSignatureHelp, &protocol.SignatureHelpParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		},
	}, &help)
	if len(help.Signatures) != 0 {
		t.Errorf("signatures = %v", help.Signatures)
	}
}

func TestCodeLensResolve(t *testing.T) {
	src := "class A { void M() { M(); } }"
	c, dir := startClient(t, map[string]string{"A.cs": src})
	uri := lsptest.FileURI(dir, "A.cs")
	c.Open(uri, src)

	var lenses []protocol.CodeLens
	c.MustCall(protocol.MethodCodeLens, &protocol.CodeLensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	}, &lenses)
	if len(lenses) == 0 {
		t.Fatal("no code lenses")
	}
	for _, lens := range lenses {
		if lens.Command != nil {
			t.Errorf("unresolved lens carries a command: %+v", lens)
		}
	}

	var resolved protocol.CodeLens
	c.MustCall(protocol.MethodCodeLensResolve, &lenses[0], &resolved)
	if resolved.Command == nil {
		t.Fatal("resolved lens has no command")
	}
	if resolved.Command.Command != "csharp.showReferences" {
		t.Errorf("command = %q", resolved.Command.Command)
	}
	if !strings.HasSuffix(resolved.Command.Title, "Reference(s)") {
		t.Errorf("title = %q", resolved.Command.Title)
	}
}

func TestCompletionPlainText(t *testing.T) {
	src := "class A { void M() { } }"
	c, dir := startClient(t, map[string]string{"A.cs": src})
	uri := lsptest.FileURI(dir, "A.cs")
	c.Open(uri, src)

	var list protocol.CompletionList
	c.MustCall(protocol.MethodCompletion, &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Position:     protocol.Position{Line: 0, Character: 21},
		},
	}, &list)
	if list.IsIncomplete {
		t.Error("isIncomplete must be false")
	}
	if len(list.Items) == 0 {
		t.Fatal("no completion items")
	}
	for _, item := range list.Items {
		if item.InsertTextFormat != protocol.InsertTextPlain {
			t.Errorf("item %q format = %d", item.Label, item.InsertTextFormat)
			break
		}
	}
}

func symNames(syms []protocol.SymbolInformation) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.Name
	}
	return out
}
