package protocol

// LSP method constants.
const (
	// Lifecycle
	MethodInitialize  = "initialize"
	MethodInitialized = "initialized"
	MethodShutdown    = "shutdown"
	MethodExit        = "exit"
	MethodSetTrace    = "$/setTrace"

	// Cancellation
	MethodCancelRequest = "$/cancelRequest"

	// Text document sync
	MethodDidOpen   = "textDocument/didOpen"
	MethodDidChange = "textDocument/didChange"
	MethodDidClose  = "textDocument/didClose"
	MethodDidSave   = "textDocument/didSave"

	// Language features
	MethodHover             = "textDocument/hover"
	MethodCompletion        = "textDocument/completion"
	MethodDefinition        = "textDocument/definition"
	MethodImplementation    = "textDocument/implementation"
	MethodReferences        = "textDocument/references"
	MethodDocumentHighlight = "textDocument/documentHighlight"
	MethodDocumentSymbol    = "textDocument/documentSymbol"
	MethodCodeAction        = "textDocument/codeAction"
	MethodCodeActionResolve = "codeAction/resolve"
	MethodCodeLens          = "textDocument/codeLens"
	MethodCodeLensResolve   = "codeLens/resolve"
	MethodFormatting        = "textDocument/formatting"
	MethodRangeFormatting   = "textDocument/rangeFormatting"
	MethodOnTypeFormatting  = "textDocument/onTypeFormatting"
	MethodRename            = "textDocument/rename"
	MethodSignatureHelp     = "textDocument/signatureHelp"

	// Workspace
	MethodWorkspaceSymbol = "workspace/symbol"

	// Server -> client notifications
	MethodPublishDiagnostics = "textDocument/publishDiagnostics"
	MethodLogMessage         = "window/logMessage"
	MethodShowMessage        = "window/showMessage"

	// Custom
	MethodMetadata = "csharp/metadata"
)
