// Package lsptest provides an in-memory LSP client for server tests. It
// speaks framed JSON-RPC over a memory pipe with explicit request IDs, so
// tests can exercise cancellation and response correlation directly.
package lsptest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/server"
	"github.com/BrianCArnold/csharp-language-server/internal/transport"
)

// Client is a test LSP client connected to a server over an in-memory
// transport.
type Client struct {
	t     testing.TB
	codec *jsonrpc.Codec
	stop  func()

	mu            sync.Mutex
	nextID        int64
	waiters       map[string]chan *jsonrpc.Response
	notifications []Notification
}

// Notification is a server-to-client notification captured by the harness.
type Notification struct {
	Method string
	Params json.RawMessage
}

// NewClient starts the server over a memory pipe and returns a connected
// client. The server is stopped when the test finishes. Initialize is NOT
// sent automatically; call Initialize.
func NewClient(t testing.TB, srv *server.Server) *Client {
	clientTransport, serverTransport := transport.MemoryPipe()
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := srv.Serve(ctx, serverTransport); err != nil && ctx.Err() == nil {
			t.Logf("server error: %v", err)
		}
	}()

	c := &Client{
		t:       t,
		codec:   jsonrpc.NewCodec(clientTransport, clientTransport),
		stop:    cancel,
		waiters: make(map[string]chan *jsonrpc.Response),
	}
	go c.readLoop()

	t.Cleanup(func() {
		cancel()
		clientTransport.Close()
	})
	return c
}

func (c *Client) readLoop() {
	for {
		data, err := c.codec.Read()
		if err != nil {
			return
		}
		msg, err := jsonrpc.DecodeMessage(data)
		if err != nil {
			continue
		}
		switch m := msg.(type) {
		case *jsonrpc.Response:
			c.mu.Lock()
			if ch, ok := c.waiters[m.ID.Key()]; ok {
				delete(c.waiters, m.ID.Key())
				ch <- m
			}
			c.mu.Unlock()
		case *jsonrpc.Notification:
			c.mu.Lock()
			c.notifications = append(c.notifications, Notification{Method: m.Method, Params: m.Params})
			c.mu.Unlock()
		}
	}
}

// Request sends a request and returns its ID plus a channel for the response.
func (c *Client) Request(method string, params interface{}) (jsonrpc.ID, <-chan *jsonrpc.Response) {
	c.t.Helper()
	c.mu.Lock()
	c.nextID++
	id := jsonrpc.IntID(c.nextID)
	ch := make(chan *jsonrpc.Response, 1)
	c.waiters[id.Key()] = ch
	c.mu.Unlock()

	raw, err := json.Marshal(params)
	if err != nil {
		c.t.Fatalf("marshal params: %v", err)
	}
	req := &jsonrpc.Request{JSONRPC: jsonrpc.Version, ID: id, Method: method, Params: raw}
	c.write(req)
	return id, ch
}

// Call sends a request and waits up to 5 seconds for the response.
func (c *Client) Call(method string, params, result interface{}) error {
	c.t.Helper()
	_, ch := c.Request(method, params)
	select {
	case resp := <-ch:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && resp.Result != nil {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timed out waiting for %s response", method)
	}
}

// MustCall is Call that fails the test on error.
func (c *Client) MustCall(method string, params, result interface{}) {
	c.t.Helper()
	if err := c.Call(method, params, result); err != nil {
		c.t.Fatalf("call %s failed: %v", method, err)
	}
}

// Notify sends a notification.
func (c *Client) Notify(method string, params interface{}) {
	c.t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		c.t.Fatalf("marshal params: %v", err)
	}
	c.write(&jsonrpc.Notification{JSONRPC: jsonrpc.Version, Method: method, Params: raw})
}

// Cancel sends $/cancelRequest for the given request ID.
func (c *Client) Cancel(id jsonrpc.ID) {
	c.t.Helper()
	raw, _ := json.Marshal(id)
	c.Notify(protocol.MethodCancelRequest, map[string]json.RawMessage{"id": raw})
}

func (c *Client) write(msg interface{}) {
	c.t.Helper()
	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("marshal message: %v", err)
	}
	if err := c.codec.Write(data); err != nil {
		c.t.Fatalf("write message: %v", err)
	}
}

// Initialize performs the initialize/initialized handshake.
func (c *Client) Initialize(caps protocol.ClientCapabilities) *protocol.InitializeResult {
	c.t.Helper()
	var result protocol.InitializeResult
	c.MustCall(protocol.MethodInitialize, &protocol.InitializeParams{Capabilities: caps}, &result)
	c.Notify(protocol.MethodInitialized, &protocol.InitializedParams{})
	return &result
}

// Open sends textDocument/didOpen.
func (c *Client) Open(uri, text string) {
	c.t.Helper()
	c.Notify(protocol.MethodDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        protocol.DocumentURI(uri),
			LanguageID: "csharp",
			Version:    1,
			Text:       text,
		},
	})
	c.settle()
}

// ChangeFull sends a didChange with full-text replacement.
func (c *Client) ChangeFull(uri string, version int32, text string) {
	c.t.Helper()
	c.Notify(protocol.MethodDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: text}},
	})
	c.settle()
}

// ChangeIncremental sends a didChange with a ranged edit.
func (c *Client) ChangeIncremental(uri string, version int32, rng protocol.Range, text string) {
	c.t.Helper()
	c.Notify(protocol.MethodDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Range: &rng, Text: text}},
	})
	c.settle()
}

// CloseDoc sends textDocument/didClose.
func (c *Client) CloseDoc(uri string) {
	c.t.Helper()
	c.Notify(protocol.MethodDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	})
	c.settle()
}

// Hover sends textDocument/hover.
func (c *Client) Hover(uri string, pos protocol.Position) (*protocol.Hover, error) {
	c.t.Helper()
	var result protocol.Hover
	err := c.Call(protocol.MethodHover, &protocol.HoverParams{
		TextDocumentPositionParams: posParams(uri, pos),
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Definition sends textDocument/definition.
func (c *Client) Definition(uri string, pos protocol.Position) ([]protocol.Location, error) {
	c.t.Helper()
	var result []protocol.Location
	err := c.Call(protocol.MethodDefinition, &protocol.DefinitionParams{
		TextDocumentPositionParams: posParams(uri, pos),
	}, &result)
	return result, err
}

// DocumentSymbols sends textDocument/documentSymbol.
func (c *Client) DocumentSymbols(uri string) ([]protocol.SymbolInformation, error) {
	c.t.Helper()
	var result []protocol.SymbolInformation
	err := c.Call(protocol.MethodDocumentSymbol, &protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
	}, &result)
	return result, err
}

// Rename sends textDocument/rename.
func (c *Client) Rename(uri string, pos protocol.Position, newName string) (*protocol.WorkspaceEdit, error) {
	c.t.Helper()
	var result protocol.WorkspaceEdit
	err := c.Call(protocol.MethodRename, &protocol.RenameParams{
		TextDocumentPositionParams: posParams(uri, pos),
		NewName:                    newName,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DiagnosticsFor returns every publishDiagnostics batch received for uri.
func (c *Client) DiagnosticsFor(uri string) []protocol.PublishDiagnosticsParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.PublishDiagnosticsParams
	for _, n := range c.notifications {
		if n.Method != protocol.MethodPublishDiagnostics {
			continue
		}
		var p protocol.PublishDiagnosticsParams
		if json.Unmarshal(n.Params, &p) == nil && string(p.URI) == uri {
			out = append(out, p)
		}
	}
	return out
}

// WaitForDiagnostics polls until a publishDiagnostics arrives for uri.
func (c *Client) WaitForDiagnostics(uri string, timeout time.Duration) []protocol.Diagnostic {
	c.t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if batches := c.DiagnosticsFor(uri); len(batches) > 0 {
			return batches[len(batches)-1].Diagnostics
		}
		time.Sleep(10 * time.Millisecond)
	}
	c.t.Fatalf("timed out waiting for diagnostics on %s", uri)
	return nil
}

// settle gives the server a moment to process a notification.
func (c *Client) settle() {
	time.Sleep(25 * time.Millisecond)
}

func posParams(uri string, pos protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: protocol.DocumentURI(uri)},
		Position:     pos,
	}
}
