package server

import (
	"context"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
)

// Client sends notifications from server to editor.
type Client struct {
	conn *jsonrpc.Conn
}

func NewClient(conn *jsonrpc.Conn) *Client {
	return &Client{conn: conn}
}

// PublishDiagnostics sends diagnostics for a document to the editor.
func (c *Client) PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error {
	return c.conn.Notify(ctx, protocol.MethodPublishDiagnostics, params)
}

// LogMessage sends a log message to the editor.
func (c *Client) LogMessage(ctx context.Context, typ protocol.MessageType, message string) error {
	return c.conn.Notify(ctx, protocol.MethodLogMessage, &protocol.LogMessageParams{
		Type:    typ,
		Message: message,
	})
}

// ShowMessage asks the editor to display a message to the user.
func (c *Client) ShowMessage(ctx context.Context, typ protocol.MessageType, message string) error {
	return c.conn.Notify(ctx, protocol.MethodShowMessage, &protocol.ShowMessageParams{
		Type:    typ,
		Message: message,
	})
}
