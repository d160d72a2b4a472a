// Package transport provides the byte-stream transports csharp-ls can serve
// over: stdio (the default for editors), TCP, WebSocket, and an in-memory
// pipe for tests.
package transport

import "io"

// Transport is a bidirectional byte stream carrying framed JSON-RPC.
type Transport interface {
	io.ReadWriteCloser
}
