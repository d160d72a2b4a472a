package jsonrpc

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/BrianCArnold/csharp-language-server/internal/transport"
)

// startConn runs a server-side Conn with the given handler over a memory
// pipe and returns the client-side codec.
func startConn(t *testing.T, handler Handler) *Codec {
	t.Helper()
	clientT, serverT := transport.MemoryPipe()
	conn := NewConn(NewCodec(serverT, serverT), handler)
	ctx, cancel := context.WithCancel(context.Background())
	go conn.Run(ctx)
	t.Cleanup(func() {
		cancel()
		conn.Close()
		clientT.Close()
	})
	return NewCodec(clientT, clientT)
}

func readResponse(t *testing.T, codec *Codec) *Response {
	t.Helper()
	done := make(chan *Response, 1)
	go func() {
		data, err := codec.Read()
		if err != nil {
			return
		}
		msg, err := DecodeMessage(data)
		if err != nil {
			return
		}
		if resp, ok := msg.(*Response); ok {
			done <- resp
		}
	}()
	select {
	case resp := <-done:
		return resp
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for response")
		return nil
	}
}

func TestConnRespondsToRequest(t *testing.T) {
	codec := startConn(t, func(ctx context.Context, method string, params RawMessage) func() (interface{}, error) {
		return func() (interface{}, error) { return map[string]string{"echo": method}, nil }
	})

	codec.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"test/echo"}`))
	resp := readResponse(t, codec)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}
	var result map[string]string
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if result["echo"] != "test/echo" {
		t.Errorf("result = %v", result)
	}
}

// A $/cancelRequest must overtake a long-running handler and produce the
// RequestCancelled error within bounded time.
func TestConnCancellation(t *testing.T) {
	started := make(chan struct{})
	codec := startConn(t, func(ctx context.Context, method string, params RawMessage) func() (interface{}, error) {
		return func() (interface{}, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
	})

	codec.Write([]byte(`{"jsonrpc":"2.0","id":42,"method":"test/slow"}`))
	<-started
	codec.Write([]byte(`{"jsonrpc":"2.0","method":"$/cancelRequest","params":{"id":42}}`))

	resp := readResponse(t, codec)
	if resp.Error == nil {
		t.Fatal("expected an error response")
	}
	if resp.Error.Code != CodeRequestCancelled {
		t.Errorf("error code = %d, want %d", resp.Error.Code, CodeRequestCancelled)
	}
	if resp.Result != nil {
		t.Errorf("cancelled response must carry no result, got %s", resp.Result)
	}
}

// The prologue runs synchronously on the read loop, so prologue side effects
// observe wire order even though remainders run concurrently.
func TestConnPrologueOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	release := make(chan struct{})
	codec := startConn(t, func(ctx context.Context, method string, params RawMessage) func() (interface{}, error) {
		mu.Lock()
		order = append(order, method)
		mu.Unlock()
		return func() (interface{}, error) {
			<-release
			return nil, nil
		}
	})

	codec.Write([]byte(`{"jsonrpc":"2.0","id":1,"method":"first"}`))
	codec.Write([]byte(`{"jsonrpc":"2.0","id":2,"method":"second"}`))
	codec.Write([]byte(`{"jsonrpc":"2.0","id":3,"method":"third"}`))

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(order)
		mu.Unlock()
		if n >= 3 || !time.Now().Before(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(release)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"first", "second", "third"}
	if len(order) != 3 {
		t.Fatalf("prologues seen = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}
