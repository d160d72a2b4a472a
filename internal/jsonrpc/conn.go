// Package jsonrpc implements a bidirectional JSON-RPC 2.0 connection over
// Content-Length framed streams, as specified by the LSP base protocol.
package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Handler dispatches an incoming request or notification. It is invoked
// synchronously on the connection's read loop and must not block: it performs
// only the non-suspending prologue of the method (parameter decoding, lease
// ticket acquisition) and returns the remainder, which the connection runs on
// its own goroutine. This split is what makes handler admission order match
// wire order while still letting cancellation notifications overtake
// long-running work.
type Handler func(ctx context.Context, method string, params RawMessage) func() (interface{}, error)

// Conn is a bidirectional JSON-RPC 2.0 connection with request cancellation
// per the LSP base protocol ($/cancelRequest).
type Conn struct {
	codec   *Codec
	handler Handler

	pending  sync.Map // outbound id key -> chan *Response
	inflight sync.Map // inbound id key -> context.CancelFunc

	nextID    atomic.Int64
	closeOnce sync.Once
	done      chan struct{}
}

// NewConn creates a connection using the given codec and dispatch handler.
func NewConn(codec *Codec, handler Handler) *Conn {
	return &Conn{
		codec:   codec,
		handler: handler,
		done:    make(chan struct{}),
	}
}

// Run reads messages until the connection is closed or a protocol error
// occurs. Unparseable messages terminate the connection.
func (c *Conn) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		default:
		}

		data, err := c.codec.Read()
		if err != nil {
			select {
			case <-c.done:
				return nil
			default:
				return fmt.Errorf("reading message: %w", err)
			}
		}

		msg, err := DecodeMessage(data)
		if err != nil {
			return fmt.Errorf("decoding message: %w", err)
		}

		switch m := msg.(type) {
		case *Request:
			c.acceptRequest(ctx, m)
		case *Notification:
			c.acceptNotification(ctx, m)
		case *Response:
			c.acceptResponse(m)
		}
	}
}

// acceptRequest runs the handler prologue inline, then the remainder on its
// own goroutine. The request context is cancellable via $/cancelRequest.
func (c *Conn) acceptRequest(ctx context.Context, req *Request) {
	rctx, cancel := context.WithCancel(ctx)
	key := req.ID.Key()
	c.inflight.Store(key, cancel)

	run := c.handler(rctx, req.Method, req.Params)

	go func() {
		defer func() {
			c.inflight.Delete(key)
			cancel()
		}()
		result, err := run()
		if isCancellation(rctx, err) {
			result = nil
			err = &Error{Code: CodeRequestCancelled, Message: "request cancelled"}
		}
		resp := NewResponse(req.ID, result, err)
		data, merr := json.Marshal(resp)
		if merr != nil {
			return
		}
		_ = c.codec.Write(data)
	}()
}

func (c *Conn) acceptNotification(ctx context.Context, notif *Notification) {
	// Cancellation is a base-protocol concern: handle it here, synchronously,
	// so it can overtake the in-flight request it names.
	if notif.Method == "$/cancelRequest" {
		var p struct {
			ID ID `json:"id"`
		}
		if err := json.Unmarshal(notif.Params, &p); err == nil {
			if cancel, ok := c.inflight.Load(p.ID.Key()); ok {
				cancel.(context.CancelFunc)()
			}
		}
		return
	}

	run := c.handler(ctx, notif.Method, notif.Params)
	go func() {
		_, _ = run()
	}()
}

func (c *Conn) acceptResponse(resp *Response) {
	if ch, ok := c.pending.LoadAndDelete(resp.ID.Key()); ok {
		ch.(chan *Response) <- resp
	}
}

func isCancellation(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	return err != nil && ctx.Err() == context.Canceled
}

// Call sends a request and waits for the matching response.
func (c *Conn) Call(ctx context.Context, method string, params interface{}) (*Response, error) {
	id := IntID(c.nextID.Add(1))
	paramsData, err := marshalParams(params)
	if err != nil {
		return nil, err
	}

	req := &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	ch := make(chan *Response, 1)
	c.pending.Store(id.Key(), ch)
	defer c.pending.Delete(id.Key())

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := c.codec.Write(data); err != nil {
		return nil, err
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("connection closed")
	}
}

// Notify sends a notification (no response expected).
func (c *Conn) Notify(ctx context.Context, method string, params interface{}) error {
	paramsData, err := marshalParams(params)
	if err != nil {
		return err
	}

	notif := &Notification{
		JSONRPC: Version,
		Method:  method,
		Params:  paramsData,
	}

	data, err := json.Marshal(notif)
	if err != nil {
		return err
	}
	return c.codec.Write(data)
}

// Close terminates the connection.
func (c *Conn) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func marshalParams(v interface{}) (RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}
