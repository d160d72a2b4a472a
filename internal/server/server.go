// Package server wires the csharp-ls language server: the JSON-RPC dispatch
// layer, the state actor, and one handler per LSP feature. Handlers are
// registered as read or write: write handlers acquire the solution write
// lease in their non-suspending prologue so they run in wire order; read
// handlers work against a snapshot and run freely in parallel.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/transport"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// Options configures a Server.
type Options struct {
	// SolutionPath is an explicit .sln/.csproj path or a directory to scan.
	// When empty, the current working directory is scanned.
	SolutionPath string

	// DiagnosticsInitialDelay and DiagnosticsInterval control the coalescing
	// diagnostics timer. Zero values take the defaults (1s, 250ms).
	DiagnosticsInitialDelay time.Duration
	DiagnosticsInterval     time.Duration

	Logger *slog.Logger
}

// handlerFunc is a feature handler running against a request scope.
type handlerFunc func(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error)

type handler struct {
	run     handlerFunc
	write   bool
	timeout time.Duration // 0 means none
}

// Server is the csharp-ls language server.
type Server struct {
	name    string
	version string
	logger  *slog.Logger
	opts    Options

	actor  *state.Actor
	conn   *jsonrpc.Conn
	client *Client

	handlers map[string]handler

	initialized atomic.Bool
	shutdown    atomic.Bool

	serveCtx context.Context

	// exitFn is called on the exit notification. Overridable for tests.
	exitFn func(code int)
}

// New creates a server with all handlers registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if opts.DiagnosticsInitialDelay <= 0 {
		opts.DiagnosticsInitialDelay = time.Second
	}
	if opts.DiagnosticsInterval <= 0 {
		opts.DiagnosticsInterval = 250 * time.Millisecond
	}

	s := &Server{
		name:     "csharp-ls",
		version:  "0.1.0",
		logger:   logger,
		opts:     opts,
		actor:    state.NewActor(logger),
		handlers: make(map[string]handler),
		exitFn:   os.Exit,
	}
	s.registerHandlers()
	return s
}

func (s *Server) registerHandlers() {
	// Write handlers: they mutate solution state and run in wire order.
	s.register(protocol.MethodDidOpen, handler{run: s.didOpen, write: true})
	s.register(protocol.MethodDidChange, handler{run: s.didChange, write: true})
	s.register(protocol.MethodDidSave, handler{run: s.didSave, write: true})
	s.register(protocol.MethodDidClose, handler{run: s.didClose, write: true})

	// Read handlers: snapshot-based, freely concurrent.
	s.register(protocol.MethodHover, handler{run: s.hover})
	s.register(protocol.MethodCompletion, handler{run: s.completion})
	s.register(protocol.MethodDefinition, handler{run: s.definition})
	s.register(protocol.MethodImplementation, handler{run: s.implementation})
	s.register(protocol.MethodReferences, handler{run: s.references})
	s.register(protocol.MethodDocumentHighlight, handler{run: s.documentHighlight})
	s.register(protocol.MethodDocumentSymbol, handler{run: s.documentSymbol})
	s.register(protocol.MethodWorkspaceSymbol, handler{run: s.workspaceSymbol})
	s.register(protocol.MethodCodeAction, handler{run: s.codeAction})
	s.register(protocol.MethodCodeActionResolve, handler{run: s.codeActionResolve})
	s.register(protocol.MethodCodeLens, handler{run: s.codeLens})
	s.register(protocol.MethodCodeLensResolve, handler{run: s.codeLensResolve, timeout: 10 * time.Second})
	s.register(protocol.MethodFormatting, handler{run: s.formatting})
	s.register(protocol.MethodRangeFormatting, handler{run: s.rangeFormatting})
	s.register(protocol.MethodOnTypeFormatting, handler{run: s.onTypeFormatting})
	s.register(protocol.MethodRename, handler{run: s.rename})
	s.register(protocol.MethodSignatureHelp, handler{run: s.signatureHelp})
	s.register(protocol.MethodMetadata, handler{run: s.metadataRequest})
}

func (s *Server) register(method string, h handler) {
	s.handlers[method] = h
}

// HandlesMethod reports whether a handler is registered for method.
func (s *Server) HandlesMethod(method string) bool {
	_, ok := s.handlers[method]
	return ok
}

// Serve runs the server over the given transport until the connection ends.
func (s *Server) Serve(ctx context.Context, t transport.Transport) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	codec := jsonrpc.NewCodec(t, t)
	conn := jsonrpc.NewConn(codec, s.dispatch)
	s.conn = conn
	s.client = NewClient(conn)
	s.actor.SetPublisher(s.client)
	s.serveCtx = ctx

	s.logger.Info("server starting", "name", s.name, "version", s.version)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.actor.Run(gctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		err := conn.Run(gctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})
	return g.Wait()
}

// dispatch is the jsonrpc.Handler: invoked synchronously on the read loop,
// it performs the non-suspending prologue (handler lookup, write ticket
// acquisition) and returns the remainder.
func (s *Server) dispatch(ctx context.Context, method string, params jsonrpc.RawMessage) func() (interface{}, error) {
	switch method {
	case protocol.MethodInitialize:
		ticket := s.actor.BeginChange()
		return s.guarded(method, func() (interface{}, error) {
			return s.initialize(ctx, ticket, params)
		})
	case protocol.MethodInitialized:
		return nop
	case protocol.MethodSetTrace:
		return nop
	case protocol.MethodShutdown:
		return s.guarded(method, func() (interface{}, error) {
			if !s.initialized.Load() {
				return nil, &jsonrpc.Error{Code: jsonrpc.CodeServerNotInitialized, Message: "server not initialized"}
			}
			s.shutdown.Store(true)
			s.logger.Info("server shutting down")
			return nil, nil
		})
	case protocol.MethodExit:
		return func() (interface{}, error) {
			s.logger.Info("received exit notification")
			s.conn.Close()
			if s.shutdown.Load() {
				s.exitFn(0)
			} else {
				s.exitFn(1)
			}
			return nil, nil
		}
	}

	h, ok := s.handlers[method]
	if !ok {
		return func() (interface{}, error) {
			return nil, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", method)}
		}
	}

	if !s.initialized.Load() {
		return func() (interface{}, error) {
			return nil, &jsonrpc.Error{Code: jsonrpc.CodeServerNotInitialized, Message: "server not initialized"}
		}
	}

	if h.write {
		// The ticket is acquired here, before any suspension, so write
		// handlers queue deterministically in wire order.
		ticket := s.actor.BeginChange()
		return s.guarded(method, func() (interface{}, error) {
			snap, err := ticket.Wait(ctx)
			if err != nil {
				return nil, err
			}
			scope := ticket.Scope(snap)
			defer scope.Release()
			return h.run(ctx, scope, params)
		})
	}

	hctx := ctx
	var cancel context.CancelFunc
	if h.timeout > 0 {
		hctx, cancel = context.WithTimeout(ctx, h.timeout)
	}
	return s.guarded(method, func() (interface{}, error) {
		if cancel != nil {
			defer cancel()
		}
		snap, err := s.actor.State(hctx)
		if err != nil {
			return nil, err
		}
		scope := s.actor.ReadScope(snap)
		defer scope.Release()
		return h.run(hctx, scope, params)
	})
}

// guarded wraps a handler remainder with panic recovery and request logging.
func (s *Server) guarded(method string, run func() (interface{}, error)) func() (interface{}, error) {
	return func() (result interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in handler",
					"method", method,
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				result = nil
				err = &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: fmt.Sprintf("internal error: %v", r)}
			}
			if err != nil {
				s.logger.Warn("request failed", "method", method, "duration", time.Since(start), "error", err)
			} else {
				s.logger.Debug("request handled", "method", method, "duration", time.Since(start))
			}
		}()
		return run()
	}
}

func nop() (interface{}, error) { return nil, nil }

// initialize records capabilities, loads the solution, starts the
// diagnostics timer, and answers with server capabilities. A solution load
// failure is reported as an error so the client can surface it.
func (s *Server) initialize(ctx context.Context, ticket *state.Ticket, params jsonrpc.RawMessage) (interface{}, error) {
	snap, err := ticket.Wait(ctx)
	if err != nil {
		return nil, err
	}
	scope := ticket.Scope(snap)
	defer scope.Release()

	var p protocol.InitializeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
	}

	if err := scope.Emit(state.ClientCapabilityChange{Capabilities: &p.Capabilities}); err != nil {
		return nil, err
	}

	sol, err := s.loadSolution()
	if err != nil {
		s.logger.Error("solution load failed", "error", err)
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: fmt.Sprintf("loading solution: %v", err)}
	}
	if err := scope.Emit(state.SolutionChange{Solution: sol}); err != nil {
		return nil, err
	}

	s.actor.StartDiagnosticsTimer(s.serveCtx, s.opts.DiagnosticsInitialDelay, s.opts.DiagnosticsInterval)
	s.initialized.Store(true)

	s.logger.Info("server initialized", "solution", sol.Path, "projects", len(sol.Projects))

	return &protocol.InitializeResult{
		Capabilities: s.capabilities(),
		ServerInfo:   &protocol.ServerInfo{Name: s.name, Version: s.version},
	}, nil
}

// loadSolution loads the configured solution, falling back to scanning the
// current working directory.
func (s *Server) loadSolution() (*workspace.Solution, error) {
	if s.opts.SolutionPath != "" {
		return workspace.Load(s.opts.SolutionPath, s.logger)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	return workspace.Discover(cwd, s.logger)
}

// unmarshalParams decodes request params, mapping failures to InvalidParams.
func unmarshalParams[T any](params jsonrpc.RawMessage) (*T, error) {
	var p T
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, &jsonrpc.Error{Code: jsonrpc.CodeInvalidParams, Message: err.Error()}
	}
	return &p, nil
}
