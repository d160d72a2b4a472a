package state

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// Publisher delivers diagnostics notifications to the editor.
type Publisher interface {
	PublishDiagnostics(ctx context.Context, params *protocol.PublishDiagnosticsParams) error
}

// Actor owns all mutable server state and processes one event at a time.
// Events are applied in strict FIFO order of arrival; write leases are
// granted FIFO from the queue, at most one live at any instant.
type Actor struct {
	events chan Event
	logger *slog.Logger

	pubMu     sync.RWMutex
	publisher Publisher

	// Loop-owned state. Only the Run goroutine touches these.
	caps         *protocol.ClientCapabilities
	solution     *workspace.Solution
	openVersions map[protocol.DocumentURI]int32
	metadata     map[protocol.DocumentURI]MetadataEntry
	lease        chan<- Snapshot   // live write lease, nil when free
	leaseQueue   []chan<- Snapshot // waiting write lease requests, FIFO
	pending      map[protocol.DocumentURI]*workspace.Document

	timerOnce sync.Once
}

// NewActor creates an actor; call Run to start its event loop.
func NewActor(logger *slog.Logger) *Actor {
	return &Actor{
		events:       make(chan Event, 64),
		logger:       logger,
		openVersions: make(map[protocol.DocumentURI]int32),
		metadata:     make(map[protocol.DocumentURI]MetadataEntry),
		pending:      make(map[protocol.DocumentURI]*workspace.Document),
	}
}

// SetPublisher wires the outbound diagnostics channel. Must be called before
// the first TimerTick can fire.
func (a *Actor) SetPublisher(p Publisher) {
	a.pubMu.Lock()
	defer a.pubMu.Unlock()
	a.publisher = p
}

// Post enqueues an event. Sends from a single goroutine arrive in order.
func (a *Actor) Post(ev Event) {
	a.events <- ev
}

// Run processes events until the context is cancelled.
func (a *Actor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-a.events:
			a.apply(ev)
		}
	}
}

func (a *Actor) apply(ev Event) {
	switch e := ev.(type) {
	case GetState:
		e.Reply <- a.snapshot()

	case StartSolutionChange:
		if a.lease == nil {
			a.lease = e.Reply
			e.Reply <- a.snapshot()
		} else {
			a.leaseQueue = append(a.leaseQueue, e.Reply)
		}

	case FinishSolutionChange:
		if len(a.leaseQueue) > 0 {
			head := a.leaseQueue[0]
			a.leaseQueue = a.leaseQueue[1:]
			a.lease = head
			head <- a.snapshot()
		} else {
			a.lease = nil
		}

	case ClientCapabilityChange:
		a.caps = e.Capabilities

	case SolutionChange:
		a.solution = e.Solution

	case DecompiledMetadataAdd:
		// First write wins, so repeated resolutions of the same symbol keep
		// reusing one document handle.
		if _, exists := a.metadata[e.URI]; !exists {
			a.metadata[e.URI] = e.Entry
		}

	case OpenDocVersionAdd:
		if cur, ok := a.openVersions[e.URI]; !ok || e.Version > cur {
			a.openVersions[e.URI] = e.Version
		}

	case OpenDocVersionRemove:
		delete(a.openVersions, e.URI)

	case PublishDiagnosticsOnDocument:
		a.pending[e.URI] = e.Document

	case TimerTick:
		a.flushDiagnostics()
	}
}

// flushDiagnostics computes diagnostics once per pending URI — however many
// events marked it since the last tick — publishes them, and empties the map.
func (a *Actor) flushDiagnostics() {
	if len(a.pending) == 0 || a.solution == nil {
		return
	}
	a.pubMu.RLock()
	pub := a.publisher
	a.pubMu.RUnlock()

	for uri := range a.pending {
		// Diagnose the document as it exists in the current solution; a
		// document gone from the solution is dropped silently.
		doc, _, ok := a.solution.DocumentByURI(uri)
		if !ok {
			continue
		}
		diags := workspace.Diagnostics(doc)
		if diags == nil {
			diags = []protocol.Diagnostic{}
		}
		params := &protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: diags,
		}
		if v, ok := a.openVersions[uri]; ok {
			params.Version = &v
		}
		if pub != nil {
			if err := pub.PublishDiagnostics(context.Background(), params); err != nil {
				a.logger.Warn("publishing diagnostics failed", "uri", uri, "error", err)
			}
		}
	}
	a.pending = make(map[protocol.DocumentURI]*workspace.Document)
}

func (a *Actor) snapshot() Snapshot {
	versions := make(map[protocol.DocumentURI]int32, len(a.openVersions))
	for k, v := range a.openVersions {
		versions[k] = v
	}
	meta := make(map[protocol.DocumentURI]MetadataEntry, len(a.metadata))
	for k, v := range a.metadata {
		meta[k] = v
	}
	return Snapshot{
		ClientCapabilities: a.caps,
		Solution:           a.solution,
		OpenVersions:       versions,
		Metadata:           meta,
	}
}

// State obtains a read snapshot of the current state.
func (a *Actor) State(ctx context.Context) (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	a.Post(GetState{Reply: reply})
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Ticket is a queued write-lease request. Created synchronously at handler
// entry so that write handlers queue in wire order; Wait suspends until the
// lease is granted.
type Ticket struct {
	actor   *Actor
	reply   chan Snapshot
	granted bool
	release sync.Once
}

// BeginChange posts StartSolutionChange synchronously and returns the ticket.
// This must happen in the handler's non-suspending prologue: the post, not
// the grant, is what fixes the ordering between write handlers.
func (a *Actor) BeginChange() *Ticket {
	t := &Ticket{actor: a, reply: make(chan Snapshot, 1)}
	a.Post(StartSolutionChange{Reply: t.reply})
	return t
}

// Wait suspends until the write lease is granted. If the context is
// cancelled first, the eventually granted lease is drained and released in
// the background so the queue keeps moving.
func (t *Ticket) Wait(ctx context.Context) (Snapshot, error) {
	select {
	case snap := <-t.reply:
		t.granted = true
		return snap, nil
	case <-ctx.Done():
		t.release.Do(func() {
			go func() {
				<-t.reply
				t.actor.Post(FinishSolutionChange{})
			}()
		})
		return Snapshot{}, ctx.Err()
	}
}

// Release gives the lease back. Safe to call multiple times; a cancelled
// ticket releases through its drain goroutine instead.
func (t *Ticket) Release() {
	if !t.granted {
		return
	}
	t.release.Do(func() {
		t.actor.Post(FinishSolutionChange{})
	})
}

// StartDiagnosticsTimer launches the coalescing diagnostics timer: the first
// tick after initialDelay, then one per interval, until ctx is cancelled.
// Subsequent calls are no-ops.
func (a *Actor) StartDiagnosticsTimer(ctx context.Context, initialDelay, interval time.Duration) {
	a.timerOnce.Do(func() {
		go func() {
			select {
			case <-ctx.Done():
				return
			case <-time.After(initialDelay):
				a.Post(TimerTick{})
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					a.Post(TimerTick{})
				}
			}
		}()
	})
}
