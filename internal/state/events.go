// Package state implements the single owner of mutable server state: an
// actor that applies events serially, grants write leases FIFO, and hands out
// immutable snapshots to request scopes. Handlers never touch state directly;
// every mutation flows through an event posted here.
package state

import (
	"github.com/BrianCArnold/csharp-language-server/internal/metadata"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// Event is a state transition applied by the actor loop.
type Event interface{ isEvent() }

// GetState asks for the current state snapshot.
type GetState struct {
	Reply chan<- Snapshot
}

// StartSolutionChange requests the write lease. The reply is answered with
// the current state once the lease is granted; while another lease is live
// the request queues FIFO.
type StartSolutionChange struct {
	Reply chan<- Snapshot
}

// FinishSolutionChange releases the write lease, granting it to the next
// queued requester if any.
type FinishSolutionChange struct{}

// ClientCapabilityChange records the client capabilities from initialize.
type ClientCapabilityChange struct {
	Capabilities *protocol.ClientCapabilities
}

// SolutionChange replaces the canonical solution.
type SolutionChange struct {
	Solution *workspace.Solution
}

// DecompiledMetadataAdd appends a decompiled metadata document. The map is
// append-only and first-write-wins, which makes this event monotone and
// commutative — the one mutation admissible from read scopes.
type DecompiledMetadataAdd struct {
	URI   protocol.DocumentURI
	Entry MetadataEntry
}

// OpenDocVersionAdd records (or advances) the open version of a document.
type OpenDocVersionAdd struct {
	URI     protocol.DocumentURI
	Version int32
}

// OpenDocVersionRemove forgets the open version of a closed document.
type OpenDocVersionRemove struct {
	URI protocol.DocumentURI
}

// PublishDiagnosticsOnDocument marks a document for diagnosis on the next
// timer tick.
type PublishDiagnosticsOnDocument struct {
	URI      protocol.DocumentURI
	Document *workspace.Document
}

// TimerTick drains the pending-diagnostics map.
type TimerTick struct{}

func (GetState) isEvent()                     {}
func (StartSolutionChange) isEvent()          {}
func (FinishSolutionChange) isEvent()         {}
func (ClientCapabilityChange) isEvent()       {}
func (SolutionChange) isEvent()               {}
func (DecompiledMetadataAdd) isEvent()        {}
func (OpenDocVersionAdd) isEvent()            {}
func (OpenDocVersionRemove) isEvent()         {}
func (PublishDiagnosticsOnDocument) isEvent() {}
func (TimerTick) isEvent()                    {}

// MetadataEntry pairs a decompiled metadata descriptor with its document.
type MetadataEntry struct {
	Descriptor metadata.Descriptor
	Document   *workspace.Document
}

// Snapshot is the immutable view of server state handed to request scopes.
// The solution handle is safe to share (solutions are replaced, never
// edited); maps are copied at snapshot time.
type Snapshot struct {
	ClientCapabilities *protocol.ClientCapabilities
	Solution           *workspace.Solution
	OpenVersions       map[protocol.DocumentURI]int32
	Metadata           map[protocol.DocumentURI]MetadataEntry
}
