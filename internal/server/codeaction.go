package server

import (
	"context"
	"encoding/json"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
	"github.com/BrianCArnold/csharp-language-server/internal/text"
	"github.com/BrianCArnold/csharp-language-server/internal/workspace"
)

// codeActionData is the round-trip payload attached to unresolved actions,
// serialized as JSON text inside the action's data field.
type codeActionData struct {
	DocumentURI protocol.DocumentURI `json:"documentUri"`
	Range       protocol.Range       `json:"range"`
}

// codeAction enumerates code fixes intersecting the requested span. Clients
// that can resolve lazily get unresolved actions carrying data; everyone
// else gets the actions resolved now. Preferred actions sort first.
func (s *Server) codeAction(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.CodeActionParams](params)
	if err != nil {
		return nil, err
	}
	sol := scope.Solution()
	doc, ok := scope.Document(p.TextDocument.URI)
	if sol == nil || !ok || doc.IsMetadata() {
		return []protocol.CodeAction{}, nil
	}

	start, end := text.RangeToSpan(doc.Text(), p.Range)
	fixes := workspace.CodeFixes(sol, doc, start, end)
	if len(fixes) == 0 {
		return []protocol.CodeAction{}, nil
	}

	lazy := scope.ClientCapabilities().SupportsLazyCodeActions()
	actions := make([]protocol.CodeAction, 0, len(fixes))
	for _, fix := range fixes {
		action := protocol.CodeAction{
			Title:       fix.Title,
			Kind:        fix.Kind,
			IsPreferred: fix.Preferred,
		}
		if lazy {
			payload, merr := json.Marshal(codeActionData{DocumentURI: p.TextDocument.URI, Range: p.Range})
			if merr != nil {
				continue
			}
			// The data payload is the JSON text itself, carried as a string.
			wrapped, merr := json.Marshal(string(payload))
			if merr != nil {
				continue
			}
			action.Data = wrapped
		} else {
			edit, aerr := resolveFix(sol, fix)
			if aerr != nil {
				continue
			}
			action.Edit = edit
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// codeActionResolve re-enumerates the actions for the span carried in data
// and resolves the one matching by title.
func (s *Server) codeActionResolve(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	action, err := unmarshalParams[protocol.CodeAction](params)
	if err != nil {
		return nil, err
	}
	if action.Data == nil {
		return action, nil
	}
	var payload string
	if err := json.Unmarshal(action.Data, &payload); err != nil {
		return action, nil
	}
	var data codeActionData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return action, nil
	}

	sol := scope.Solution()
	doc, ok := scope.Document(data.DocumentURI)
	if sol == nil || !ok {
		return action, nil
	}

	start, end := text.RangeToSpan(doc.Text(), data.Range)
	for _, fix := range workspace.CodeFixes(sol, doc, start, end) {
		if fix.Title != action.Title {
			continue
		}
		edit, aerr := resolveFix(sol, fix)
		if aerr != nil {
			break
		}
		action.Edit = edit
		break
	}
	return action, nil
}

// resolveFix applies a fix to a cloned solution and diffs back to edits.
func resolveFix(sol *workspace.Solution, fix workspace.CodeFix) (*protocol.WorkspaceEdit, error) {
	changed, err := fix.Apply(sol)
	if err != nil {
		return nil, err
	}
	return &protocol.WorkspaceEdit{Changes: workspace.SolutionDiff(sol, changed)}, nil
}
