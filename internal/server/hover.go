package server

import (
	"context"
	"fmt"

	"github.com/BrianCArnold/csharp-language-server/internal/jsonrpc"
	"github.com/BrianCArnold/csharp-language-server/internal/protocol"
	"github.com/BrianCArnold/csharp-language-server/internal/state"
)

// hover renders a single markdown block: the backticked display name,
// annotated with the assembly when the symbol lives outside the current
// project, followed by the formatted documentation comment.
func (s *Server) hover(ctx context.Context, scope *state.Scope, params jsonrpc.RawMessage) (interface{}, error) {
	p, err := unmarshalParams[protocol.HoverParams](params)
	if err != nil {
		return nil, err
	}
	sym := scope.SymbolAt(p.TextDocument.URI, p.Position)
	if sym == nil || (!sym.HasSourceDefinition() && !sym.HasMetadataDefinition()) {
		return nil, nil
	}

	md := "`" + sym.Display + "`"
	if sym.HasMetadataDefinition() {
		md = fmt.Sprintf("%s from assembly %s", md, sym.Assembly)
	} else if sol := scope.Solution(); sol != nil && sym.Project != nil {
		if doc, ok := scope.Document(p.TextDocument.URI); ok {
			if cur := sol.ProjectOf(doc); cur != nil && cur.AssemblyName != sym.Project.AssemblyName {
				md = fmt.Sprintf("%s from assembly %s", md, sym.Project.AssemblyName)
			}
		}
	}
	if sym.DocComment != "" {
		md += "\n\n" + sym.DocComment
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: md},
	}, nil
}
