package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
)

type nodeSummary struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	ParentID  string `json:"parentId"`
	Depth     int    `json:"depth"`
	BindState string `json:"bindState,omitempty"`
}

func (s *Server) registerSchemaTools() {
	s.mcp.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Return the whole application schema (pages, flows, initial state, custom library)"),
	), s.handleGetSchema)

	s.mcp.AddTool(mcp.NewTool("list_nodes",
		mcp.WithDescription("List the component nodes of a page in depth-first order with their parent ids"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the first page)")),
	), s.handleListNodes)

	s.mcp.AddTool(mcp.NewTool("save_schema",
		mcp.WithDescription("Persist the current schema to storage"),
	), s.handleSaveSchema)
}

func (s *Server) handleGetSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.workspace.Schema())
}

func (s *Server) handleListNodes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.workspace.Page(s.pageID(req.GetArguments()))
	if err != nil {
		return errorResult(err), nil
	}

	nodes := []nodeSummary{}
	tree.Walk(page.Components, func(n *tree.Node, parentID string, depth int) bool {
		nodes = append(nodes, nodeSummary{
			ID:        n.ID,
			Type:      string(n.Type),
			ParentID:  parentID,
			Depth:     depth,
			BindState: n.BindState,
		})
		return true
	})
	return jsonResult(nodes)
}

func (s *Server) handleSaveSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.workspace.Save(ctx); err != nil {
		return errorResult(err), nil
	}
	return jsonResult(map[string]any{"saved": true, "version": s.workspace.Version()})
}
