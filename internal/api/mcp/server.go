package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/runtime"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

// Server exposes workspace edits and flow runs as MCP tools so agents can
// patch the document the same way the editor does.
type Server struct {
	mcp       *server.MCPServer
	workspace *workspace.Workspace
	sessions  *runtime.Manager
	logger    *zap.Logger
}

// Deps holds the collaborators behind the tools
type Deps struct {
	Workspace *workspace.Workspace
	Sessions  *runtime.Manager
	Logger    *zap.Logger
	Version   string
}

// New creates and configures a new MCP server with all tools
func New(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		workspace: deps.Workspace,
		sessions:  deps.Sessions,
		logger:    logger,
	}
	s.mcp = server.NewMCPServer(
		"studio-mcp",
		version,
		server.WithToolCapabilities(true),
	)

	s.registerSchemaTools()
	s.registerTreeTools()
	s.registerRuntimeTools()
	return s
}

// MCP returns the underlying server
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio starts the MCP server on stdin/stdout
func (s *Server) ServeStdio() error {
	s.logger.Info("Starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := codec.MarshalIndent(v)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

// errorResult reports a rejected edit to the agent without failing the call
func errorResult(err error) *mcp.CallToolResult {
	res := textResult(err.Error())
	res.IsError = true
	return res
}

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func requireString(args map[string]any, key string) (string, error) {
	v := getString(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

// pageID falls back to the first page
func (s *Server) pageID(args map[string]any) string {
	if id := getString(args, "pageId"); id != "" {
		return id
	}
	if app := s.workspace.Schema(); len(app.Pages) > 0 {
		return app.Pages[0].ID
	}
	return ""
}

func (s *Server) edited(ctx context.Context, res workspace.EditResult, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		s.logger.Debug("Tool edit rejected", zap.Error(err))
		return errorResult(err), nil
	}
	return jsonResult(res)
}
