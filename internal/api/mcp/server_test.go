package mcpserver

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/ai"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/runtime"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	repo := storage.NewRepository(storage.NewMemoryStore(), false, nil, nil)
	cfg := engine.DefaultConfig()
	cfg.RequestDelay = time.Millisecond
	sessions := runtime.NewManager(engine.New(cfg, engine.WithCompleter(&ai.Mock{})), nil, nil)
	t.Cleanup(sessions.Close)
	return New(Deps{Workspace: workspace.New(repo, nil, nil), Sessions: sessions})
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	content, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func decode[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, text(t, res))
	var out T
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	return out
}

func TestListNodes(t *testing.T) {
	s := newServer(t)

	nodes := decode[[]nodeSummary](t, call(t, s.handleListNodes, nil))
	require.Len(t, nodes, 5)
	assert.Equal(t, "header", nodes[0].ID)
	assert.Equal(t, "root-canvas", nodes[0].ParentID)
	assert.Equal(t, "count", nodes[1].BindState)

	res := call(t, s.handleListNodes, map[string]any{"pageId": "nope"})
	assert.True(t, res.IsError)
}

func TestInsertWithProps(t *testing.T) {
	s := newServer(t)

	res := decode[workspace.EditResult](t, call(t, s.handleInsertComponent, map[string]any{
		"type":   "Button",
		"overId": "header",
		"props":  `{"text": "Go"}`,
	}))

	page := s.workspace.Schema().Pages[0]
	assert.Equal(t, res.NodeID, page.Components[1].ID)
	assert.Equal(t, "Go", page.Components[1].Props["text"])

	bad := call(t, s.handleInsertComponent, map[string]any{"type": "Hologram"})
	assert.True(t, bad.IsError)

	var req mcp.CallToolRequest
	_, err := s.handleInsertComponent(context.Background(), req)
	assert.Error(t, err)
}

func TestMoveTools(t *testing.T) {
	s := newServer(t)

	box := decode[workspace.EditResult](t, call(t, s.handleInsertComponent, map[string]any{"type": "Card"})).NodeID

	decode[workspace.EditResult](t, call(t, s.handleMoveIntoComponent, map[string]any{"activeId": "btn-inc", "targetId": box}))
	parent, _ := tree.ContainerOf(s.workspace.Schema().Pages[0].Components, "btn-inc")
	assert.Equal(t, box, parent)

	res := call(t, s.handleMoveIntoComponent, map[string]any{"activeId": box, "targetId": "btn-inc"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "own subtree")

	decode[workspace.EditResult](t, call(t, s.handleMoveComponent, map[string]any{"activeId": "btn-inc", "overId": "header"}))
	parent, _ = tree.ContainerOf(s.workspace.Schema().Pages[0].Components, "btn-inc")
	assert.Equal(t, "root-canvas", parent)
}

func TestRemoveAndUpdate(t *testing.T) {
	s := newServer(t)

	decode[workspace.EditResult](t, call(t, s.handleUpdateProps, map[string]any{"nodeId": "header", "props": `{"content": "Hi"}`}))
	header, _ := tree.Find(s.workspace.Schema().Pages[0].Components, "header")
	assert.Equal(t, "Hi", header.Props["content"])

	assert.True(t, call(t, s.handleUpdateProps, map[string]any{"nodeId": "header", "props": `{"content": `}).IsError)

	decode[workspace.EditResult](t, call(t, s.handleRemoveComponent, map[string]any{"nodeId": "header"}))
	_, found := tree.Find(s.workspace.Schema().Pages[0].Components, "header")
	assert.False(t, found)
	assert.True(t, call(t, s.handleRemoveComponent, map[string]any{"nodeId": "header"}).IsError)
}

func TestApplyComponents(t *testing.T) {
	s := newServer(t)

	reply := "Sure:\n```json\n[{\"id\":\"a\",\"type\":\"Card\",\"children\":[{\"id\":\"b\",\"type\":\"Text\"}]}]\n```"
	decode[workspace.EditResult](t, call(t, s.handleApplyComponents, map[string]any{"components": reply}))

	forest := s.workspace.Schema().Pages[0].Components
	require.Len(t, forest, 1)
	assert.Equal(t, 2, tree.Count(forest))
	assert.NotEqual(t, "a", forest[0].ID)

	assert.True(t, call(t, s.handleApplyComponents, map[string]any{"components": "no json here"}).IsError)
}

func TestSaveAndGetSchema(t *testing.T) {
	s := newServer(t)

	saved := decode[map[string]any](t, call(t, s.handleSaveSchema, nil))
	assert.Equal(t, true, saved["saved"])

	schema := decode[map[string]any](t, call(t, s.handleGetSchema, nil))
	assert.Contains(t, schema, "pages")
}

func TestRunFlowScratchSession(t *testing.T) {
	s := newServer(t)

	run := decode[map[string]any](t, call(t, s.handleRunFlow, map[string]any{"flowId": "flow-inc"}))
	assert.Equal(t, "completed", run["status"])
	assert.Equal(t, float64(10), run["state"].(map[string]any)["count"])
	assert.Zero(t, s.sessions.Count())

	assert.True(t, call(t, s.handleRunFlow, map[string]any{"flowId": "missing"}).IsError)
	assert.True(t, call(t, s.handleRunFlow, map[string]any{"flowId": "flow-inc", "sessionId": "x"}).IsError)
}

func TestRunFlowExistingSession(t *testing.T) {
	s := newServer(t)
	session, err := s.sessions.Create(s.workspace.Schema(), "/demo")
	require.NoError(t, err)

	decode[map[string]any](t, call(t, s.handleRunFlow, map[string]any{
		"flowId":    "flow-inc",
		"sessionId": session.Info().ID.String(),
	}))
	assert.Equal(t, float64(10), session.State()["count"])
	assert.Equal(t, 1, s.sessions.Count())
}

func TestToolsRegistered(t *testing.T) {
	s := newServer(t)

	tools := s.MCP().ListTools()
	for _, name := range []string{
		"get_schema", "list_nodes", "insert_component", "remove_component", "move_component",
		"move_into_component", "update_props", "apply_components", "save_schema", "run_flow",
	} {
		assert.Contains(t, tools, name)
	}
}
