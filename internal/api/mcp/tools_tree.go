package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/ai"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

func boolPtr(v bool) *bool { return &v }

func (s *Server) registerTreeTools() {
	s.mcp.AddTool(mcp.NewTool("insert_component",
		mcp.WithDescription("Insert a new palette component. Dropped on a container it is appended as a child, on a leaf it goes right after it, without overId it is appended to the page."),
		mcp.WithString("type",
			mcp.Description("Component type: Text, Button, Input, Image, Container, Card, Divider, Checkbox, Switch, CustomComponent"),
			mcp.Required(),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the first page)")),
		mcp.WithString("overId", mcp.Description("Node the component is dropped on (optional)")),
		mcp.WithString("props", mcp.Description("JSON object merged into the default props (optional)")),
	), s.handleInsertComponent)

	s.mcp.AddTool(mcp.NewTool("remove_component",
		mcp.WithDescription("Remove a component and its whole subtree"),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the first page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleRemoveComponent)

	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component next to another one, possibly into another container"),
		mcp.WithString("activeId", mcp.Description("Node being moved"), mcp.Required()),
		mcp.WithString("overId", mcp.Description("Node it is dropped on"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the first page)")),
	), s.handleMoveComponent)

	s.mcp.AddTool(mcp.NewTool("move_into_component",
		mcp.WithDescription("Move a component to the end of a container's children. Use root-canvas for the page itself."),
		mcp.WithString("activeId", mcp.Description("Node being moved"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Container node"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the first page)")),
	), s.handleMoveIntoComponent)

	s.mcp.AddTool(mcp.NewTool("update_props",
		mcp.WithDescription("Shallow-merge props into a component"),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("props", mcp.Description("JSON object of props to merge"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the first page)")),
	), s.handleUpdateProps)

	s.mcp.AddTool(mcp.NewTool("apply_components",
		mcp.WithDescription("Replace a page's component tree with a JSON array of components. Surrounding prose and markdown fences are ignored; ids are re-minted."),
		mcp.WithString("components", mcp.Description("JSON array of component nodes"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to the first page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleApplyComponents)
}

func propsArg(args map[string]any) (map[string]any, error) {
	switch v := args["props"].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var props map[string]any
		if err := codec.Parse([]byte(v), &props); err != nil {
			return nil, fmt.Errorf("props: %w", err)
		}
		return props, nil
	default:
		return nil, errors.New("props must be a JSON object")
	}
}

func (s *Server) handleInsertComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	typ, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}
	props, err := propsArg(args)
	if err != nil {
		return errorResult(err), nil
	}

	pageID := s.pageID(args)
	res, err := s.workspace.InsertNew(pageID, types.ComponentType(typ), getString(args, "overId"))
	if err != nil || len(props) == 0 {
		return s.edited(ctx, res, err)
	}
	res, err = s.workspace.UpdateProps(pageID, res.NodeID, props)
	return s.edited(ctx, res, err)
}

func (s *Server) handleRemoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	nodeID, err := requireString(args, "nodeId")
	if err != nil {
		return nil, err
	}
	res, err := s.workspace.Remove(s.pageID(args), nodeID)
	return s.edited(ctx, res, err)
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	active, err := requireString(args, "activeId")
	if err != nil {
		return nil, err
	}
	over, err := requireString(args, "overId")
	if err != nil {
		return nil, err
	}
	res, err := s.workspace.Move(s.pageID(args), active, over)
	return s.edited(ctx, res, err)
}

func (s *Server) handleMoveIntoComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	active, err := requireString(args, "activeId")
	if err != nil {
		return nil, err
	}
	target, err := requireString(args, "targetId")
	if err != nil {
		return nil, err
	}
	res, err := s.workspace.MoveInto(s.pageID(args), active, target)
	return s.edited(ctx, res, err)
}

func (s *Server) handleUpdateProps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	nodeID, err := requireString(args, "nodeId")
	if err != nil {
		return nil, err
	}
	props, err := propsArg(args)
	if err != nil {
		return errorResult(err), nil
	}
	if props == nil {
		return errorResult(errors.New("props is required")), nil
	}
	res, err := s.workspace.UpdateProps(s.pageID(args), nodeID, props)
	return s.edited(ctx, res, err)
}

func (s *Server) handleApplyComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	text, err := requireString(args, "components")
	if err != nil {
		return nil, err
	}
	forest, ok := ai.ExtractForest(text)
	if !ok {
		return errorResult(ai.ErrInvalidLayout), nil
	}
	res, err := s.workspace.ReplaceComponents(s.pageID(args), forest)
	return s.edited(ctx, res, err)
}
