package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
)

const flowBudget = time.Minute

type flowRun struct {
	engine.FlowResult
	Error string         `json:"error,omitempty"`
	State map[string]any `json:"state"`
}

func (s *Server) registerRuntimeTools() {
	s.mcp.AddTool(mcp.NewTool("run_flow",
		mcp.WithDescription("Run an action flow and return its result and the resulting state. Without sessionId the flow runs in a fresh session that is discarded afterwards."),
		mcp.WithString("flowId", mcp.Description("Flow ID on the session's current page"), mcp.Required()),
		mcp.WithString("sessionId", mcp.Description("Existing session ID (optional)")),
		mcp.WithString("path", mcp.Description("Page path for a fresh session (optional, defaults to the first page)")),
	), s.handleRunFlow)
}

func (s *Server) handleRunFlow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	flowID, err := requireString(args, "flowId")
	if err != nil {
		return nil, err
	}

	var sessionID id.SessionID
	if raw := getString(args, "sessionId"); raw != "" {
		if sessionID, err = id.ParseSessionID(raw); err != nil {
			return errorResult(err), nil
		}
	} else {
		session, err := s.sessions.Create(s.workspace.Schema(), getString(args, "path"))
		if err != nil {
			return errorResult(err), nil
		}
		sessionID = session.Info().ID
		defer func() {
			if err := s.sessions.Delete(sessionID); err != nil {
				s.logger.Debug("Scratch session already gone", zap.Error(err))
			}
		}()
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return errorResult(err), nil
	}

	runCtx, cancel := context.WithTimeout(ctx, flowBudget)
	defer cancel()
	result, err := session.RunFlow(runCtx, flowID)
	if result.RunID == "" && err != nil {
		return errorResult(err), nil
	}
	return jsonResult(flowRun{FlowResult: result, Error: result.Error(), State: session.State()})
}
