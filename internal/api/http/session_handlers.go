package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/runtime"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/id"
)

type createSessionRequest struct {
	Path string `json:"path"`
}

type fireRequest struct {
	NodeID string `json:"nodeId" binding:"required"`
	Event  string `json:"event" binding:"required"`
}

type valueRequest struct {
	NodeID string `json:"nodeId" binding:"required"`
	Value  any    `json:"value"`
}

type navigateRequest struct {
	Path string `json:"path" binding:"required"`
}

// flowResponse carries a flow outcome including its error text
type flowResponse struct {
	engine.FlowResult
	Error string `json:"error,omitempty"`
}

// CreateSession starts a runtime session on the current document
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	s, err := h.sessions.Create(h.workspace.Schema(), req.Path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s.Info())
}

// ListSessions lists live sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.sessions.List()})
}

// GetSession returns a session summary
func (h *Handlers) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Info())
}

// DeleteSession closes a session
func (h *Handlers) DeleteSession(c *gin.Context) {
	sessionID, err := id.ParseSessionID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return
	}
	if err := h.sessions.Delete(sessionID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true, "id": sessionID})
}

// RenderSession returns the current page resolved against session state
func (h *Handlers) RenderSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	nodes, err := s.Render()
	if err != nil {
		respondError(c, err)
		return
	}
	info := s.Info()
	c.JSON(http.StatusOK, gin.H{
		"path":       info.Path,
		"pageId":     info.PageID,
		"version":    info.Version,
		"components": nodes,
	})
}

// GetSessionState returns the state snapshot
func (h *Handlers) GetSessionState(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": s.Store().Version(), "data": s.State()})
}

// SetSessionValue writes through a bound node, as an input would
func (h *Handlers) SetSessionValue(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.SetValue(req.NodeID, req.Value); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"version": s.Store().Version(), "data": s.State()})
}

// FireEvent runs the flow wired to a node event
func (h *Handlers) FireEvent(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req fireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := s.Fire(c.Request.Context(), req.NodeID, req.Event)
	h.flowResult(c, result, err)
}

// RunFlow runs a flow of the session's current page
func (h *Handlers) RunFlow(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	result, err := s.RunFlow(c.Request.Context(), c.Param("flow"))
	h.flowResult(c, result, err)
}

// NavigateSession switches the session's page
func (h *Handlers) NavigateSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Navigate(req.Path); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Info())
}

// flowResult answers 200 for any run that started, aborted runs included.
// Only lookup failures are HTTP errors.
func (h *Handlers) flowResult(c *gin.Context, result engine.FlowResult, err error) {
	if result.RunID == "" && err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flowResponse{FlowResult: result, Error: result.Error()})
}

func (h *Handlers) session(c *gin.Context) (*runtime.Session, bool) {
	sessionID, err := id.ParseSessionID(c.Param("id"))
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	s, err := h.sessions.Get(sessionID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}
