package http

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

// PageSummary is one row of the page list
type PageSummary struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Nodes int    `json:"nodes"`
	Flows int    `json:"flows"`
}

// NodeSummary is one row of a flattened component tree
type NodeSummary struct {
	ID        string              `json:"id"`
	Type      types.ComponentType `json:"type"`
	ParentID  string              `json:"parentId"`
	Depth     int                 `json:"depth"`
	BindState string              `json:"bindState,omitempty"`
	Events    map[string]string   `json:"onEvent,omitempty"`
}

type addPageRequest struct {
	ID   string `json:"id" binding:"required"`
	Path string `json:"path" binding:"required"`
}

type insertRequest struct {
	// Type inserts a palette node next to Over (or at the end of the root)
	Type types.ComponentType `json:"type"`
	Over string              `json:"over"`
	// Node inserts a prepared node into Container at Index
	Node      *types.ComponentNode `json:"node"`
	Container string               `json:"container"`
	Index     *int                 `json:"index"` // appends when omitted
}

type moveRequest struct {
	Active string `json:"active" binding:"required"`
	Over   string `json:"over"`
	Target string `json:"target"`
}

type nodeRequest struct {
	ID string `json:"id" binding:"required"`
}

type propsRequest struct {
	ID    string         `json:"id" binding:"required"`
	Props map[string]any `json:"props" binding:"required"`
}

type bindingRequest struct {
	Key string `json:"key"`
}

type eventRequest struct {
	Event string `json:"event" binding:"required"`
	Flow  string `json:"flow"`
}

// ListPages lists the pages of the document
func (h *Handlers) ListPages(c *gin.Context) {
	app := h.workspace.Schema()
	pages := make([]PageSummary, 0, len(app.Pages))
	for _, p := range app.Pages {
		pages = append(pages, PageSummary{ID: p.ID, Path: p.Path, Nodes: tree.Count(p.Components), Flows: len(p.Actions)})
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// AddPage appends an empty page
func (h *Handlers) AddPage(c *gin.Context) {
	var req addPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusCreated, func() (workspace.EditResult, error) {
		return h.workspace.AddPage(req.ID, req.Path)
	})
}

// GetPage returns one page
func (h *Handlers) GetPage(c *gin.Context) {
	page, err := h.workspace.Page(c.Param("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdatePage changes a page's path or props
func (h *Handlers) UpdatePage(c *gin.Context) {
	var req workspace.PageUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.UpdatePage(c.Param("page"), req)
	})
}

// DeletePage removes a page
func (h *Handlers) DeletePage(c *gin.Context) {
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.DeletePage(c.Param("page"))
	})
}

// ListNodes flattens a page's component tree
func (h *Handlers) ListNodes(c *gin.Context) {
	page, err := h.workspace.Page(c.Param("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	nodes := []NodeSummary{}
	tree.Walk(page.Components, func(n *types.ComponentNode, parentID string, depth int) bool {
		nodes = append(nodes, NodeSummary{
			ID: n.ID, Type: n.Type, ParentID: parentID, Depth: depth,
			BindState: n.BindState, Events: n.OnEvent,
		})
		return true
	})
	c.JSON(http.StatusOK, gin.H{"nodes": nodes})
}

// GetNode returns one node subtree
func (h *Handlers) GetNode(c *gin.Context) {
	page, err := h.workspace.Page(c.Param("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	node, ok := tree.Find(page.Components, c.Param("id"))
	if !ok {
		respondError(c, tree.ErrNodeNotFound)
		return
	}
	c.JSON(http.StatusOK, node)
}

// InsertNode adds a palette node by type or a prepared node
func (h *Handlers) InsertNode(c *gin.Context) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	pageID := c.Param("page")

	switch {
	case req.Node != nil:
		container := req.Container
		if container == "" {
			container = types.RootCanvasID
		}
		index := math.MaxInt
		if req.Index != nil {
			index = *req.Index
		}
		h.edit(c, http.StatusCreated, func() (workspace.EditResult, error) {
			return h.workspace.Insert(pageID, container, *req.Node, index)
		})
	case req.Type != "":
		h.edit(c, http.StatusCreated, func() (workspace.EditResult, error) {
			return h.workspace.InsertNew(pageID, req.Type, req.Over)
		})
	default:
		badRequest(c, errors.New("either type or node is required"))
	}
}

// RemoveNode deletes a node and its subtree
func (h *Handlers) RemoveNode(c *gin.Context) {
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.Remove(c.Param("page"), c.Param("id"))
	})
}

// MoveNode reorders a node next to another
func (h *Handlers) MoveNode(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.Move(c.Param("page"), req.Active, req.Over)
	})
}

// MoveIntoNode nests a node inside a container
func (h *Handlers) MoveIntoNode(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	target := req.Target
	if target == "" {
		target = req.Over
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.MoveInto(c.Param("page"), req.Active, target)
	})
}

// DropNode resolves a drag-and-drop gesture
func (h *Handlers) DropNode(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.Drop(c.Param("page"), req.Active, req.Over)
	})
}

// DuplicateNode clones a subtree after its source
func (h *Handlers) DuplicateNode(c *gin.Context) {
	var req nodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusCreated, func() (workspace.EditResult, error) {
		return h.workspace.Duplicate(c.Param("page"), req.ID)
	})
}

// UpdateProps merges props into a node
func (h *Handlers) UpdateProps(c *gin.Context) {
	var req propsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.UpdateProps(c.Param("page"), req.ID, req.Props)
	})
}

// SetBinding binds a node to a state key. An empty key unbinds.
func (h *Handlers) SetBinding(c *gin.Context) {
	var req bindingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.SetBinding(c.Param("page"), c.Param("id"), req.Key)
	})
}

// SetEvent wires a node event to a flow. An empty flow unwires it.
func (h *Handlers) SetEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.SetEvent(c.Param("page"), c.Param("id"), req.Event, req.Flow)
	})
}

// ReplaceComponents swaps the page forest. Ids are re-minted.
func (h *Handlers) ReplaceComponents(c *gin.Context) {
	var forest []types.ComponentNode
	if err := c.ShouldBindJSON(&forest); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.ReplaceComponents(c.Param("page"), forest)
	})
}

// ListFlows returns a page's flows
func (h *Handlers) ListFlows(c *gin.Context) {
	page, err := h.workspace.Page(c.Param("page"))
	if err != nil {
		respondError(c, err)
		return
	}
	flows := page.Actions
	if flows == nil {
		flows = []types.ActionFlow{}
	}
	c.JSON(http.StatusOK, gin.H{"flows": flows})
}

// UpsertFlow adds or replaces a flow
func (h *Handlers) UpsertFlow(c *gin.Context) {
	var flow types.ActionFlow
	if err := c.ShouldBindJSON(&flow); err != nil {
		badRequest(c, err)
		return
	}
	if flowID := c.Param("flow"); flowID != "" {
		flow.ID = flowID
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.UpsertFlow(c.Param("page"), flow)
	})
}

// DeleteFlow removes a flow
func (h *Handlers) DeleteFlow(c *gin.Context) {
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.DeleteFlow(c.Param("page"), c.Param("flow"))
	})
}

// GetInitialState returns the document's initial state
func (h *Handlers) GetInitialState(c *gin.Context) {
	state := h.workspace.Schema().InitialState
	if state == nil {
		state = map[string]any{}
	}
	c.JSON(http.StatusOK, state)
}

// SetInitialState replaces (PUT) or merges (PATCH) the initial state
func (h *Handlers) SetInitialState(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateJSONDepth(data, utils.MaxSchemaDepth); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		if c.Request.Method == http.MethodPatch {
			return h.workspace.MergeInitialState(data)
		}
		return h.workspace.SetInitialState(data)
	})
}

// edit runs one workspace edit and writes its result
func (h *Handlers) edit(c *gin.Context, status int, fn func() (workspace.EditResult, error)) {
	res, err := fn()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, res)
}
