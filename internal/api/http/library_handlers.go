package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
)

type saveLibraryRequest struct {
	Name   string `json:"name" binding:"required"`
	NodeID string `json:"nodeId" binding:"required"`
}

type upsertLibraryRequest struct {
	Intent    workspace.LibraryIntent `json:"intent"`
	Name      string                  `json:"name" binding:"required"`
	Component types.ComponentNode     `json:"component"`
}

type insertLibraryRequest struct {
	Page string `json:"page" binding:"required"`
	Over string `json:"over"`
}

// ListLibrary returns the custom component library
func (h *Handlers) ListLibrary(c *gin.Context) {
	entries := h.workspace.Schema().CustomLibrary
	if entries == nil {
		entries = []types.LibraryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"library": entries})
}

// GetLibraryEntry returns one entry
func (h *Handlers) GetLibraryEntry(c *gin.Context) {
	entry, ok := h.workspace.Schema().LibraryEntry(c.Param("id"))
	if !ok {
		respondError(c, workspace.ErrLibraryNotFound)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// SaveToLibrary stores a copy of an existing node under a name
func (h *Handlers) SaveToLibrary(c *gin.Context) {
	var req saveLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusCreated, func() (workspace.EditResult, error) {
		return h.workspace.SaveToLibrary(req.Name, req.NodeID)
	})
}

// UpsertLibrary creates or updates an entry from a component definition
func (h *Handlers) UpsertLibrary(c *gin.Context) {
	var req upsertLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Intent == "" {
		req.Intent = workspace.LibraryCreate
	}
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.UpsertLibrary(req.Intent, req.Name, req.Component)
	})
}

// DeleteLibrary removes an entry
func (h *Handlers) DeleteLibrary(c *gin.Context) {
	h.edit(c, http.StatusOK, func() (workspace.EditResult, error) {
		return h.workspace.DeleteLibrary(c.Param("id"))
	})
}

// InsertFromLibrary places a fresh copy of an entry on a page
func (h *Handlers) InsertFromLibrary(c *gin.Context) {
	var req insertLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.edit(c, http.StatusCreated, func() (workspace.EditResult, error) {
		return h.workspace.InsertFromLibrary(req.Page, c.Param("id"), req.Over)
	})
}

// SeedLibrary reruns the library directory seeder
func (h *Handlers) SeedLibrary(c *gin.Context) {
	if h.seeder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "library directory not configured"})
		return
	}
	result, err := h.seeder.Seed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
