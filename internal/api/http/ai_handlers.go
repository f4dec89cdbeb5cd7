package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/ai"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
	// Page supplies the component context, the first page when empty
	Page  string `json:"page"`
	Apply bool   `json:"apply"`
}

type chatResponse struct {
	ai.Reply
	Applied *workspace.EditResult `json:"applied,omitempty"`
}

type generateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Page   string `json:"page"`
	Apply  bool   `json:"apply"`
}

type codeRequest struct {
	Prompt   string `json:"prompt" binding:"required"`
	Language string `json:"language"`
}

// Chat answers a copilot message. With apply set, layout replies replace
// the page components and library intents update the library.
func (h *Handlers) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePrompt(req.Message); err != nil {
		badRequest(c, err)
		return
	}

	pageID := h.pageOrFirst(req.Page)
	components := h.pageComponents(pageID)

	reply, err := h.ai.Chat(c.Request.Context(), req.Message, components)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := chatResponse{Reply: reply}
	if req.Apply {
		var res workspace.EditResult
		switch reply.Kind {
		case ai.ReplyLayout:
			res, err = h.workspace.ReplaceComponents(pageID, reply.Components)
		case ai.ReplyIntent:
			res, err = h.workspace.UpsertLibrary(workspace.LibraryIntent(reply.Intent), reply.Name, *reply.Component)
		}
		if err != nil {
			h.logger.Warn("Copilot reply not applied", zap.String("kind", string(reply.Kind)), zap.Error(err))
			respondError(c, err)
			return
		}
		if res.Op != "" {
			resp.Applied = &res
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateLayout asks for a component forest, optionally applied to a page
func (h *Handlers) GenerateLayout(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePrompt(req.Prompt); err != nil {
		badRequest(c, err)
		return
	}

	forest, err := h.ai.GenerateLayout(c.Request.Context(), req.Prompt)
	if err != nil {
		aiError(c, err)
		return
	}
	body := gin.H{"components": forest}
	if req.Apply {
		res, err := h.workspace.ReplaceComponents(h.pageOrFirst(req.Page), forest)
		if err != nil {
			respondError(c, err)
			return
		}
		body["applied"] = res
	}
	c.JSON(http.StatusOK, body)
}

// GenerateData asks for mock state, optionally merged into initialState
func (h *Handlers) GenerateData(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePrompt(req.Prompt); err != nil {
		badRequest(c, err)
		return
	}

	data, err := h.ai.GenerateData(c.Request.Context(), req.Prompt, h.workspace.Schema().InitialState)
	if err != nil {
		aiError(c, err)
		return
	}
	body := gin.H{"data": data}
	if req.Apply {
		res, err := h.workspace.MergeInitialState(data)
		if err != nil {
			respondError(c, err)
			return
		}
		body["applied"] = res
	}
	c.JSON(http.StatusOK, body)
}

// GenerateCode asks for a script or style snippet
func (h *Handlers) GenerateCode(c *gin.Context) {
	var req codeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidatePrompt(req.Prompt); err != nil {
		badRequest(c, err)
		return
	}
	if req.Language == "" {
		req.Language = "javascript"
	}

	code, err := h.ai.GenerateCode(c.Request.Context(), req.Language, req.Prompt)
	if err != nil {
		aiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": req.Language, "code": code})
}

// aiError reports unusable answers as 422 and upstream failures as 502
func aiError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ai.ErrInvalidLayout), errors.Is(err, ai.ErrInvalidData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, err)
	default:
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": ai.ErrorText(err)})
	}
}

func (h *Handlers) pageOrFirst(pageID string) string {
	if pageID != "" {
		return pageID
	}
	if app := h.workspace.Schema(); len(app.Pages) > 0 {
		return app.Pages[0].ID
	}
	return ""
}

func (h *Handlers) pageComponents(pageID string) []types.ComponentNode {
	page, err := h.workspace.Page(pageID)
	if err != nil {
		return nil
	}
	return page.Components
}
