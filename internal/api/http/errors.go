package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/runtime"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/tree"
	"github.com/GriffinCanCode/Studio/backend/internal/domain/workspace"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var parseErr *codec.ParseError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest
	case errors.Is(err, workspace.ErrPageNotFound),
		errors.Is(err, workspace.ErrLibraryNotFound),
		errors.Is(err, tree.ErrNodeNotFound),
		errors.Is(err, engine.ErrFlowNotFound),
		errors.Is(err, runtime.ErrSessionNotFound),
		errors.Is(err, runtime.ErrPageNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrLibraryNameTaken),
		errors.Is(err, schema.ErrDuplicatePageID),
		errors.Is(err, schema.ErrDuplicatePagePath),
		errors.Is(err, schema.ErrDuplicateFlowID),
		errors.Is(err, engine.ErrFlowBusy):
		return http.StatusConflict
	case errors.Is(err, runtime.ErrClosed):
		return http.StatusGone
	case errors.Is(err, workspace.ErrNoRepository):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, workspace.ErrInvalidSchema),
		errors.Is(err, tree.ErrInvalidContainer),
		errors.Is(err, tree.ErrCycle),
		errors.Is(err, tree.ErrDuplicateID),
		errors.Is(err, schema.ErrUnknownType),
		errors.Is(err, schema.ErrEmptyFlow),
		errors.Is(err, runtime.ErrNoHandler),
		errors.Is(err, runtime.ErrNotBound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var parseErr *codec.ParseError
	if errors.As(err, &parseErr) && parseErr.Line > 0 {
		body["line"] = parseErr.Line
		body["column"] = parseErr.Column
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
