package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/schema"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/codec"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/types"
	"github.com/GriffinCanCode/Studio/backend/internal/shared/utils"
)

// GetSchema returns the current document
func (h *Handlers) GetSchema(c *gin.Context) {
	c.Header("X-Schema-Version", fmt.Sprint(h.workspace.Version()))
	c.JSON(http.StatusOK, h.workspace.Schema())
}

// PutSchema replaces the document with the request body. The body is the
// raw editor text; nothing is applied when it does not parse or validate.
func (h *Handlers) PutSchema(c *gin.Context) {
	text, ok := h.readDocument(c)
	if !ok {
		return
	}
	res, err := h.workspace.ApplyRawJSON(text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SaveSchema persists the current document
func (h *Handlers) SaveSchema(c *gin.Context) {
	if err := h.workspace.Save(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "version": h.workspace.Version()})
}

// ReloadSchema discards in-memory edits and loads the stored document
func (h *Handlers) ReloadSchema(c *gin.Context) {
	res, err := h.workspace.Load(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ValidateSchema checks a document without applying it
func (h *Handlers) ValidateSchema(c *gin.Context) {
	text, ok := h.readDocument(c)
	if !ok {
		return
	}

	var app types.AppSchema
	if err := codec.Parse(text, &app); err != nil {
		respondError(c, err)
		return
	}

	problems := []string{}
	if err := schema.Validate(&app); err != nil {
		for _, e := range unjoin(err) {
			problems = append(problems, e.Error())
		}
	}
	dangling := map[string][]string{}
	for i := range app.Pages {
		if missing := schema.DanglingFlows(&app.Pages[i]); len(missing) > 0 {
			dangling[app.Pages[i].ID] = missing
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":          len(problems) == 0,
		"errors":         problems,
		"dangling_flows": dangling,
	})
}

// ExportSchema downloads the document as JSON or YAML
func (h *Handlers) ExportSchema(c *gin.Context) {
	format, err := codec.ParseFormat(c.DefaultQuery("format", "json"))
	if err != nil {
		badRequest(c, err)
		return
	}
	data, err := codec.Encode(format, h.workspace.Schema())
	if err != nil {
		respondError(c, err)
		return
	}

	contentType, ext := "application/json", "json"
	if format == codec.FormatYAML {
		contentType, ext = "application/yaml", "yaml"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="schema.%s"`, ext))
	c.Data(http.StatusOK, contentType, data)
}

// readDocument reads a size-limited body and converts YAML to JSON when
// ?format=yaml is given
func (h *Handlers) readDocument(c *gin.Context) ([]byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(utils.MaxSchemaSize)+1)
	text, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return nil, false
	}
	if err := utils.ValidateSize(text, utils.MaxSchemaSize); err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return nil, false
	}

	format, err := codec.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	if format == codec.FormatJSON {
		return text, true
	}

	var doc any
	if err := codec.Decode(format, text, &doc); err != nil {
		respondError(c, err)
		return nil, false
	}
	converted, err := codec.Marshal(doc)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	h.logger.Debug("Converted yaml document", zap.Int("bytes", len(converted)))
	return converted, true
}

// unjoin flattens an errors.Join tree
func unjoin(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, unjoin(e)...)
		}
		return out
	}
	return []error{err}
}
