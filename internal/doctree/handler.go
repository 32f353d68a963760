package doctree

import (
	"encoding/json"
	"strconv"

	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/middleware"
	"doc-collab-server/internal/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for doc trees
type Handler struct {
	service Service
	resp    *response.Table
}

// NewHandler creates a new doc tree handler
func NewHandler(service Service, resp *response.Table) *Handler {
	return &Handler{service: service, resp: resp}
}

// FormSave carries the client's tree as raw JSON
type FormSave struct {
	Content json.RawMessage `json:"content" binding:"required"`
}

// Show returns the reconciled tree
func (h *Handler) Show(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("author_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	content, err := h.service.Get(c.Request.Context(), authorID, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, gin.H{"content": json.RawMessage(content)})
}

// Save persists a client tree after sanitization
func (h *Handler) Save(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("author_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	var form FormSave
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	content, err := h.service.Save(c.Request.Context(), authorID, string(form.Content), middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, gin.H{"content": json.RawMessage(content)})
}
