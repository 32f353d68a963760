package document

import (
	"strconv"

	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/middleware"
	"doc-collab-server/internal/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for documents
type Handler struct {
	service Service
	resp    *response.Table
}

// NewHandler creates a new document handler
func NewHandler(service Service, resp *response.Table) *Handler {
	return &Handler{service: service, resp: resp}
}

// FormCreate represents document creation data
type FormCreate struct {
	Label string `json:"label" binding:"max=256"`
	Type  string `json:"type" binding:"required,max=32"`
}

// FormEdit represents a metadata patch
type FormEdit struct {
	Label    *string `json:"label" binding:"omitempty,max=256"`
	Type     *string `json:"type" binding:"omitempty,max=32"`
	Recycled *bool   `json:"recycled"`
}

// FormBatch carries explicit ids plus "from-to" ranges
type FormBatch struct {
	IDs    []uint64 `json:"ids"`
	Ranges []string `json:"fts"`
}

// ListByRole lists the documents an author joined with a role. On the
// two-segment route the first path param carries the role.
func (h *Handler) ListByRole(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("author_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}
	role, ok := domain.ParseRole(c.Param("id"))
	if !ok {
		c.Error(errors.BadRequest("invalid role"))
		return
	}

	docs, err := h.service.ListByRole(c.Request.Context(), authorID, role, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, docs)
}

// Create registers a document for the author in the path
func (h *Handler) Create(c *gin.Context) {
	authorID, err := strconv.ParseUint(c.Param("author_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	var form FormCreate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), form.Label, form.Type, authorID, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, doc)
}

// Show returns document metadata; an invite code query param is
// redeemed first
func (h *Handler) Show(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID, middleware.ActorID(c), c.Query("code"))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, doc)
}

// Edit patches document metadata
func (h *Handler) Edit(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	var form FormEdit
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	doc, err := h.service.Edit(c.Request.Context(), docID, DocPatch{
		Label:    form.Label,
		Type:     form.Type,
		Recycled: form.Recycled,
	}, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, doc)
}

// Delete removes the document (owner) or the actor's access (member)
func (h *Handler) Delete(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID, middleware.ActorID(c)); err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, nil)
}

// BatchQuery resolves ids and ranges to readable documents
func (h *Handler) BatchQuery(c *gin.Context) {
	var form FormBatch
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	docs, err := h.service.BatchResolve(c.Request.Context(), form.IDs, form.Ranges, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, docs)
}

// BatchDelete deletes/unlinks ids and ranges, reporting each bucket
func (h *Handler) BatchDelete(c *gin.Context) {
	var form FormBatch
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	result, err := h.service.BatchDelete(c.Request.Context(), form.IDs, form.Ranges, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, result)
}

// Search filters accessible documents by label substring
func (h *Handler) Search(c *gin.Context) {
	docs, err := h.service.Search(c.Request.Context(), c.Query("keywords"), middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, docs)
}
