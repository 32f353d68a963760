package access

import (
	"strconv"

	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/middleware"
	"doc-collab-server/internal/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for access control
type Handler struct {
	engine Engine
	resp   *response.Table
}

// NewHandler creates a new access handler
func NewHandler(engine Engine, resp *response.Table) *Handler {
	return &Handler{engine: engine, resp: resp}
}

// FormGrant represents a grant request
type FormGrant struct {
	DocID    uint64 `json:"doc_id" binding:"required"`
	AuthorID uint64 `json:"author_id" binding:"required"`
	Role     *int   `json:"role" binding:"required"`
}

// Query returns the target author's access row on a document
func (h *Handler) Query(c *gin.Context) {
	authorID, err1 := strconv.ParseUint(c.Query("author_id"), 10, 64)
	docID, err2 := strconv.ParseUint(c.Query("doc_id"), 10, 64)
	if err1 != nil || err2 != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	dto, err := h.engine.QueryAccess(c.Request.Context(), authorID, docID, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, dto)
}

// Grant gives the target author a role on a document
func (h *Handler) Grant(c *gin.Context) {
	var form FormGrant
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	err := h.engine.Grant(c.Request.Context(), form.DocID, form.AuthorID, domain.Role(*form.Role), middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, nil)
}

// Revoke removes the target author's access to a document
func (h *Handler) Revoke(c *gin.Context) {
	docID, err1 := strconv.ParseUint(c.Param("doc_id"), 10, 64)
	authorID, err2 := strconv.ParseUint(c.Param("author_id"), 10, 64)
	if err1 != nil || err2 != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	err := h.engine.Revoke(c.Request.Context(), docID, authorID, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, nil)
}

// InviteLink issues (or reuses) a redeemable link for a document
func (h *Handler) InviteLink(c *gin.Context) {
	docID, err := strconv.ParseUint(c.Query("doc_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	var role domain.Role
	switch c.Query("auth") {
	case "read":
		role = domain.RoleRead
	case "collaborate":
		role = domain.RoleCollaborate
	default:
		c.Error(errors.Biz(NameInvalidRole))
		return
	}

	link, err := h.engine.IssueInviteLink(c.Request.Context(), docID, role, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, gin.H{"link": link})
}
