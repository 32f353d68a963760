package author

import (
	"strconv"

	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/middleware"
	"doc-collab-server/internal/response"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for authors
type Handler struct {
	service Service
	resp    *response.Table
}

// NewHandler creates a new author handler
func NewHandler(service Service, resp *response.Table) *Handler {
	return &Handler{service: service, resp: resp}
}

// FormRegister represents registration form data
type FormRegister struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Nickname string `json:"nickname" binding:"required,max=128"`
}

// FormLogin represents login form data
type FormLogin struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// FormActivate carries the verification code with the bearer token
type FormActivate struct {
	Code  string `json:"code" binding:"required"`
	Token string `json:"token" binding:"required"`
}

// FormProfile represents a profile edit
type FormProfile struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Nickname string `json:"nickname" binding:"omitempty,max=128"`
}

// Register handles author registration
func (h *Handler) Register(c *gin.Context) {
	var form FormRegister
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	token, err := h.service.Register(c.Request.Context(), form.Email, form.Password, form.Nickname)
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, gin.H{"token": token})
}

// Activate handles the verification-code check
func (h *Handler) Activate(c *gin.Context) {
	var form FormActivate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	if err := h.service.Activate(c.Request.Context(), form.Code, form.Token); err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, nil)
}

// CheckEmail reports whether an author owns the email
func (h *Handler) CheckEmail(c *gin.Context) {
	author, err := h.service.AuthorExists(c.Request.Context(), c.Query("email"))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, author)
}

// Login handles author login
func (h *Handler) Login(c *gin.Context) {
	var form FormLogin
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	token, err := h.service.Login(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, gin.H{"token": token})
}

// Show handles getting an author's public profile
func (h *Handler) Show(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	author, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, author.ToSafeAuthor())
}

// Edit handles a profile update, self only
func (h *Handler) Edit(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	var form FormProfile
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	author, err := h.service.EditProfile(c.Request.Context(), id, form.Email, form.Nickname, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, author.ToSafeAuthor())
}

// Search lists authors, optionally filtered by nickname
func (h *Handler) Search(c *gin.Context) {
	authors, err := h.service.SearchAuthors(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, authors)
}

// Reveal maps a token back to its author
func (h *Handler) Reveal(c *gin.Context) {
	author, err := h.service.ResolveToken(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.Error(err)
		return
	}
	if author == nil {
		c.Error(errors.NotFound())
		return
	}

	h.resp.OK(c, author.ToSafeAuthor())
}
