package chat

import (
	"strconv"

	"doc-collab-server/internal/domain"
	"doc-collab-server/internal/errors"
	"doc-collab-server/internal/middleware"
	"doc-collab-server/internal/response"
	"doc-collab-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for chats and messages
type Handler struct {
	service Service
	resp    *response.Table
}

// NewHandler creates a new chat handler
func NewHandler(service Service, resp *response.Table) *Handler {
	return &Handler{service: service, resp: resp}
}

// FormSend represents an outgoing message
type FormSend struct {
	Sender   uint64 `json:"sender" binding:"required"`
	Receiver uint64 `json:"receiver" binding:"required"`
	Msg      string `json:"msg" binding:"required"`
}

// ListOrGet lists the actor's chats, or resolves/creates the chat
// between a1 and a2 when both are given
func (h *Handler) ListOrGet(c *gin.Context) {
	a1Param, a2Param := c.Query("a1"), c.Query("a2")
	if a2Param == "" {
		chats, err := h.service.ListChats(c.Request.Context(), middleware.ActorID(c))
		if err != nil {
			c.Error(err)
			return
		}
		h.resp.OK(c, chats)
		return
	}

	a1, err1 := strconv.ParseUint(a1Param, 10, 64)
	a2, err2 := strconv.ParseUint(a2Param, 10, 64)
	if err1 != nil || err2 != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	chat, err := h.service.GetOrCreateChat(c.Request.Context(), a1, a2, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, []domain.Chat{*chat})
}

// Show fetches one chat by id
func (h *Handler) Show(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}

	chat, err := h.service.GetChat(c.Request.Context(), chatID, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, chat)
}

// Send appends a message to the pair's chat
func (h *Handler) Send(c *gin.Context) {
	var form FormSend
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.BadRequest(err.Error()))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), form.Sender, form.Receiver, form.Msg, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, msg)
}

// History returns one page of a chat's messages, newest first
func (h *Handler) History(c *gin.Context) {
	chatID, err := strconv.ParseUint(c.Query("chat_id"), 10, 64)
	if err != nil {
		c.Error(errors.BadRequest(nil))
		return
	}
	page, pageSize := utils.GetPaginationParams(c)

	messages, err := h.service.History(c.Request.Context(), chatID, page, pageSize, middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, messages)
}

// Search filters the actor's messages by body substring
func (h *Handler) Search(c *gin.Context) {
	messages, err := h.service.SearchMessages(c.Request.Context(), c.Query("keywords"), middleware.ActorID(c))
	if err != nil {
		c.Error(err)
		return
	}

	h.resp.OK(c, messages)
}
