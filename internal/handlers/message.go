package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"messenger-service/internal/chat"
	"messenger-service/internal/middleware"
)

// MessageHandler is the REST side of the message engine. Live traffic runs
// over the websocket; these endpoints serve history catch-up and clients
// without a socket.
type MessageHandler struct {
	messages *chat.MessageService
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages *chat.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// History handles GET /groups/:group_id/messages. This is how a user who was
// offline catches up on missed messages.
func (h *MessageHandler) History(c *gin.Context) {
	views, err := h.messages.History(c.Request.Context(), middleware.Username(c), c.Param("group_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

// Post handles POST /groups/:group_id/messages.
func (h *MessageHandler) Post(c *gin.Context) {
	user := middleware.Username(c)

	var req struct {
		Text           string  `json:"text"`
		ReplyTo        *string `json:"replyTo"`
		AttachmentURL  string  `json:"attachmentUrl"`
		AttachmentType string  `json:"attachmentType"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.messages.Send(c.Request.Context(), user, chat.SendInput{
		GroupID:        c.Param("group_id"),
		Text:           req.Text,
		ReplyTo:        req.ReplyTo,
		AttachmentURL:  req.AttachmentURL,
		AttachmentType: req.AttachmentType,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// Edit handles PATCH /groups/:group_id/messages/:message_id.
func (h *MessageHandler) Edit(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.messages.Edit(c.Request.Context(), middleware.Username(c), c.Param("group_id"), c.Param("message_id"), req.Text); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /groups/:group_id/messages/:message_id.
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messages.Delete(c.Request.Context(), middleware.Username(c), c.Param("group_id"), c.Param("message_id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
